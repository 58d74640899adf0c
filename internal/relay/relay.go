// Package relay serves the /chat wire contract for local development. It forwards each
// message to a Generator and maps failures to {"error": ...} bodies.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"chatbox/internal/chatapi"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	upstreamTimeout = 30 * time.Second
	maxBodyBytes    = 64 * 1024
)

// Generator produces one reply for one prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// UpstreamError carries the status and message the relay should answer with.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %d: %s", e.Status, e.Message)
}

// Echo answers every prompt by repeating it. Useful without an API key.
type Echo struct{}

func (Echo) Generate(_ context.Context, prompt string) (string, error) {
	return "You said: " + prompt, nil
}

type Server struct {
	gen     Generator
	logger  *zap.Logger
	timeout time.Duration
}

func NewServer(gen Generator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{gen: gen, logger: logger, timeout: upstreamTimeout}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)

	r.Post(chatapi.ChatPath, s.handleChat)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mediaType != chatapi.JSONMediaType {
		writeError(w, http.StatusBadRequest, "Request must be JSON")
		return
	}

	var req chatapi.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "No JSON data provided")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "No message provided")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	s.logger.Debug("forwarding message", zap.String("request_id", chimw.GetReqID(r.Context())), zap.Int("chars", len(message)))
	reply, err := s.gen.Generate(ctx, message)
	if err != nil {
		status, text := classifyUpstream(err)
		s.logger.Warn("generation failed", zap.Int("status", status), zap.Error(err))
		writeError(w, status, text)
		return
	}
	if strings.TrimSpace(reply) == "" {
		writeError(w, http.StatusInternalServerError, "Empty response from AI")
		return
	}
	writeJSON(w, http.StatusOK, chatapi.Response{Response: reply})
}

func classifyUpstream(err error) (int, string) {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Status, upstream.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "Request timeout. Please try again"
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return http.StatusServiceUnavailable, "Connection error. Please check your internet"
	}
	return http.StatusInternalServerError, "Server error"
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			s.logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", chimw.GetReqID(r.Context())),
				zap.String("remote_addr", r.RemoteAddr),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", chatapi.JSONMediaType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, chatapi.Response{Error: message})
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("relay listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("relay shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
