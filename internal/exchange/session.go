// Package exchange runs the message exchange cycle of one chat session: it gates submissions so
// that at most one request is in flight, records the transcript, issues the outbound call and
// turns whatever comes back into exactly one classified outcome.
//
// A Session is created at startup and discarded with the program; there is no global session.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"chatbox/internal/chatapi"
	"chatbox/internal/transcript"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrBusy is returned by operations that are refused while an exchange is in flight.
var ErrBusy = errors.New("an exchange is already in flight")

// Transport issues one outbound chat call. A non-nil error means no response was obtained.
type Transport interface {
	Send(ctx context.Context, message string) (chatapi.Reply, error)
}

// Emitter receives render and status commands. Calls arrive in order and while the session
// holds its lock, so implementations must not call back into the Session.
type Emitter interface {
	ShowTranscript()
	ShowPlaceholder()
	SetBusy(busy bool)
	RenderMessage(msg transcript.Message)
	RenderPending(id string)
	RemovePending(id string)
	RenderNotice(text string)
	SetStatus(status string)
}

// NopEmitter drops every command.
type NopEmitter struct{}

func (NopEmitter) ShowTranscript()                  {}
func (NopEmitter) ShowPlaceholder()                 {}
func (NopEmitter) SetBusy(bool)                     {}
func (NopEmitter) RenderMessage(transcript.Message) {}
func (NopEmitter) RenderPending(string)             {}
func (NopEmitter) RemovePending(string)             {}
func (NopEmitter) RenderNotice(string)              {}
func (NopEmitter) SetStatus(string)                 {}

// State is the session's gate and view flags.
type State struct {
	Busy             bool
	FirstMessageSent bool
}

// Pending correlates one outbound request with its outcome.
type Pending struct {
	ID      string
	Text    string
	Started time.Time
}

type Session struct {
	mu        sync.Mutex
	store     *transcript.Store
	state     State
	status    string
	pending   *Pending
	transport Transport
	emit      Emitter
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Session)

func WithEmitter(emit Emitter) Option {
	return func(s *Session) {
		if emit != nil {
			s.emit = emit
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDs overrides the generation id source.
func WithIDs(next func() string) Option {
	return func(s *Session) {
		if next != nil {
			s.newID = next
		}
	}
}

func NewSession(transport Transport, opts ...Option) *Session {
	s := &Session{
		store:     transcript.NewStore(),
		status:    StatusReady,
		transport: transport,
		emit:      NopEmitter{},
		logger:    zap.NewNop(),
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit runs one full exchange synchronously. It reports false, and has no effect, when the
// text is blank or another exchange is in flight.
func (s *Session) Submit(ctx context.Context, raw string) (Outcome, bool) {
	p, ok := s.Begin(raw)
	if !ok {
		return Outcome{}, false
	}
	reply, err := s.Send(ctx, p)
	return s.Complete(p, reply, err), true
}

// Begin opens an exchange: it locks the gate, records the user message and shows the pending
// placeholder. The caller must hand the returned Pending to Send and then Complete.
func (s *Session) Begin(raw string) (Pending, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Pending{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Busy {
		s.logger.Debug("submission rejected while busy")
		return Pending{}, false
	}
	s.state.Busy = true
	s.emit.SetBusy(true)

	if !s.state.FirstMessageSent {
		s.state.FirstMessageSent = true
		s.emit.ShowTranscript()
	}

	now := s.now()
	msg := transcript.Message{Role: transcript.RoleUser, Content: text, Timestamp: now}
	_ = s.store.Append(msg)
	s.emit.RenderMessage(msg)

	p := Pending{ID: s.newID(), Text: text, Started: now}
	s.pending = &p
	s.emit.RenderPending(p.ID)
	s.setStatusLocked(StatusWorking)

	s.logger.Info("exchange started", zap.String("generation", p.ID), zap.Int("chars", len(text)))
	return p, true
}

// Send performs the single outbound call for p. A panicking transport is reported as a
// transport failure.
func (s *Session) Send(ctx context.Context, p Pending) (reply chatapi.Reply, err error) {
	defer func() {
		if r := recover(); r != nil {
			reply, err = chatapi.Reply{}, fmt.Errorf("transport panic: %v", r)
		}
	}()
	return s.transport.Send(ctx, p.Text)
}

// Complete classifies the result of p and emits exactly one terminal result. The gate is
// released whatever happens. Completing an unknown generation changes nothing.
func (s *Session) Complete(p Pending, reply chatapi.Reply, err error) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil || s.pending.ID != p.ID {
		s.logger.Warn("ignoring result for unknown exchange", zap.String("generation", p.ID))
		return Classify(reply, err)
	}
	defer func() {
		s.pending = nil
		s.state.Busy = false
		s.emit.SetBusy(false)
	}()

	s.emit.RemovePending(p.ID)
	outcome := Classify(reply, err)

	fields := []zap.Field{
		zap.String("generation", p.ID),
		zap.Stringer("kind", outcome.Kind),
		zap.Duration("latency", s.now().Sub(p.Started)),
	}
	if outcome.OK() {
		msg := transcript.Message{Role: transcript.RoleAssistant, Content: outcome.Message, Timestamp: s.now()}
		_ = s.store.Append(msg)
		s.emit.RenderMessage(msg)
		s.logger.Info("exchange completed", fields...)
	} else {
		s.emit.RenderNotice(outcome.Notice())
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		s.logger.Warn("exchange failed", append(fields, zap.String("message", outcome.Message))...)
	}
	s.setStatusLocked(outcome.Status)
	return outcome
}

// Reset clears the transcript and returns the view to its placeholder. It is refused while an
// exchange is in flight so the pending reply always lands in the transcript it was sent from.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Busy {
		s.setStatusLocked(StatusClearBusy)
		return ErrBusy
	}
	s.store.Reset()
	s.state.FirstMessageSent = false
	s.emit.ShowPlaceholder()
	s.setStatusLocked(StatusReady)
	s.logger.Info("session cleared")
	return nil
}

// AppendLocal records a user message that is never sent to the endpoint, such as an
// attachment or voice note.
func (s *Session) AppendLocal(content string) (transcript.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, err := transcript.NewMessage(transcript.RoleUser, content, s.now())
	if err != nil {
		return transcript.Message{}, err
	}
	if err := s.store.Append(msg); err != nil {
		return transcript.Message{}, err
	}
	s.emit.RenderMessage(msg)
	return msg, nil
}

// Report overwrites the status line.
func (s *Session) Report(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setStatusLocked(status)
}

func (s *Session) setStatusLocked(status string) {
	s.status = status
	s.emit.SetStatus(status)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Transcript() []transcript.Message {
	return s.store.All()
}

func (s *Session) Len() int {
	return s.store.Len()
}

// Pending returns the in-flight exchange, if any.
func (s *Session) Pending() (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Pending{}, false
	}
	return *s.pending, true
}
