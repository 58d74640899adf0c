// Package chatapi carries the /chat wire contract and the HTTP transport that speaks it.
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	ChatPath      = "/chat"
	JSONMediaType = "application/json"
)

// Request is the only payload the client ever sends.
type Request struct {
	Message string `json:"message"`
}

// Response is the body shape of both successful and failed replies.
type Response struct {
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Reply is what came back from the endpoint once an HTTP response was obtained.
// Body holds whatever could be read; ReadErr is set when reading it failed part way.
type Reply struct {
	StatusCode  int
	StatusText  string
	ContentType string
	Body        []byte
	ReadErr     error
}

// OK reports a 2xx status.
func (r Reply) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client posts messages to one chat endpoint. It sets no timeout: an exchange runs until
// the server answers or the connection fails.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient targets baseURL + /chat.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimRight(strings.TrimSpace(baseURL), "/") + ChatPath,
		http:     &http.Client{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Send issues one POST. A non-nil error means no HTTP response was obtained at all; every
// response, whatever its status, comes back as a Reply.
func (c *Client) Send(ctx context.Context, message string) (Reply, error) {
	buf, err := json.Marshal(Request{Message: message})
	if err != nil {
		return Reply{}, fmt.Errorf("encode chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(buf))
	if err != nil {
		return Reply{}, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", JSONMediaType)
	req.Header.Set("Accept", JSONMediaType)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("chat request failed", zap.String("endpoint", c.endpoint), zap.Error(err))
		return Reply{}, fmt.Errorf("chat request failed on %s: %w", ChatPath, err)
	}
	defer resp.Body.Close()

	reply := Reply{
		StatusCode:  resp.StatusCode,
		StatusText:  statusText(resp),
		ContentType: resp.Header.Get("Content-Type"),
	}
	reply.Body, reply.ReadErr = io.ReadAll(resp.Body)
	c.logger.Debug("chat response",
		zap.Int("status", reply.StatusCode),
		zap.String("content_type", reply.ContentType),
		zap.Int("bytes", len(reply.Body)),
	)
	return reply, nil
}

// statusText strips the numeric code from resp.Status ("500 Internal Server Error").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
