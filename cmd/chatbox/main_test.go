package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chatbox/internal/chatapi"
	"chatbox/internal/relay"
)

func TestSendOnceAgainstEchoRelay(t *testing.T) {
	srv := httptest.NewServer(relay.NewServer(relay.Echo{}, nil).Handler())
	defer srv.Close()

	var out, errOut bytes.Buffer
	err := sendOnce(context.Background(), chatapi.NewClient(srv.URL), "  **hi** there ", &out, &errOut)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "You said: hi there" {
		t.Fatalf("unexpected stdout %q", got)
	}
	if errOut.Len() != 0 {
		t.Fatalf("expected empty stderr, got %q", errOut.String())
	}
}

func TestSendOnceReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"overloaded"}`))
	}))
	defer srv.Close()

	var out, errOut bytes.Buffer
	err := sendOnce(context.Background(), chatapi.NewClient(srv.URL), "hi", &out, &errOut)
	if err == nil {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(err.Error(), "server_error") {
		t.Fatalf("expected server_error kind, got %v", err)
	}
	if got := strings.TrimSpace(errOut.String()); got != "Error: overloaded" {
		t.Fatalf("unexpected stderr %q", got)
	}
	if out.Len() != 0 {
		t.Fatalf("expected empty stdout, got %q", out.String())
	}
}

func TestSendOnceBlankMessage(t *testing.T) {
	var out, errOut bytes.Buffer
	err := sendOnce(context.Background(), chatapi.NewClient("http://127.0.0.1:1"), "   ", &out, &errOut)
	if err != errEmptyMessage {
		t.Fatalf("expected errEmptyMessage, got %v", err)
	}
}

func TestSendCommandUsesEndpointFlag(t *testing.T) {
	srv := httptest.NewServer(relay.NewServer(relay.Echo{}, nil).Handler())
	defer srv.Close()
	t.Setenv("CHATBOX_ENDPOINT", "")
	t.Setenv("CHATBOX_LOG_FILE", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{
		"send",
		"--config", writeEmptyConfig(t),
		"--endpoint", srv.URL,
		"--log-file=",
		"hello", "relay",
	})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("send failed: %v (output %q)", err, out.String())
	}
	if !strings.Contains(out.String(), "You said: hello relay") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRootRejectsBadEndpoint(t *testing.T) {
	t.Setenv("CHATBOX_ENDPOINT", "")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"send", "--config", writeEmptyConfig(t), "--endpoint", "ftp://example", "hi"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected invalid endpoint to fail")
	}
}

func writeEmptyConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := []byte("{}\n")
	if err := os.WriteFile(path, cfg, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
