package chatapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPostsTrimmedMessageAsJSON(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotCT     string
		gotAccept string
		gotBody   map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotCT = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"response":"Hi there"}`))
	}))
	defer srv.Close()

	reply, err := NewClient(srv.URL+"/").Send(context.Background(), "Hello")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/chat", gotPath)
	assert.Equal(t, JSONMediaType, gotCT)
	assert.Equal(t, JSONMediaType, gotAccept)
	assert.Equal(t, map[string]any{"message": "Hello"}, gotBody)

	assert.True(t, reply.OK())
	assert.Equal(t, 200, reply.StatusCode)
	assert.Equal(t, "OK", reply.StatusText)
	assert.Contains(t, reply.ContentType, "application/json")
	assert.JSONEq(t, `{"response":"Hi there"}`, string(reply.Body))
	assert.NoError(t, reply.ReadErr)
}

func TestSendReturnsErrorStatusesAsReplies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("down"))
	}))
	defer srv.Close()

	reply, err := NewClient(srv.URL).Send(context.Background(), "Hello")
	require.NoError(t, err)
	assert.False(t, reply.OK())
	assert.Equal(t, 503, reply.StatusCode)
	assert.Equal(t, "Service Unavailable", reply.StatusText)
	assert.Equal(t, "down", string(reply.Body))
}

func TestSendReportsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Send(context.Background(), "Hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat request failed on /chat")
}

func TestEndpointJoinsChatPath(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:5000/chat", NewClient(" http://127.0.0.1:5000// ").Endpoint())
}
