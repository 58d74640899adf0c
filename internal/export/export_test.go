package export

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chatbox/internal/transcript"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []transcript.Message {
	at := time.Date(2026, 10, 19, 9, 5, 7, 0, time.UTC)
	return []transcript.Message{
		{Role: transcript.RoleUser, Content: "Hello", Timestamp: at},
		{Role: transcript.RoleAssistant, Content: "Hi there, **friend**", Timestamp: at.Add(2 * time.Second)},
		{Role: transcript.RoleUser, Content: "📎 notes.txt (1.5 KB)", Timestamp: at.Add(time.Minute)},
	}
}

func TestRenderRoundTrip(t *testing.T) {
	messages := sample()
	doc := Render(messages)

	blocks := strings.Split(doc, "\n\n")
	require.Len(t, blocks, len(messages))
	for i, block := range blocks {
		prefix := "[" + messages[i].Timestamp.Format(TimestampLayout) + "] " + RoleLabel(messages[i].Role) + ": "
		if !strings.HasPrefix(block, prefix) {
			t.Fatalf("block %d: expected prefix %q, got %q", i, prefix, block)
		}
		if got := strings.TrimPrefix(block, prefix); got != messages[i].Content {
			t.Fatalf("block %d: expected content %q, got %q", i, messages[i].Content, got)
		}
	}
	assert.Equal(t, "[19/10/2026 09:05:07] You: Hello", blocks[0])
	assert.True(t, strings.HasPrefix(blocks[1], "[19/10/2026 09:05:09] Assistant: "))
}

func TestFileNameUsesDate(t *testing.T) {
	now := time.Date(2026, 10, 19, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "chat-export-2026-10-19.txt", FileName(now))
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	path, err := WriteFile(dir, sample(), now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "chat-export-2026-10-19.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Render(sample()), string(data))
}

func TestWriteFileRejectsEmptyTranscript(t *testing.T) {
	_, err := WriteFile(t.TempDir(), nil, time.Now())
	if !errors.Is(err, ErrEmptyTranscript) {
		t.Fatalf("expected ErrEmptyTranscript, got %v", err)
	}
}
