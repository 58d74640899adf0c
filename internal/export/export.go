// Package export writes a session transcript as a plain-text document.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chatbox/internal/transcript"
)

const TimestampLayout = "02/01/2006 15:04:05"

var ErrEmptyTranscript = errors.New("no conversation to export")

func RoleLabel(role transcript.Role) string {
	if role == transcript.RoleUser {
		return "You"
	}
	return "Assistant"
}

// Render produces one "[time] Label: content" block per message, blocks separated by a
// blank line.
func Render(messages []transcript.Message) string {
	blocks := make([]string, 0, len(messages))
	for _, msg := range messages {
		blocks = append(blocks, fmt.Sprintf("[%s] %s: %s",
			msg.Timestamp.Format(TimestampLayout),
			RoleLabel(msg.Role),
			msg.Content,
		))
	}
	return strings.Join(blocks, "\n\n")
}

// FileName is chat-export-<UTC date>.txt.
func FileName(now time.Time) string {
	return "chat-export-" + now.UTC().Format("2006-01-02") + ".txt"
}

// WriteFile renders messages into dir and returns the written path.
func WriteFile(dir string, messages []transcript.Message, now time.Time) (string, error) {
	if len(messages) == 0 {
		return "", ErrEmptyTranscript
	}
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(now))
	if err := os.WriteFile(path, []byte(Render(messages)), 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
