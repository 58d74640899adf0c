// Package attach builds the synthetic user messages for file attachments and voice notes.
// These messages stay local: nothing here talks to the chat endpoint.
package attach

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const VoiceMessage = "🎤 Voice recording captured (speech-to-text is not available yet)"

var (
	ErrNoPath           = errors.New("no file given")
	ErrNotRegularFile   = errors.New("not a regular file")
	ErrAlreadyRecording = errors.New("already recording")
	ErrNotRecording     = errors.New("not recording")
)

// FileMessage describes the file at path as "📎 <name> (<size> KB)".
func FileMessage(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrNoPath
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("attach %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("attach %s: %w", path, ErrNotRegularFile)
	}
	return Describe(info.Name(), info.Size()), nil
}

func Describe(name string, size int64) string {
	return fmt.Sprintf("📎 %s (%.1f KB)", name, float64(size)/1024)
}

// Recorder tracks the voice capture toggle. It captures no audio.
type Recorder struct {
	recording bool
	started   time.Time
	now       func() time.Time
}

func NewRecorder(now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{now: now}
}

func (r *Recorder) Recording() bool {
	return r.recording
}

func (r *Recorder) Start() error {
	if r.recording {
		return ErrAlreadyRecording
	}
	r.recording = true
	r.started = r.now()
	return nil
}

// Stop ends the recording and returns the acknowledgement message and its length.
func (r *Recorder) Stop() (string, time.Duration, error) {
	if !r.recording {
		return "", 0, ErrNotRecording
	}
	r.recording = false
	return VoiceMessage, r.now().Sub(r.started), nil
}
