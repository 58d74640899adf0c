// Package transcript holds the ordered history of messages exchanged in one chat session.
package transcript

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ErrEmptyContent is returned when a message would carry only whitespace.
var ErrEmptyContent = errors.New("message content is empty")

// ErrUnknownRole is returned for roles other than user and assistant.
var ErrUnknownRole = errors.New("unknown message role")

// Message is one immutable transcript entry.
type Message struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// NewMessage validates role and content and stamps the message.
func NewMessage(role Role, content string, at time.Time) (Message, error) {
	if role != RoleUser && role != RoleAssistant {
		return Message{}, ErrUnknownRole
	}
	if strings.TrimSpace(content) == "" {
		return Message{}, ErrEmptyContent
	}
	return Message{Role: role, Content: content, Timestamp: at}, nil
}

// Store is append-only except for Reset, which clears it atomically.
type Store struct {
	mu       sync.Mutex
	messages []Message
}

func NewStore() *Store {
	return &Store{messages: []Message{}}
}

func (s *Store) Append(msg Message) error {
	if strings.TrimSpace(msg.Content) == "" {
		return ErrEmptyContent
	}
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	return nil
}

func (s *Store) Reset() {
	s.mu.Lock()
	s.messages = []Message{}
	s.mu.Unlock()
}

// All returns a snapshot in insertion order. Callers may keep or modify it freely.
func (s *Store) All() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}
