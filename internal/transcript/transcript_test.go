package transcript

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNewMessageRejectsBlankContent(t *testing.T) {
	if _, err := NewMessage(RoleUser, "  \n\t", time.Now()); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	if _, err := NewMessage(Role("system"), "hi", time.Now()); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestStoreKeepsInsertionOrder(t *testing.T) {
	at := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	store := NewStore()
	first, _ := NewMessage(RoleUser, "Hello", at)
	second, _ := NewMessage(RoleAssistant, "Hi there", at.Add(time.Second))
	if err := store.Append(first); err != nil {
		t.Fatalf("append user: %v", err)
	}
	if err := store.Append(second); err != nil {
		t.Fatalf("append assistant: %v", err)
	}

	want := []Message{first, second}
	if diff := cmp.Diff(want, store.All()); diff != "" {
		t.Fatalf("unexpected transcript (-want +got):\n%s", diff)
	}
}

func TestStoreSnapshotIsDetached(t *testing.T) {
	store := NewStore()
	msg, _ := NewMessage(RoleUser, "one", time.Now())
	_ = store.Append(msg)

	snapshot := store.All()
	snapshot[0].Content = "mutated"
	_ = store.Append(msg)

	if got := store.All()[0].Content; got != "one" {
		t.Fatalf("expected stored content to stay %q, got %q", "one", got)
	}
	if len(snapshot) != 1 {
		t.Fatalf("expected snapshot length to stay 1, got %d", len(snapshot))
	}
}

func TestStoreResetClearsEverything(t *testing.T) {
	store := NewStore()
	msg, _ := NewMessage(RoleUser, "one", time.Now())
	_ = store.Append(msg)
	_ = store.Append(msg)

	store.Reset()
	if store.Len() != 0 {
		t.Fatalf("expected empty store after reset, got %d", store.Len())
	}
	if all := store.All(); all == nil || len(all) != 0 {
		t.Fatalf("expected empty non-nil snapshot, got %#v", all)
	}
}

func TestStoreAppendRejectsZeroMessage(t *testing.T) {
	store := NewStore()
	if err := store.Append(Message{Role: RoleUser}); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected rejected append to leave store empty")
	}
}
