package tui

import (
	"chatbox/internal/transcript"
)

type entryKind int

const (
	entryMessage entryKind = iota
	entryNotice
)

type timelineEntry struct {
	kind entryKind
	msg  transcript.Message
	text string
}

// viewSink is the session's Emitter. It only records what the next View should draw; the
// model reads it back on the Update goroutine.
type viewSink struct {
	live    bool
	busy    bool
	status  string
	pending string
	entries []timelineEntry
}

func (v *viewSink) ShowTranscript() { v.live = true }

func (v *viewSink) ShowPlaceholder() {
	v.live = false
	v.pending = ""
	v.entries = nil
}

func (v *viewSink) SetBusy(busy bool) { v.busy = busy }

func (v *viewSink) RenderMessage(msg transcript.Message) {
	v.entries = append(v.entries, timelineEntry{kind: entryMessage, msg: msg})
}

func (v *viewSink) RenderPending(id string) { v.pending = id }

func (v *viewSink) RemovePending(id string) {
	if v.pending == id {
		v.pending = ""
	}
}

func (v *viewSink) RenderNotice(text string) {
	v.entries = append(v.entries, timelineEntry{kind: entryNotice, text: text})
}

func (v *viewSink) SetStatus(status string) { v.status = status }

// showsTranscript reports whether the message list replaces the welcome placeholder.
// Local-only messages count even before the first exchange.
func (v *viewSink) showsTranscript() bool {
	return v.live || len(v.entries) > 0
}
