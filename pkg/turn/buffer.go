// Package turn implements the conversational turn-taking core: the buffer
// accumulating transcribed fragments of one in-progress turn, and the
// controller state machine deciding when the turn is complete.
package turn

import (
	"strings"
	"time"
)

// Buffer accumulates transcribed text fragments belonging to one
// in-progress turn. Fragments are only ever appended or fully cleared,
// never partially truncated.
//
// Buffer is not safe for concurrent use; the Controller is the single
// mutator per session.
type Buffer struct {
	fragments  []string
	lastUpdate time.Time
	active     bool
}

// NewBuffer creates an empty, inactive buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds a non-empty fragment and marks the buffer active. Empty or
// whitespace-only text is a no-op: it must not touch lastUpdate, or
// misclassified silence could postpone the forced flush indefinitely.
// Reports whether the fragment was stored.
func (b *Buffer) Append(text string, now time.Time) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	b.fragments = append(b.fragments, text)
	b.lastUpdate = now
	b.active = true
	return true
}

// Peek returns the accumulated text: all fragments in arrival order,
// space-joined.
func (b *Buffer) Peek() string {
	return strings.Join(b.fragments, " ")
}

// IsStale reports whether the buffer is active and has not been appended
// to for longer than timeout.
func (b *Buffer) IsStale(now time.Time, timeout time.Duration) bool {
	return b.active && now.Sub(b.lastUpdate) > timeout
}

// Clear resets the buffer to empty and inactive. Called after every flush
// and on session teardown.
func (b *Buffer) Clear() {
	b.fragments = nil
	b.active = false
	b.lastUpdate = time.Time{}
}

// Active reports whether the buffer holds an in-progress turn.
func (b *Buffer) Active() bool {
	return b.active
}

// Fragments returns the number of accumulated fragments.
func (b *Buffer) Fragments() int {
	return len(b.fragments)
}
