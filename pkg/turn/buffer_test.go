package turn

import (
	"testing"
	"time"
)

func TestBufferAppendAndPeek(t *testing.T) {
	b := NewBuffer()
	now := time.Now()

	if b.Active() {
		t.Error("new buffer should be inactive")
	}
	if b.Peek() != "" {
		t.Errorf("new buffer should peek empty, got %q", b.Peek())
	}

	if !b.Append("I can't seem to, um...", now) {
		t.Error("append of non-empty text should be stored")
	}
	if !b.Append("find my keys", now.Add(time.Second)) {
		t.Error("append of non-empty text should be stored")
	}

	if got := b.Peek(); got != "I can't seem to, um... find my keys" {
		t.Errorf("unexpected accumulated text: %q", got)
	}
	if b.Fragments() != 2 {
		t.Errorf("expected 2 fragments, got %d", b.Fragments())
	}
	if !b.Active() {
		t.Error("buffer with fragments should be active")
	}
}

func TestBufferEmptyAppendIsNoop(t *testing.T) {
	b := NewBuffer()
	start := time.Now()
	b.Append("I need...", start)

	// Empty and whitespace-only appends must not refresh lastUpdate;
	// otherwise silence could postpone the forced flush forever.
	b.Append("", start.Add(2*time.Second))
	b.Append("   ", start.Add(2*time.Second))

	if b.Fragments() != 1 {
		t.Errorf("expected 1 fragment, got %d", b.Fragments())
	}
	if !b.IsStale(start.Add(3*time.Second), 2*time.Second) {
		t.Error("buffer should be stale relative to the real last append")
	}
}

func TestBufferStaleness(t *testing.T) {
	b := NewBuffer()
	now := time.Now()

	if b.IsStale(now.Add(time.Hour), time.Second) {
		t.Error("inactive buffer is never stale")
	}

	b.Append("hello", now)
	if b.IsStale(now.Add(time.Second), 2*time.Second) {
		t.Error("buffer should not be stale before the timeout")
	}
	if !b.IsStale(now.Add(3*time.Second), 2*time.Second) {
		t.Error("buffer should be stale after the timeout")
	}
}

func TestBufferClear(t *testing.T) {
	b := NewBuffer()
	now := time.Now()
	b.Append("one", now)
	b.Append("two", now)

	b.Clear()

	if b.Active() {
		t.Error("cleared buffer should be inactive")
	}
	if b.Peek() != "" || b.Fragments() != 0 {
		t.Error("cleared buffer should be empty")
	}
	if b.IsStale(now.Add(time.Hour), time.Nanosecond) {
		t.Error("cleared buffer is never stale")
	}
}
