// Package fake provides a recording Responder for tests.
package fake

import (
	"context"
	"sync"

	"github.com/parleyvoice/parley/pkg/audio"
	"github.com/parleyvoice/parley/pkg/responder"
)

// Responder records every finalized turn it receives and returns a canned
// reply with a single audio chunk.
type Responder struct {
	mu    sync.Mutex
	reply string
	err   error
	turns []string

	// Block, when non-nil, is closed by the test to release Respond.
	Block chan struct{}
}

// NewResponder creates a fake responder replying with reply.
func NewResponder(reply string) *Responder {
	return &Responder{reply: reply}
}

// NewResponderWithError creates a fake responder that always fails.
func NewResponderWithError(err error) *Responder {
	return &Responder{err: err}
}

// Respond records the turn and returns the canned reply.
func (f *Responder) Respond(ctx context.Context, userText string) (*responder.Reply, error) {
	f.mu.Lock()
	f.turns = append(f.turns, userText)
	blocked := f.Block
	f.mu.Unlock()

	if blocked != nil {
		select {
		case <-blocked:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}

	out := make(chan audio.Chunk, 1)
	out <- audio.Chunk{Data: []byte{0x00, 0x01}, SampleRate: 24000}
	close(out)
	return &responder.Reply{Text: f.reply, Audio: out}, nil
}

// Turns returns every finalized turn dispatched so far.
func (f *Responder) Turns() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.turns))
	copy(out, f.turns)
	return out
}
