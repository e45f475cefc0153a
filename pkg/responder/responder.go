// Package responder turns a finalized user utterance into an assistant
// reply and a stream of synthesized audio for playback.
package responder

import (
	"context"

	"github.com/parleyvoice/parley/pkg/audio"
)

// Reply is the assistant's response to one finalized turn: the reply text
// and a stream of synthesized audio chunks. The audio channel closes when
// synthesis completes.
type Reply struct {
	Text  string
	Audio <-chan audio.Chunk
}

// Responder generates a reply for finalized user text. Implementations
// must be safe for concurrent use by many sessions.
type Responder interface {
	Respond(ctx context.Context, userText string) (*Reply, error)
}
