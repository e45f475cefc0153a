package turn

import (
	"context"

	"github.com/parleyvoice/parley/pkg/audio"
)

// Notifier delivers controller output to the connected client. The
// transport layer implements it; the controller never sees wire framing.
type Notifier interface {
	// NotifyTranscription surfaces buffered text with the verdict's
	// probability. partial=true while the turn is still open; the final
	// notification for a turn carries partial=false.
	NotifyTranscription(ctx context.Context, text string, probability float64, partial bool) error

	// NotifyReply delivers the assistant's reply text.
	NotifyReply(ctx context.Context, text string) error

	// NotifyAudio delivers one chunk of synthesized reply audio.
	NotifyAudio(ctx context.Context, chunk audio.Chunk) error

	// NotifyError surfaces a responder failure to the client.
	NotifyError(ctx context.Context, message string) error
}
