package transport

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/parleyvoice/parley/pkg/audio"
)

// connNotifier implements turn.Notifier over one websocket connection.
// gorilla/websocket allows a single concurrent writer, so every write
// goes through the mutex.
type connNotifier struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newConnNotifier(conn *websocket.Conn) *connNotifier {
	return &connNotifier{conn: conn}
}

func (n *connNotifier) NotifyTranscription(ctx context.Context, text string, probability float64, partial bool) error {
	return n.writeJSON(Message{
		Type: TypeTranscription,
		Text: text,
		Metadata: &Metadata{
			EOTProbability: probability,
			IsPartial:      partial,
		},
	})
}

func (n *connNotifier) NotifyReply(ctx context.Context, text string) error {
	return n.writeJSON(Message{Type: TypeReply, Text: text})
}

func (n *connNotifier) NotifyAudio(ctx context.Context, chunk audio.Chunk) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.conn.WriteMessage(websocket.BinaryMessage, chunk.Data)
}

func (n *connNotifier) NotifyError(ctx context.Context, message string) error {
	return n.writeJSON(Message{Type: TypeError, Text: message})
}

func (n *connNotifier) writeJSON(msg Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.conn.WriteJSON(msg)
}
