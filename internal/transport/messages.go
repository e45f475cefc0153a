// Package transport exposes sessions over a bidirectional websocket
// stream: binary frames carry audio (inbound segments, outbound synthesized
// reply audio), text frames carry JSON notifications.
package transport

// Message types sent to the client.
const (
	TypeTranscription = "transcription"
	TypeReply         = "reply"
	TypeError         = "error"
)

// Message is one outbound JSON notification.
type Message struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// Metadata accompanies transcription notifications.
type Metadata struct {
	EOTProbability float64 `json:"eot_probability"`
	IsPartial      bool    `json:"is_partial"`
}
