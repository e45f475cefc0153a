// Package tts defines the speech-synthesis collaborator interface used by
// the responder pipeline to voice assistant replies.
package tts

import (
	"context"

	"github.com/parleyvoice/parley/pkg/ai"
	"github.com/parleyvoice/parley/pkg/audio"
)

var (
	// ErrRecoverable indicates a temporary TTS failure that may succeed if retried.
	ErrRecoverable = ai.ErrRecoverable

	// ErrFatal indicates a permanent TTS failure that will not succeed if retried.
	ErrFatal = ai.ErrFatal
)

// SynthesizeRequest contains parameters for text-to-speech synthesis.
type SynthesizeRequest struct {
	Text  string
	Voice string
	Speed float32
}

// Capabilities describes the capabilities of a TTS provider.
type Capabilities struct {
	Streaming       bool
	SupportedVoices []string
	SampleRates     []int
}

// TTS is the main interface for text-to-speech providers.
type TTS interface {
	// Synthesize converts text to a stream of audio chunks. The returned
	// channel closes when synthesis completes or ctx is cancelled.
	Synthesize(ctx context.Context, req SynthesizeRequest) (<-chan audio.Chunk, error)

	// Capabilities returns the provider's capabilities.
	Capabilities() Capabilities
}
