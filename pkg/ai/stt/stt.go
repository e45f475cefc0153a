// Package stt defines the transcription collaborator interface. The turn
// controller calls it once per VAD-delimited segment; streaming recognition
// is deliberately out of scope for this core.
package stt

import (
	"context"

	"github.com/parleyvoice/parley/pkg/ai"
	"github.com/parleyvoice/parley/pkg/audio"
)

var (
	// ErrRecoverable indicates a temporary STT failure that may succeed if retried.
	ErrRecoverable = ai.ErrRecoverable

	// ErrFatal indicates a permanent STT failure that will not succeed if retried.
	ErrFatal = ai.ErrFatal
)

// Capabilities describes what a transcription provider supports.
type Capabilities struct {
	SupportedLanguages []string
	SampleRates        []int
}

// Transcriber converts one audio segment to plain text. Implementations
// must be stateless and safe for concurrent use by many sessions.
type Transcriber interface {
	// Transcribe returns the text spoken in the segment. An empty string
	// with a nil error means the segment contained no recognizable speech.
	Transcribe(ctx context.Context, seg audio.Segment) (string, error)

	// Capabilities returns the provider's capabilities.
	Capabilities() Capabilities
}
