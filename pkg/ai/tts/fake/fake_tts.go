// Package fake provides a canned TTS for tests.
package fake

import (
	"context"
	"sync"

	"github.com/parleyvoice/parley/pkg/ai/tts"
	"github.com/parleyvoice/parley/pkg/audio"
)

// TTS emits a fixed set of audio chunks for every request.
type TTS struct {
	mu     sync.Mutex
	chunks [][]byte
	err    error
	texts  []string
}

// NewTTS creates a fake TTS emitting one small chunk per request.
func NewTTS() *TTS {
	return &TTS{chunks: [][]byte{{0x00, 0x01, 0x02, 0x03}}}
}

// NewTTSWithChunks creates a fake TTS emitting the given chunks.
func NewTTSWithChunks(chunks ...[]byte) *TTS {
	return &TTS{chunks: chunks}
}

// NewTTSWithError creates a fake TTS that always fails.
func NewTTSWithError(err error) *TTS {
	return &TTS{err: err}
}

// Synthesize records the text and streams the canned chunks.
func (f *TTS) Synthesize(ctx context.Context, req tts.SynthesizeRequest) (<-chan audio.Chunk, error) {
	f.mu.Lock()
	f.texts = append(f.texts, req.Text)
	err := f.err
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}

	out := make(chan audio.Chunk, len(f.chunks))
	go func() {
		defer close(out)
		for _, c := range f.chunks {
			select {
			case out <- audio.Chunk{Data: c, SampleRate: 24000}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Capabilities returns permissive fake capabilities.
func (f *TTS) Capabilities() tts.Capabilities {
	return tts.Capabilities{Streaming: true, SupportedVoices: []string{"fake"}}
}

// Texts returns every text synthesized so far.
func (f *TTS) Texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.texts))
	copy(out, f.texts)
	return out
}
