// Package fake provides a scripted Transcriber for tests.
package fake

import (
	"context"
	"sync"

	"github.com/parleyvoice/parley/pkg/ai/stt"
	"github.com/parleyvoice/parley/pkg/audio"
)

// Transcriber returns scripted results in order. Once the script is
// exhausted it returns empty text.
type Transcriber struct {
	mu      sync.Mutex
	script  []Result
	calls   int
	lastSeg audio.Segment
}

// Result is one scripted transcription outcome.
type Result struct {
	Text string
	Err  error
}

// NewTranscriber creates a fake transcriber with the given script.
func NewTranscriber(script ...Result) *Transcriber {
	return &Transcriber{script: script}
}

// NewTranscriberWithText creates a fake that returns each text in order.
func NewTranscriberWithText(texts ...string) *Transcriber {
	script := make([]Result, len(texts))
	for i, t := range texts {
		script[i] = Result{Text: t}
	}
	return &Transcriber{script: script}
}

// Transcribe pops the next scripted result.
func (f *Transcriber) Transcribe(ctx context.Context, seg audio.Segment) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastSeg = seg
	idx := f.calls
	f.calls++
	if idx >= len(f.script) {
		return "", nil
	}
	return f.script[idx].Text, f.script[idx].Err
}

// Capabilities returns permissive fake capabilities.
func (f *Transcriber) Capabilities() stt.Capabilities {
	return stt.Capabilities{
		SupportedLanguages: []string{"en"},
		SampleRates:        []int{audio.SampleRate},
	}
}

// Calls returns how many times Transcribe was invoked.
func (f *Transcriber) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastSegment returns the most recently transcribed segment.
func (f *Transcriber) LastSegment() audio.Segment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSeg
}
