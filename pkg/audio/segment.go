// Package audio defines the segment and chunk types passed between the
// transport, the turn-completion oracle, and the speech providers.
package audio

import (
	"fmt"
	"time"
)

const (
	// SampleRate is the fixed sample rate for inbound segments.
	SampleRate = 16000

	// BytesPerSample is the width of one 16-bit PCM sample.
	BytesPerSample = 2

	// MaxSegmentDuration bounds one VAD-delimited segment.
	MaxSegmentDuration = 8 * time.Second
)

// Segment is one VAD-delimited chunk of raw audio. It is owned by the
// session loop for the duration of one processing cycle and never persisted.
type Segment struct {
	PCM        []byte // 16-bit PCM, little-endian, mono
	SampleRate int
	Received   time.Time
}

// NewSegment wraps raw PCM bytes in a Segment, validating shape.
func NewSegment(pcm []byte, received time.Time) (Segment, error) {
	if len(pcm) == 0 {
		return Segment{}, fmt.Errorf("empty segment")
	}
	if len(pcm)%BytesPerSample != 0 {
		return Segment{}, fmt.Errorf("segment length %d is not sample-aligned", len(pcm))
	}
	seg := Segment{PCM: pcm, SampleRate: SampleRate, Received: received}
	if d := seg.Duration(); d > MaxSegmentDuration {
		return Segment{}, fmt.Errorf("segment duration %v exceeds maximum %v", d, MaxSegmentDuration)
	}
	return seg, nil
}

// Duration returns the playback duration of the segment.
func (s Segment) Duration() time.Duration {
	samples := len(s.PCM) / BytesPerSample
	return time.Duration(samples) * time.Second / time.Duration(s.SampleRate)
}

// TrailingWindow returns the segment truncated to at most window from the
// end, aligned to whole samples. Turn-ending cues cluster near the end of
// speech, so the head is what gets discarded.
func (s Segment) TrailingWindow(window time.Duration) Segment {
	maxSamples := int(window.Seconds() * float64(s.SampleRate))
	maxBytes := maxSamples * BytesPerSample
	if len(s.PCM) <= maxBytes {
		return s
	}
	return Segment{
		PCM:        s.PCM[len(s.PCM)-maxBytes:],
		SampleRate: s.SampleRate,
		Received:   s.Received,
	}
}

// Chunk is one piece of synthesized reply audio streamed back to the client.
type Chunk struct {
	Data       []byte
	SampleRate int
}
