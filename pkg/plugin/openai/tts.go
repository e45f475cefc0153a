package openai

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/parleyvoice/parley/internal/logging"
	"github.com/parleyvoice/parley/pkg/ai/tts"
	"github.com/parleyvoice/parley/pkg/audio"
)

// ttsSampleRate is the PCM rate OpenAI speech synthesis emits.
const ttsSampleRate = 24000

// Speech implements tts.TTS using the OpenAI speech API.
type Speech struct {
	client *openai.Client
	model  string
	voice  string
}

// SpeechConfig holds configuration for the speech provider.
type SpeechConfig struct {
	APIKey string
	Model  string // default tts-1
	Voice  string // default alloy
}

// NewSpeech creates an OpenAI-backed TTS provider.
func NewSpeech(cfg SpeechConfig) (*Speech, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = "tts-1"
	}
	voice := cfg.Voice
	if voice == "" {
		voice = "alloy"
	}
	return &Speech{client: openai.NewClient(cfg.APIKey), model: model, voice: voice}, nil
}

// Synthesize converts text to a stream of audio chunks.
func (s *Speech) Synthesize(ctx context.Context, req tts.SynthesizeRequest) (<-chan audio.Chunk, error) {
	voice := req.Voice
	if voice == "" {
		voice = s.voice
	}

	speechReq := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          req.Text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatPcm,
	}
	if req.Speed > 0 {
		speechReq.Speed = float64(req.Speed)
	}

	resp, err := s.client.CreateSpeech(ctx, speechReq)
	if err != nil {
		return nil, fmt.Errorf("speech synthesis request failed: %w", err)
	}

	out := make(chan audio.Chunk, 8)
	go func() {
		defer close(out)
		defer resp.Close()

		log := logging.Named("openai.tts")
		buf := make([]byte, 4096)
		for {
			n, err := resp.Read(buf)
			if n > 0 {
				chunk := audio.Chunk{
					Data:       append([]byte(nil), buf[:n]...),
					SampleRate: ttsSampleRate,
				}
				select {
				case out <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				log.Warnw("speech stream read failed", "error", err)
				return
			}
		}
	}()
	return out, nil
}

// Capabilities returns the provider's capabilities.
func (s *Speech) Capabilities() tts.Capabilities {
	return tts.Capabilities{
		Streaming:       true,
		SupportedVoices: []string{"alloy", "echo", "fable", "onyx", "nova", "shimmer"},
		SampleRates:     []int{ttsSampleRate},
	}
}
