// Package openai provides OpenAI-backed providers: Whisper transcription,
// GPT reply generation, and speech synthesis.
package openai

import (
	"bytes"
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/parleyvoice/parley/pkg/ai"
	"github.com/parleyvoice/parley/pkg/ai/stt"
	"github.com/parleyvoice/parley/pkg/audio"
)

// WhisperTranscriber implements stt.Transcriber using the Whisper API.
type WhisperTranscriber struct {
	client   *openai.Client
	model    string
	language string
}

// WhisperConfig holds configuration for the Whisper transcriber.
type WhisperConfig struct {
	APIKey   string
	Model    string // default whisper-1
	Language string // default auto-detect
}

// NewWhisperTranscriber creates a Whisper-backed transcriber.
func NewWhisperTranscriber(cfg WhisperConfig) (*WhisperTranscriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperTranscriber{
		client:   openai.NewClient(cfg.APIKey),
		model:    model,
		language: cfg.Language,
	}, nil
}

// Transcribe uploads one WAV-framed segment and returns its text.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, seg audio.Segment) (string, error) {
	wavData := audio.EncodeWAV(seg.PCM, seg.SampleRate)

	req := openai.AudioRequest{
		Model:    w.model,
		Language: w.language,
		Format:   openai.AudioResponseFormatJSON,
		Reader:   bytes.NewReader(wavData),
		FilePath: "segment.wav",
	}
	resp, err := w.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", ai.NewRecoverableError(err, fmt.Sprintf("whisper transcription failed: %v", err))
	}
	return resp.Text, nil
}

// Capabilities returns the provider's capabilities.
func (w *WhisperTranscriber) Capabilities() stt.Capabilities {
	return stt.Capabilities{
		SupportedLanguages: []string{
			"en", "zh", "de", "es", "ru", "ko", "fr", "ja", "pt", "tr", "pl", "nl",
			"ar", "sv", "it", "id", "hi", "fi", "vi", "he", "uk", "el", "cs", "ro",
		},
		SampleRates: []int{16000, 22050, 44100, 48000},
	}
}
