package responder

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/parleyvoice/parley/internal/logging"
	"github.com/parleyvoice/parley/pkg/ai/llm"
	"github.com/parleyvoice/parley/pkg/ai/tts"
)

// Pipeline composes an LLM and a TTS provider into a Responder: the reply
// text is generated first, then handed to synthesis.
type Pipeline struct {
	llm          llm.LLM
	tts          tts.TTS
	voice        string
	systemPrompt string
	log          *zap.SugaredLogger
}

// PipelineConfig holds configuration for creating a Pipeline.
type PipelineConfig struct {
	LLM          llm.LLM
	TTS          tts.TTS
	Voice        string
	SystemPrompt string
}

// NewPipeline creates a responder pipeline.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if cfg.LLM == nil {
		return nil, fmt.Errorf("LLM is required")
	}
	if cfg.TTS == nil {
		return nil, fmt.Errorf("TTS is required")
	}
	return &Pipeline{
		llm:          cfg.LLM,
		tts:          cfg.TTS,
		voice:        cfg.Voice,
		systemPrompt: cfg.SystemPrompt,
		log:          logging.Named("responder"),
	}, nil
}

// Respond generates the reply text and starts synthesis. The returned
// Reply's audio channel is already live when Respond returns.
func (p *Pipeline) Respond(ctx context.Context, userText string) (*Reply, error) {
	messages := make([]llm.Message, 0, 2)
	if p.systemPrompt != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: p.systemPrompt})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userText})

	resp, err := p.llm.Chat(ctx, llm.ChatRequest{Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("reply generation failed: %w", err)
	}
	replyText := resp.Message.Content

	frames, err := p.tts.Synthesize(ctx, tts.SynthesizeRequest{
		Text:  replyText,
		Voice: p.voice,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}

	p.log.Debugw("reply generated", "chars", len(replyText), "tokens", resp.TokensUsed)
	return &Reply{Text: replyText, Audio: frames}, nil
}
