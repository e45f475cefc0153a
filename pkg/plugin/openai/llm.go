package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/parleyvoice/parley/pkg/ai"
	"github.com/parleyvoice/parley/pkg/ai/llm"
)

// GPT implements llm.LLM using OpenAI chat completion models.
type GPT struct {
	client *openai.Client
	model  string
}

// GPTConfig holds configuration for the GPT provider.
type GPTConfig struct {
	APIKey string
	Model  string // default gpt-4o-mini
}

// NewGPT creates a GPT-backed LLM.
func NewGPT(cfg GPTConfig) (*GPT, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &GPT{client: openai.NewClient(cfg.APIKey), model: model}, nil
}

// Chat performs a chat completion request.
func (g *GPT) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return llm.ChatResponse{}, ai.NewRecoverableError(err, fmt.Sprintf("chat completion failed: %v", err))
	}
	if len(resp.Choices) == 0 {
		return llm.ChatResponse{}, ai.NewFatalError(fmt.Errorf("empty choices"), "chat completion returned no choices")
	}

	choice := resp.Choices[0]
	return llm.ChatResponse{
		Message: llm.Message{
			Role:    llm.MessageRole(choice.Message.Role),
			Content: choice.Message.Content,
		},
		TokensUsed:   resp.Usage.TotalTokens,
		FinishReason: string(choice.FinishReason),
	}, nil
}

// Capabilities returns the provider's capabilities.
func (g *GPT) Capabilities() llm.Capabilities {
	return llm.Capabilities{
		SupportsStreaming: true,
		MaxTokens:         16384,
		SupportedModels:   []string{"gpt-4o", "gpt-4o-mini", "gpt-4-turbo", "gpt-3.5-turbo"},
	}
}
