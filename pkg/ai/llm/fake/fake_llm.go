// Package fake provides a scripted LLM for tests.
package fake

import (
	"context"
	"sync"

	"github.com/parleyvoice/parley/pkg/ai/llm"
)

// LLM echoes a canned reply and records the requests it receives.
type LLM struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []llm.ChatRequest
}

// NewLLM creates a fake LLM that always replies with reply.
func NewLLM(reply string) *LLM {
	return &LLM{reply: reply}
}

// NewLLMWithError creates a fake LLM that always fails.
func NewLLMWithError(err error) *LLM {
	return &LLM{err: err}
}

// Chat records the request and returns the canned reply.
func (f *LLM) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.err != nil {
		return llm.ChatResponse{}, f.err
	}
	return llm.ChatResponse{
		Message:      llm.Message{Role: llm.RoleAssistant, Content: f.reply},
		FinishReason: "stop",
	}, nil
}

// Capabilities returns permissive fake capabilities.
func (f *LLM) Capabilities() llm.Capabilities {
	return llm.Capabilities{MaxTokens: 4096, SupportedModels: []string{"fake"}}
}

// Requests returns a copy of the recorded requests.
func (f *LLM) Requests() []llm.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]llm.ChatRequest, len(f.requests))
	copy(out, f.requests)
	return out
}
