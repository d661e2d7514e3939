// Package llm provides the model backends that can serve as the pipeline's
// external classification collaborator. Every provider answers one prompt
// exchange and returns raw text; interpreting that text is the caller's job.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider is one configured model backend.
type Provider interface {
	// Name identifies the backend in logs and cache entries.
	Name() string
	// Generate answers a single system+user prompt exchange.
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// New returns the provider registered under name, with an optional model
// override. An empty name selects the Gemini default.
func New(name string, model string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gemini":
		return &GeminiProvider{Model: model}, nil
	case "googleai":
		return &GoogleAIProvider{Model: model}, nil
	case "deepseek":
		return &DeepSeekProvider{Model: model}, nil
	case "qwen":
		return &QwenProvider{Model: model}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", name)
	}
}
