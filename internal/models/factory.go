package models

import (
	"context"
	"fmt"

	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"
)

// Providers accepted by New.
const (
	ProviderNone       = "none"
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderGrok       = "grok"
	ProviderOpenRouter = "openrouter"
)

// New builds the LLM for provider. ProviderNone returns a nil model and no error.
func New(ctx context.Context, provider, modelName, apiKey string) (model.LLM, error) {
	cfg := &genai.ClientConfig{APIKey: apiKey}
	switch provider {
	case "", ProviderNone:
		return nil, nil
	case ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("API key is required")
		}
		m, err := gemini.NewModel(ctx, modelName, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini model: %w", err)
		}
		return m, nil
	case ProviderOpenAI:
		return NewOpenAIModel(ctx, modelName, cfg)
	case ProviderGrok:
		return NewGrokModel(ctx, modelName, cfg)
	case ProviderOpenRouter:
		return NewOpenRouterModel(ctx, modelName, cfg)
	default:
		return nil, fmt.Errorf("unknown generative provider: %s", provider)
	}
}
