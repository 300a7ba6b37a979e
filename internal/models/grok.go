package models

import (
	"context"

	"github.com/openai/openai-go/v3/option"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// NewGrokModel returns an LLM backed by the x.ai OpenAI-compatible endpoint
// (e.g. "grok-4-fast").
func NewGrokModel(ctx context.Context, modelName string, cfg *genai.ClientConfig) (model.LLM, error) {
	return newOpenAICompatible(modelName, cfg, "grok-go", option.WithBaseURL("https://api.x.ai/v1"))
}
