package models

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3/option"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

func NewOpenRouterModel(ctx context.Context, modelName string, cfg *genai.ClientConfig) (model.LLM, error) {
	if modelName != "" {
		modelName = fmt.Sprintf("openrouter/%s", modelName)
	}
	return newOpenAICompatible(modelName, cfg, "openrouter-go", option.WithBaseURL("https://openrouter.ai/api/v1"))
}
