package models

import (
	"context"
	"testing"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

func TestBuildOpenAIParamsJSONMode(t *testing.T) {
	req := &model.LLMRequest{
		Contents: []*genai.Content{genai.NewContentFromText("analyze this", "user")},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText("you are an analyst", "system"),
			ResponseMIMEType:  "application/json",
			MaxOutputTokens:   256,
		},
	}
	params := buildOpenAIParams(req, "gpt-4o-mini")
	if params.Model != "gpt-4o-mini" {
		t.Fatalf("expected default model, got %s", params.Model)
	}
	if len(params.Messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(params.Messages))
	}
	if params.Messages[0].OfSystem == nil || params.Messages[1].OfUser == nil {
		t.Fatalf("unexpected message roles: %#v", params.Messages)
	}
	if params.ResponseFormat.OfJSONObject == nil {
		t.Fatalf("expected JSON response format")
	}
}

func TestBuildOpenAIParamsAppendsUserTurn(t *testing.T) {
	req := &model.LLMRequest{
		Model:    "custom",
		Contents: []*genai.Content{genai.NewContentFromText("previous answer", "model")},
	}
	params := buildOpenAIParams(req, "ignored")
	if params.Model != "custom" {
		t.Fatalf("expected request model, got %s", params.Model)
	}
	if len(params.Messages) != 2 || params.Messages[1].OfUser == nil {
		t.Fatalf("expected trailing user message, got %#v", params.Messages)
	}
	if params.ResponseFormat.OfJSONObject != nil {
		t.Fatalf("did not expect JSON mode")
	}
}

func TestNewValidatesInput(t *testing.T) {
	ctx := context.Background()
	if m, err := New(ctx, ProviderNone, "", ""); err != nil || m != nil {
		t.Fatalf("expected nil model for none provider, got %v, %v", m, err)
	}
	if _, err := New(ctx, ProviderOpenAI, "gpt-4o-mini", ""); err == nil {
		t.Fatalf("expected missing key error")
	}
	if _, err := New(ctx, ProviderGrok, "", "key"); err == nil {
		t.Fatalf("expected missing model error")
	}
	if _, err := New(ctx, "unknown", "m", "key"); err == nil {
		t.Fatalf("expected unknown provider error")
	}
	m, err := New(ctx, ProviderOpenRouter, "meta/llama", "key")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if m.Name() != "openrouter/meta/llama" {
		t.Fatalf("unexpected model name: %s", m.Name())
	}
}
