// Package generative wraps an optional external model behind a tagged-result interface.
package generative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/easeaico/gridcare/internal/utils"
)

// ErrUnavailable is carried by results produced without a configured model.
var ErrUnavailable = errors.New("generative advisor unavailable")

// Kind tags a Result.
type Kind int

const (
	// KindUnavailable means callers must use their deterministic fallback.
	KindUnavailable Kind = iota
	// KindStructured carries a JSON object in Result.JSON.
	KindStructured
	// KindRawText carries free text in Result.Text.
	KindRawText
)

func (k Kind) String() string {
	switch k {
	case KindStructured:
		return "structured"
	case KindRawText:
		return "raw_text"
	default:
		return "unavailable"
	}
}

// Request is one generation call.
type Request struct {
	Instruction string
	Prompt      string
	// Schema describes the expected JSON reply. Nil asks for free text.
	Schema *jsonschema.Schema
}

// Result is the tagged outcome of Generate.
type Result struct {
	Kind Kind
	JSON json.RawMessage
	Text string
	Err  error
}

// Advisor produces generated text or data. Implementations never return errors
// directly; failures become KindUnavailable results.
type Advisor interface {
	Generate(ctx context.Context, req Request) Result
}

// Unavailable is the Advisor used when no model is configured.
type Unavailable struct{}

func (Unavailable) Generate(ctx context.Context, req Request) Result {
	return Result{Kind: KindUnavailable, Err: ErrUnavailable}
}

// LLMAdvisor calls an adk model with a per-call deadline and no retry.
type LLMAdvisor struct {
	model   model.LLM
	timeout time.Duration
}

// NewAdvisor returns an LLMAdvisor, or Unavailable when m is nil.
func NewAdvisor(m model.LLM, timeout time.Duration) Advisor {
	if m == nil {
		return Unavailable{}
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &LLMAdvisor{model: m, timeout: timeout}
}

type reply struct {
	text string
	err  error
}

// Generate abandons the call once the deadline passes, even if the model
// does not honor cancellation.
func (a *LLMAdvisor) Generate(ctx context.Context, req Request) Result {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	llmReq, err := buildRequest(req)
	if err != nil {
		return unavailable(err)
	}

	done := make(chan reply, 1)
	go func() {
		text, err := a.collect(ctx, llmReq)
		done <- reply{text: text, err: err}
	}()

	var r reply
	select {
	case r = <-done:
	case <-ctx.Done():
		r = reply{err: fmt.Errorf("generative call abandoned: %w", ctx.Err())}
	}
	if r.err != nil {
		slog.Warn("generative call failed, using fallback", "error", r.err.Error(), "model", a.model.Name())
		return unavailable(r.err)
	}

	text := strings.TrimSpace(r.text)
	if text == "" {
		return unavailable(fmt.Errorf("empty model response"))
	}
	if req.Schema == nil {
		return Result{Kind: KindRawText, Text: text}
	}
	raw, err := utils.ExtractJSON(text)
	if err != nil {
		slog.Debug("model reply is not JSON, keeping raw text", "error", err.Error())
		return Result{Kind: KindRawText, Text: text}
	}
	return Result{Kind: KindStructured, JSON: raw, Text: text}
}

func (a *LLMAdvisor) collect(ctx context.Context, req *model.LLMRequest) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model panicked: %v", r)
		}
	}()

	var sb strings.Builder
	for resp, err := range a.model.GenerateContent(ctx, req, false) {
		if err != nil {
			return "", err
		}
		if resp == nil {
			continue
		}
		sb.WriteString(utils.ReplyText(resp.Content))
		if resp.TurnComplete {
			break
		}
	}
	return sb.String(), nil
}

func buildRequest(req Request) (*model.LLMRequest, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}

	cfg := &genai.GenerateContentConfig{}
	if req.Instruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.Instruction, "system")
	}
	if req.Schema != nil {
		schemaJSON, err := json.MarshalIndent(req.Schema, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode target schema: %w", err)
		}
		prompt += "\n\nReply with a single JSON object matching this JSON Schema, and nothing else:\n" + string(schemaJSON)
		cfg.ResponseMIMEType = "application/json"
	}

	return &model.LLMRequest{
		Contents: []*genai.Content{genai.NewContentFromText(prompt, "user")},
		Config:   cfg,
	}, nil
}

func unavailable(err error) Result {
	return Result{Kind: KindUnavailable, Err: err}
}

// SchemaFor infers the JSON Schema of T. It returns nil if T cannot be described.
func SchemaFor[T any]() *jsonschema.Schema {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		slog.Error("failed to infer schema", "error", err.Error())
		return nil
	}
	return schema
}

// Decode unmarshals a structured result into dst and reports success.
func Decode(res Result, dst any) bool {
	if res.Kind != KindStructured || len(res.JSON) == 0 {
		return false
	}
	if err := json.Unmarshal(res.JSON, dst); err != nil {
		slog.Warn("structured result does not match target", "error", err.Error())
		return false
	}
	return true
}
