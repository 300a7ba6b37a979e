// Package prompt renders customer context and model prompts.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/easeaico/gridcare/internal/types"
)

// ReplyInput feeds the customer reply prompt.
type ReplyInput struct {
	Context    string
	Query      string
	Channel    string
	Language   string
	Intent     string
	Confidence float64
	Sentiment  string
	Urgency    string
	Emotions   []string
}

// AnalysisInput feeds the request analysis prompt.
type AnalysisInput struct {
	Customer         *types.CustomerProfile
	RequestType      string
	Details          string
	Intent           string
	IntentConfidence float64
	Guidance         types.GuidanceResult
	Summary          types.ConsumptionSummary
}

// InsightsInput feeds the customer insights prompt.
type InsightsInput struct {
	Customer   *types.CustomerProfile
	Prediction types.BillPrediction
}

// Builder renders prompts. Its clock is injectable for tests.
type Builder struct {
	nowFunc func() time.Time
}

// NewBuilder creates a prompt Builder.
func NewBuilder() *Builder {
	return &Builder{nowFunc: time.Now}
}

// CustomerContext summarizes a customer in a few labeled lines. The first line
// is always "Customer: <name>".
func (b *Builder) CustomerContext(c *types.CustomerProfile) string {
	if c == nil {
		return "Customer: unknown"
	}
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = "unknown"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Customer: %s\n", name)
	if c.AccountNumber != "" {
		fmt.Fprintf(&sb, "Account: %s\n", c.AccountNumber)
	}
	if c.Address != "" {
		fmt.Fprintf(&sb, "Address: %s\n", c.Address)
	}
	fmt.Fprintf(&sb, "Last bill: %.2f\n", c.LastBill)
	fmt.Fprintf(&sb, "Predicted bill: %.2f\n", c.PredictedBill)
	if c.OutstandingBalance > 0 {
		fmt.Fprintf(&sb, "Outstanding balance: %.2f\n", c.OutstandingBalance)
	}
	fmt.Fprintf(&sb, "Open tickets: %d", len(c.OpenTickets))
	for _, t := range c.OpenTickets {
		fmt.Fprintf(&sb, "\n- %s [%s] %s", t.ID, t.Status, t.Subject)
	}
	return sb.String()
}

// Reply renders the customer reply prompt.
func (b *Builder) Reply(in ReplyInput) (string, error) {
	data := struct {
		ReplyInput
		Now string
	}{in, b.now()}
	return render(replyTemplate, data)
}

// Analysis renders the request analysis prompt.
func (b *Builder) Analysis(in AnalysisInput) (string, error) {
	if in.Customer == nil {
		return "", fmt.Errorf("customer is required")
	}
	return render(analysisTemplate, in)
}

// Insights renders the customer insights prompt.
func (b *Builder) Insights(in InsightsInput) (string, error) {
	if in.Customer == nil {
		return "", fmt.Errorf("customer is required")
	}
	data := struct {
		InsightsInput
		Now string
	}{in, b.now()}
	return render(insightsTemplate, data)
}

func (b *Builder) now() string {
	return b.nowFunc().Format(time.RFC3339)
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}
	return buf.String(), nil
}
