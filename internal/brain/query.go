package brain

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/easeaico/gridcare/internal/emotion"
	"github.com/easeaico/gridcare/internal/generative"
	"github.com/easeaico/gridcare/internal/prompt"
	"github.com/easeaico/gridcare/internal/types"
)

const escalationConfidence = 0.6

var customerNamePattern = regexp.MustCompile(`(?m)^Customer:[ \t]*(.+?)[ \t]*$`)

// QueryRequest is a free-text customer message.
type QueryRequest struct {
	Customer *types.CustomerProfile
	Query    string
	Channel  string
	Language string
}

// QueryResponse is the reply returned to the customer channel.
type QueryResponse struct {
	Message        string                     `json:"message"`
	Intent         string                     `json:"intent"`
	Confidence     float64                    `json:"confidence"`
	Classification types.ClassificationResult `json:"classification"`
	Sentiment      types.SentimentResult      `json:"sentiment"`
	Escalated      bool                       `json:"escalated"`
	AIPowered      bool                       `json:"ai_powered"`
	Method         string                     `json:"method"`
	Language       string                     `json:"language"`
	Timestamp      time.Time                  `json:"timestamp"`
}

// ProcessQuery never fails. Any panic downstream yields a fixed apology with
// intent unknown, confidence 0 and escalation set.
func (b *Brain) ProcessQuery(ctx context.Context, req QueryRequest) (resp QueryResponse) {
	lang := queryLanguage(req)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("query processing failed", "panic", fmt.Sprint(r))
			resp = apology(lang)
		}
	}()

	var (
		classification types.ClassificationResult
		sentiment      types.SentimentResult
		customerCtx    string
		g              errgroup.Group
	)
	g.Go(guard("classify", func() { classification = b.classifier.Classify("", req.Query) }))
	g.Go(guard("sentiment", func() { sentiment = b.sentiment.Analyze(req.Query, lang) }))
	g.Go(guard("context", func() { customerCtx = b.prompts.CustomerContext(req.Customer) }))
	if err := g.Wait(); err != nil {
		slog.Error("query processing failed", "error", err.Error())
		return apology(lang)
	}

	escalate := classification.Confidence < escalationConfidence ||
		sentiment.Escalate ||
		sentiment.Urgency == emotion.UrgencyCritical

	resp = QueryResponse{
		Intent:         classification.Category,
		Confidence:     classification.Confidence,
		Classification: classification,
		Sentiment:      sentiment,
		Escalated:      escalate,
		Language:       lang,
		Timestamp:      time.Now(),
	}

	if text, ok := b.generateReply(ctx, req, lang, customerCtx, classification, sentiment); ok {
		resp.Message = text
		resp.AIPowered = true
		resp.Method = MethodGenerative
		return resp
	}

	resp.Message = b.templateReply(lang, customerCtx, classification.Category, escalate)
	resp.Method = MethodTemplate
	return resp
}

func apology(lang string) QueryResponse {
	return QueryResponse{
		Message:   apologies[lang],
		Intent:    types.IntentUnknown,
		Sentiment: emotion.DefaultSentiment(),
		Escalated: true,
		Method:    MethodFallback,
		Language:  lang,
		Timestamp: time.Now(),
	}
}

func (b *Brain) generateReply(ctx context.Context, req QueryRequest, lang, customerCtx string, cls types.ClassificationResult, sent types.SentimentResult) (string, bool) {
	text, err := b.prompts.Reply(prompt.ReplyInput{
		Context:    customerCtx,
		Query:      req.Query,
		Channel:    req.Channel,
		Language:   lang,
		Intent:     cls.Category,
		Confidence: cls.Confidence,
		Sentiment:  sent.Sentiment,
		Urgency:    sent.Urgency,
		Emotions:   sent.Emotions,
	})
	if err != nil {
		slog.Warn("failed to build reply prompt", "error", err.Error())
		return "", false
	}

	res := b.generator.Generate(ctx, generative.Request{
		Instruction: prompt.ReplyInstruction,
		Prompt:      text,
	})
	if res.Kind == generative.KindUnavailable || strings.TrimSpace(res.Text) == "" {
		return "", false
	}
	return strings.TrimSpace(res.Text), true
}

func (b *Brain) templateReply(lang, customerCtx, category string, escalate bool) string {
	greets := greetings[lang]
	greeting := greets[b.pick(len(greets))]
	if name := extractName(customerCtx); name != "" {
		greeting += " " + name
	}

	body, ok := replyBodies[lang][category]
	if !ok {
		body = replyBodies[lang][types.IntentUnknown]
	}

	var sb strings.Builder
	sb.WriteString(greeting)
	if lang == langArabic {
		sb.WriteString("، ")
	} else {
		sb.WriteString(", ")
	}
	sb.WriteString(body)
	if escalate {
		sb.WriteString(" ")
		sb.WriteString(escalationNotes[lang])
	}
	return sb.String()
}

// extractName reads the "Customer:" line of a context summary and title-cases it.
func extractName(customerCtx string) string {
	m := customerNamePattern.FindStringSubmatch(customerCtx)
	if len(m) < 2 {
		return ""
	}
	name := strings.TrimSpace(m[1])
	if name == "" || strings.EqualFold(name, "unknown") {
		return ""
	}
	return cases.Title(language.Und).String(name)
}

func queryLanguage(req QueryRequest) string {
	if req.Language != "" {
		return normalizeLanguage(req.Language)
	}
	if req.Customer != nil {
		return normalizeLanguage(req.Customer.Language)
	}
	return langEnglish
}

// guard converts a panic inside a fan-out task into an error for errgroup.
func guard(name string, fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s failed: %v", name, r)
			}
		}()
		fn()
		return nil
	}
}

// NewInteraction builds the record a caller logs after answering a query.
func NewInteraction(req QueryRequest, resp QueryResponse) types.Interaction {
	in := types.Interaction{
		ID:         uuid.NewString(),
		Channel:    req.Channel,
		Intent:     resp.Intent,
		Query:      req.Query,
		Confidence: resp.Confidence,
		Resolved:   !resp.Escalated,
		Escalated:  resp.Escalated,
		AIResponse: resp.Message,
		Timestamp:  resp.Timestamp,
	}
	if req.Customer != nil {
		in.CustomerID = req.Customer.ID
	}
	return in
}
