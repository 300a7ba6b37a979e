package brain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/easeaico/gridcare/internal/advisor"
	"github.com/easeaico/gridcare/internal/forecast"
	"github.com/easeaico/gridcare/internal/generative"
	"github.com/easeaico/gridcare/internal/prompt"
	"github.com/easeaico/gridcare/internal/types"
)

// Request priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const (
	proceedBelowConfidence = 0.7
	complaintTicketLimit   = 2
	balanceLimit           = 1000.0
	billJumpRatio          = 1.5
)

// ServiceRequest is a structured request submitted before a ticket is filed.
type ServiceRequest struct {
	Customer       *types.CustomerProfile
	RequestType    string
	RequestDetails string
}

// RequestAnalysis tells the caller whether to continue to ticket submission.
type RequestAnalysis struct {
	Classification    types.ClassificationResult `json:"classification"`
	Guidance          types.GuidanceResult       `json:"guidance"`
	Consumption       types.ConsumptionSummary   `json:"consumption"`
	SituationAnalysis string                     `json:"situation_analysis"`
	RootCause         string                     `json:"root_cause"`
	Recommendations   []string                   `json:"recommendations"`
	Priority          string                     `json:"priority"`
	ShouldProceed     bool                       `json:"should_proceed"`
	AIPowered         bool                       `json:"ai_powered"`
	Method            string                     `json:"method"`
}

// analysisOutput is the structure requested from the generative model.
type analysisOutput struct {
	SituationAnalysis string   `json:"situation_analysis" jsonschema:"short assessment of the customer's situation"`
	RootCause         string   `json:"root_cause" jsonschema:"most likely cause of the request"`
	Recommendations   []string `json:"recommendations" jsonschema:"concrete next steps for the customer or agent"`
	Priority          string   `json:"priority" jsonschema:"one of low, medium, high, urgent"`
}

var analysisSchema = generative.SchemaFor[analysisOutput]()

// AnalyzeRequest never fails; internal errors yield a medium-priority result
// that recommends proceeding with the ticket.
func (b *Brain) AnalyzeRequest(ctx context.Context, req ServiceRequest) (out RequestAnalysis) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("request analysis failed", "panic", fmt.Sprint(r))
			out = fallbackAnalysis()
		}
	}()

	var (
		classification types.ClassificationResult
		guidance       types.GuidanceResult
		g              errgroup.Group
	)
	g.Go(guard("classify", func() { classification = b.classifier.Classify(req.RequestType, req.RequestDetails) }))
	g.Go(guard("advise", func() { guidance = b.advisor.Analyze(req.Customer, req.RequestType, req.RequestDetails) }))
	if err := g.Wait(); err != nil {
		slog.Error("request analysis failed", "error", err.Error())
		return fallbackAnalysis()
	}

	summary := forecast.AnalyzeConsumption(req.Customer)

	out = RequestAnalysis{
		Classification:    classification,
		Guidance:          guidance,
		Consumption:       summary,
		SituationAnalysis: situationText(req, classification),
		RootCause:         rootCauseText(classification, guidance),
		Recommendations:   localRecommendations(classification, guidance),
		Priority:          requestPriority(req.Customer, classification),
		ShouldProceed:     guidance.Confidence < proceedBelowConfidence,
		Method:            MethodLocal,
	}

	if generated, ok := b.generateAnalysis(ctx, req, classification, guidance, summary); ok {
		if generated.SituationAnalysis != "" {
			out.SituationAnalysis = generated.SituationAnalysis
		}
		if generated.RootCause != "" {
			out.RootCause = generated.RootCause
		}
		if len(generated.Recommendations) > 0 {
			out.Recommendations = generated.Recommendations
		}
		if p := strings.ToLower(strings.TrimSpace(generated.Priority)); validPriority(p) {
			out.Priority = p
		}
		out.AIPowered = true
		out.Method = MethodGenerative
	}
	return out
}

func (b *Brain) generateAnalysis(ctx context.Context, req ServiceRequest, cls types.ClassificationResult, guidance types.GuidanceResult, summary types.ConsumptionSummary) (analysisOutput, bool) {
	if req.Customer == nil || analysisSchema == nil {
		return analysisOutput{}, false
	}
	text, err := b.prompts.Analysis(prompt.AnalysisInput{
		Customer:         req.Customer,
		RequestType:      req.RequestType,
		Details:          req.RequestDetails,
		Intent:           cls.Category,
		IntentConfidence: cls.Confidence,
		Guidance:         guidance,
		Summary:          summary,
	})
	if err != nil {
		slog.Warn("failed to build analysis prompt", "error", err.Error())
		return analysisOutput{}, false
	}

	res := b.generator.Generate(ctx, generative.Request{
		Instruction: prompt.AnalysisInstruction,
		Prompt:      text,
		Schema:      analysisSchema,
	})
	var generated analysisOutput
	if !generative.Decode(res, &generated) {
		return analysisOutput{}, false
	}
	return generated, true
}

// requestPriority applies the fixed rules in order; the first match wins.
func requestPriority(c *types.CustomerProfile, cls types.ClassificationResult) string {
	if cls.Category == types.IntentOutage {
		return PriorityUrgent
	}
	if c == nil {
		return PriorityMedium
	}
	if countComplaints(c.OpenTickets) > complaintTicketLimit {
		return PriorityHigh
	}
	if c.OutstandingBalance > balanceLimit {
		return PriorityHigh
	}
	if cls.Category == types.IntentBilling && c.LastBill > 0 && c.PredictedBill > billJumpRatio*c.LastBill {
		return PriorityHigh
	}
	return PriorityMedium
}

func countComplaints(tickets []types.Ticket) int {
	n := 0
	for _, t := range tickets {
		if t.IsOpen() && isComplaint(t) {
			n++
		}
	}
	return n
}

func isComplaint(t types.Ticket) bool {
	return strings.EqualFold(t.Category, types.IntentComplaint) ||
		strings.Contains(strings.ToLower(t.Subject), types.IntentComplaint)
}

func validPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

func situationText(req ServiceRequest, cls types.ClassificationResult) string {
	name := "The customer"
	if req.Customer != nil && strings.TrimSpace(req.Customer.Name) != "" {
		name = req.Customer.Name
	}
	return fmt.Sprintf("%s submitted a %s request, classified as %s with %.0f%% confidence.",
		name, displayType(req.RequestType), cls.Category, cls.Confidence*100)
}

func rootCauseText(cls types.ClassificationResult, guidance types.GuidanceResult) string {
	switch guidance.Reason {
	case advisor.ReasonDuplicate:
		return "An open ticket already covers this issue."
	case advisor.ReasonAreaIssue:
		return "A known issue is affecting the customer's area."
	case advisor.ReasonVariance:
		if guidance.Insight != nil {
			return fmt.Sprintf("Consumption changed by %.1f%% due to %s.", guidance.Insight.VariancePercent, guidance.Insight.Reason)
		}
		return "Consumption changed for a known reason."
	}
	switch cls.Category {
	case types.IntentBilling:
		return "Billing question that needs account review."
	case types.IntentOutage:
		return "Possible supply interruption at the customer's premises."
	case types.IntentMeter:
		return "Possible meter reading or meter hardware problem."
	case types.IntentComplaint:
		return "Service dissatisfaction reported by the customer."
	case types.IntentAdvisory:
		return "Customer is looking for consumption advice."
	default:
		return "The request could not be categorized automatically."
	}
}

func localRecommendations(cls types.ClassificationResult, guidance types.GuidanceResult) []string {
	recs := []string{}
	if guidance.ShouldDeflect && guidance.Suggestion != "" {
		recs = append(recs, guidance.Suggestion)
	}
	recs = append(recs, guidance.Alternatives...)
	switch cls.Category {
	case types.IntentBilling:
		recs = append(recs, "Compare the latest bill with the consumption history before disputing it.")
	case types.IntentOutage:
		recs = append(recs, "Check whether neighbours are affected and keep the breaker in the off position until supply returns.")
	case types.IntentMeter:
		recs = append(recs, "Submit a photo of the current meter reading.")
	case types.IntentComplaint:
		recs = append(recs, "Assign the case to a supervisor for follow-up.")
	case types.IntentAdvisory:
		recs = append(recs, "Share the energy-saving guide for the customer's tariff.")
	default:
		recs = append(recs, "Route the request to a human agent for triage.")
	}
	return recs
}

func displayType(requestType string) string {
	t := strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(requestType))
	if t == "" {
		return "general"
	}
	return t
}

func fallbackAnalysis() RequestAnalysis {
	return RequestAnalysis{
		Classification: types.ClassificationResult{
			Category:   types.IntentUnknown,
			Confidence: 0,
			Reasoning:  "analysis failed",
		},
		Guidance: types.GuidanceResult{
			Suggestion: "We are processing your request.",
			Confidence: 0.30,
			Reason:     advisor.ReasonProcessing,
		},
		SituationAnalysis: "The request could not be analyzed automatically.",
		RootCause:         "Unknown.",
		Recommendations:   []string{"Proceed with ticket submission."},
		Priority:          PriorityMedium,
		ShouldProceed:     true,
		Method:            MethodFallback,
	}
}
