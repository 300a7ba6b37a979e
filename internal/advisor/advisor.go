// Package advisor decides whether a service request can be deflected before a ticket is filed.
package advisor

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/easeaico/gridcare/internal/forecast"
	"github.com/easeaico/gridcare/internal/types"
)

// Deflection reasons.
const (
	ReasonDuplicate   = "duplicate_complaint"
	ReasonAreaIssue   = "known_area_issue"
	ReasonVariance    = "explainable_variance"
	ReasonNeedsReview = "needs_human_review"
	ReasonProcessing  = "processing"
)

const (
	varianceThreshold   = 15.0
	minOverlapTokenSize = 4
)

// AreaIssue is a known problem affecting every address with the given prefix.
type AreaIssue struct {
	Prefix      string `yaml:"prefix" json:"prefix"`
	Description string `yaml:"description" json:"description"`
	ETA         string `yaml:"eta" json:"eta"`
}

// DefaultAreaIssues is used when no table is configured.
var DefaultAreaIssues = []AreaIssue{
	{Prefix: "Zone 4", Description: "scheduled transformer maintenance", ETA: "2-4 hours"},
	{Prefix: "Industrial Area", Description: "feeder cable repair", ETA: "6 hours"},
}

var duplicateAlternatives = []string{
	"Track the status of your existing ticket",
	"Add new details to the existing ticket",
	"Request a callback from a support agent",
}

// Advisor evaluates an ordered rule chain and stops at the first rule that applies.
type Advisor struct {
	areaIssues []AreaIssue
}

// NewAdvisor returns an Advisor. A nil table selects DefaultAreaIssues.
func NewAdvisor(areaIssues []AreaIssue) *Advisor {
	if areaIssues == nil {
		areaIssues = DefaultAreaIssues
	}
	return &Advisor{areaIssues: areaIssues}
}

// Analyze never panics; evaluation failures yield a low-confidence processing result.
func (a *Advisor) Analyze(customer *types.CustomerProfile, requestType, requestDetails string) (result types.GuidanceResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("advisor evaluation failed", "panic", fmt.Sprint(r), "request_type", requestType)
			result = types.GuidanceResult{
				Suggestion: "We are processing your request.",
				Confidence: 0.30,
				Reason:     ReasonProcessing,
			}
		}
	}()

	if customer == nil {
		panic("nil customer profile")
	}

	rules := []func(*types.CustomerProfile, string, string) (types.GuidanceResult, bool){
		a.checkDuplicate,
		a.checkAreaIssue,
		a.checkBillVariance,
	}
	for _, rule := range rules {
		if res, ok := rule(customer, requestType, requestDetails); ok {
			return res
		}
	}

	return types.GuidanceResult{
		Suggestion: "A support agent will review your request.",
		Confidence: 0.50,
		Reason:     ReasonNeedsReview,
	}
}

func (a *Advisor) checkDuplicate(customer *types.CustomerProfile, requestType, _ string) (types.GuidanceResult, bool) {
	for _, ticket := range customer.OpenTickets {
		if !ticket.IsOpen() || !overlaps(ticket.Subject, requestType) {
			continue
		}
		existing := ticket
		return types.GuidanceResult{
			Suggestion:     fmt.Sprintf("You already have an open ticket (%s) about this, currently %s.", ticket.ID, ticket.Status),
			Confidence:     0.95,
			ShouldDeflect:  true,
			Reason:         ReasonDuplicate,
			ExistingTicket: &existing,
			Alternatives:   append([]string(nil), duplicateAlternatives...),
		}, true
	}
	return types.GuidanceResult{}, false
}

func (a *Advisor) checkAreaIssue(customer *types.CustomerProfile, requestType, requestDetails string) (types.GuidanceResult, bool) {
	if !isOutageRequest(requestType, requestDetails) {
		return types.GuidanceResult{}, false
	}
	address := strings.ToLower(strings.TrimSpace(customer.Address))
	if address == "" {
		return types.GuidanceResult{}, false
	}
	for _, issue := range a.areaIssues {
		prefix := strings.ToLower(strings.TrimSpace(issue.Prefix))
		if prefix == "" || !strings.HasPrefix(address, prefix) {
			continue
		}
		return types.GuidanceResult{
			Suggestion:    fmt.Sprintf("Your area is affected by %s. Service should be restored within %s.", issue.Description, issue.ETA),
			Confidence:    0.90,
			ShouldDeflect: true,
			Reason:        ReasonAreaIssue,
			ETA:           issue.ETA,
		}, true
	}
	return types.GuidanceResult{}, false
}

func (a *Advisor) checkBillVariance(customer *types.CustomerProfile, requestType, _ string) (types.GuidanceResult, bool) {
	if !strings.Contains(strings.ToLower(requestType), "bill") {
		return types.GuidanceResult{}, false
	}
	reason := strings.TrimSpace(customer.UsagePattern.HighConsumptionReason)
	if reason == "" {
		return types.GuidanceResult{}, false
	}
	amounts := customer.Amounts()
	variance, average, ok := forecast.VariancePercent(amounts)
	if !ok || math.Abs(variance) <= varianceThreshold {
		return types.GuidanceResult{}, false
	}
	current := amounts[len(amounts)-1]
	return types.GuidanceResult{
		Suggestion:    fmt.Sprintf("Your latest bill is %.0f%% different from your average, mainly because of %s.", math.Abs(variance), reason),
		Confidence:    0.85,
		ShouldDeflect: true,
		Reason:        ReasonVariance,
		Insight: &types.VarianceInsight{
			Average:         math.Round(average*100) / 100,
			Current:         current,
			VariancePercent: math.Round(variance*100) / 100,
			Reason:          reason,
		},
	}, true
}

// overlaps matches case-insensitively in either direction, then on request tokens
// that name the topic. Generic words such as "issue" or "service" never match alone.
func overlaps(subject, requestType string) bool {
	s := normalize(subject)
	r := normalize(requestType)
	if s == "" || r == "" {
		return false
	}
	if strings.Contains(s, r) && !generic(r) || strings.Contains(r, s) && !generic(s) {
		return true
	}
	subjectTokens := strings.Fields(s)
	for _, tok := range strings.Fields(r) {
		if !significantToken(tok) {
			continue
		}
		for _, st := range subjectTokens {
			if strings.HasPrefix(st, tok) || strings.HasPrefix(tok, st) && significantToken(st) {
				return true
			}
		}
	}
	return false
}

// genericTokens appear in request types and ticket subjects of every kind.
var genericTokens = map[string]struct{}{
	"issue": {}, "issues": {}, "inquiry": {}, "enquiry": {}, "request": {}, "service": {},
	"problem": {}, "general": {}, "about": {}, "customer": {}, "question": {}, "help": {},
	"support": {}, "report": {}, "with": {}, "from": {},
}

func significantToken(tok string) bool {
	if len([]rune(tok)) < minOverlapTokenSize {
		return false
	}
	return !generic(tok)
}

func generic(s string) bool {
	_, ok := genericTokens[s]
	return ok
}

func normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func isOutageRequest(requestType, details string) bool {
	text := strings.ToLower(requestType + " " + details)
	for _, kw := range []string{"outage", "no power", "power cut", "blackout", "انقطاع"} {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
