package brain

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/easeaico/gridcare/internal/forecast"
	"github.com/easeaico/gridcare/internal/generative"
	"github.com/easeaico/gridcare/internal/types"
)

type fixedPicker struct{ n int }

func (p fixedPicker) Intn(int) int { return p.n }

type fakeGenerator struct {
	mu       sync.Mutex
	result   generative.Result
	requests []generative.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req generative.Request) generative.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.result
}

func structured(t *testing.T, v any) generative.Result {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return generative.Result{Kind: generative.KindStructured, JSON: raw}
}

type panicClassifier struct{}

func (panicClassifier) Classify(string, string) types.ClassificationResult {
	panic("classifier exploded")
}

type fakePredictor struct{ prediction types.BillPrediction }

func (f fakePredictor) PredictNextBill(*types.CustomerProfile) types.BillPrediction {
	return f.prediction
}

func testCustomer() *types.CustomerProfile {
	return &types.CustomerProfile{
		ID:            "C-100",
		Name:          "sara ahmed",
		AccountNumber: "ACC-100",
		Address:       "Zone 4, Block 12",
		Language:      "en",
		LastBill:      150,
		PredictedBill: 160,
		Consumption: []types.ConsumptionRecord{
			{Month: "2026-05", Amount: 100, Usage: 400},
			{Month: "2026-06", Amount: 100, Usage: 410},
			{Month: "2026-07", Amount: 100, Usage: 405},
			{Month: "2026-08", Amount: 150, Usage: 600},
		},
	}
}

func TestProcessQueryTemplateReply(t *testing.T) {
	b := New(Deps{Picker: fixedPicker{n: 0}})

	resp := b.ProcessQuery(context.Background(), QueryRequest{
		Customer: testCustomer(),
		Query:    "Why is my bill so high this month?",
		Channel:  "web",
	})

	if resp.Method != MethodTemplate || resp.AIPowered {
		t.Fatalf("expected template reply, got method %q ai=%v", resp.Method, resp.AIPowered)
	}
	if resp.Intent != types.IntentBilling {
		t.Fatalf("expected billing intent, got %q", resp.Intent)
	}
	if !strings.HasPrefix(resp.Message, "Hello Sara Ahmed, ") {
		t.Fatalf("unexpected greeting: %q", resp.Message)
	}
	if !strings.Contains(resp.Message, replyBodies[langEnglish][types.IntentBilling]) {
		t.Fatalf("reply missing billing body: %q", resp.Message)
	}
	if resp.Escalated {
		t.Fatalf("billing query should not escalate")
	}
	if resp.Language != langEnglish {
		t.Fatalf("expected en, got %q", resp.Language)
	}
}

func TestProcessQueryEscalatesOnLowConfidence(t *testing.T) {
	b := New(Deps{Picker: fixedPicker{n: 1}})

	resp := b.ProcessQuery(context.Background(), QueryRequest{Customer: testCustomer(), Query: "hello there"})

	if resp.Intent != types.IntentUnknown || !resp.Escalated {
		t.Fatalf("expected escalated unknown intent, got %q escalated=%v", resp.Intent, resp.Escalated)
	}
	if !strings.HasPrefix(resp.Message, "Hi Sara Ahmed, ") {
		t.Fatalf("unexpected greeting: %q", resp.Message)
	}
	if !strings.HasSuffix(resp.Message, escalationNotes[langEnglish]) {
		t.Fatalf("escalation note missing: %q", resp.Message)
	}
}

func TestProcessQueryEscalatesOnCriticalUrgency(t *testing.T) {
	b := New(Deps{Picker: fixedPicker{}})

	resp := b.ProcessQuery(context.Background(), QueryRequest{Query: "There are sparks coming out of my meter"})

	if resp.Intent != types.IntentMeter {
		t.Fatalf("expected meter intent, got %q", resp.Intent)
	}
	if !resp.Escalated {
		t.Fatalf("critical urgency should escalate")
	}
	if !strings.HasPrefix(resp.Message, "Hello, ") {
		t.Fatalf("anonymous greeting expected, got %q", resp.Message)
	}
}

func TestProcessQueryArabicTemplate(t *testing.T) {
	b := New(Deps{Picker: fixedPicker{n: 2}})
	c := testCustomer()
	c.Language = "ar"

	resp := b.ProcessQuery(context.Background(), QueryRequest{Customer: c, Query: "لدي سؤال عن الفاتورة"})

	if resp.Language != langArabic {
		t.Fatalf("expected ar, got %q", resp.Language)
	}
	if !strings.HasPrefix(resp.Message, greetings[langArabic][2]) {
		t.Fatalf("expected arabic greeting, got %q", resp.Message)
	}
	if !strings.Contains(resp.Message, replyBodies[langArabic][types.IntentBilling]) {
		t.Fatalf("expected arabic billing body, got %q", resp.Message)
	}
}

func TestProcessQueryGenerativeReply(t *testing.T) {
	gen := &fakeGenerator{result: generative.Result{Kind: generative.KindRawText, Text: "  Your bill rose because of cooling.  "}}
	b := New(Deps{Generator: gen, Picker: fixedPicker{}})

	resp := b.ProcessQuery(context.Background(), QueryRequest{Customer: testCustomer(), Query: "my bill is higher"})

	if resp.Method != MethodGenerative || !resp.AIPowered {
		t.Fatalf("expected generative reply, got %q", resp.Method)
	}
	if resp.Message != "Your bill rose because of cooling." {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
	if len(gen.requests) != 1 || gen.requests[0].Schema != nil {
		t.Fatalf("expected one free-text request, got %+v", gen.requests)
	}
	if !strings.Contains(gen.requests[0].Prompt, "my bill is higher") {
		t.Fatalf("prompt should carry the query")
	}
}

func TestProcessQueryEmptyGenerationFallsBack(t *testing.T) {
	gen := &fakeGenerator{result: generative.Result{Kind: generative.KindRawText, Text: "   "}}
	b := New(Deps{Generator: gen, Picker: fixedPicker{}})

	resp := b.ProcessQuery(context.Background(), QueryRequest{Customer: testCustomer(), Query: "my bill"})
	if resp.Method != MethodTemplate {
		t.Fatalf("expected template fallback, got %q", resp.Method)
	}
}

func TestProcessQueryApologizesOnPanic(t *testing.T) {
	b := New(Deps{Classifier: panicClassifier{}})

	resp := b.ProcessQuery(context.Background(), QueryRequest{Customer: testCustomer(), Query: "my bill"})

	if resp.Message != apologies[langEnglish] {
		t.Fatalf("expected apology, got %q", resp.Message)
	}
	if resp.Intent != types.IntentUnknown || resp.Confidence != 0 || !resp.Escalated {
		t.Fatalf("unexpected apology fields: %+v", resp)
	}
	if resp.Method != MethodFallback {
		t.Fatalf("expected fallback method, got %q", resp.Method)
	}
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		ctx  string
		want string
	}{
		{ctx: "Customer: omar khalid\nAccount: 1", want: "Omar Khalid"},
		{ctx: "Customer: unknown", want: ""},
		{ctx: "Account: 1", want: ""},
		{ctx: "Customer:   \nAccount: 1", want: ""},
	}
	for _, tt := range tests {
		if got := extractName(tt.ctx); got != tt.want {
			t.Fatalf("extractName(%q) = %q, want %q", tt.ctx, got, tt.want)
		}
	}
}

func TestAnalyzeRequestKnownAreaIssue(t *testing.T) {
	b := New(Deps{})

	res := b.AnalyzeRequest(context.Background(), ServiceRequest{
		Customer:       testCustomer(),
		RequestType:    "power_outage",
		RequestDetails: "No power since this morning",
	})

	if res.Classification.Category != types.IntentOutage {
		t.Fatalf("expected outage, got %q", res.Classification.Category)
	}
	if res.Priority != PriorityUrgent {
		t.Fatalf("expected urgent, got %q", res.Priority)
	}
	if !res.Guidance.ShouldDeflect || res.ShouldProceed {
		t.Fatalf("known area issue should deflect: %+v", res.Guidance)
	}
	if res.Method != MethodLocal || res.AIPowered {
		t.Fatalf("expected local analysis, got %q", res.Method)
	}
	if len(res.Recommendations) == 0 {
		t.Fatalf("expected recommendations")
	}
}

func TestAnalyzeRequestProceedsWhenUnsure(t *testing.T) {
	b := New(Deps{})
	c := testCustomer()
	c.Address = "Old Town"

	res := b.AnalyzeRequest(context.Background(), ServiceRequest{
		Customer:       c,
		RequestType:    "meter_issue",
		RequestDetails: "The meter display is blank",
	})

	if !res.ShouldProceed {
		t.Fatalf("low guidance confidence should proceed, got %+v", res.Guidance)
	}
	if res.Priority != PriorityMedium {
		t.Fatalf("expected medium, got %q", res.Priority)
	}
}

func TestAnalyzeRequestGenerativeOverride(t *testing.T) {
	gen := &fakeGenerator{}
	gen.result = structured(t, map[string]any{
		"situation_analysis": "Customer reports a blank meter.",
		"root_cause":         "Meter power supply failure.",
		"recommendations":    []string{"Dispatch a technician"},
		"priority":           "HIGH",
	})
	b := New(Deps{Generator: gen})

	res := b.AnalyzeRequest(context.Background(), ServiceRequest{
		Customer:       testCustomer(),
		RequestType:    "meter_issue",
		RequestDetails: "The meter display is blank",
	})

	if res.Method != MethodGenerative || !res.AIPowered {
		t.Fatalf("expected generative analysis, got %q", res.Method)
	}
	if res.Priority != PriorityHigh || res.RootCause != "Meter power supply failure." {
		t.Fatalf("generated fields not applied: %+v", res)
	}
	if len(gen.requests) != 1 || gen.requests[0].Schema == nil {
		t.Fatalf("expected one structured request")
	}
}

func TestAnalyzeRequestIgnoresInvalidPriority(t *testing.T) {
	gen := &fakeGenerator{}
	gen.result = structured(t, map[string]any{"priority": "extreme"})
	b := New(Deps{Generator: gen})

	res := b.AnalyzeRequest(context.Background(), ServiceRequest{
		Customer:    testCustomer(),
		RequestType: "power_outage",
	})
	if res.Priority != PriorityUrgent {
		t.Fatalf("expected local priority to survive, got %q", res.Priority)
	}
}

func TestAnalyzeRequestFallbackOnPanic(t *testing.T) {
	b := New(Deps{Classifier: panicClassifier{}})

	res := b.AnalyzeRequest(context.Background(), ServiceRequest{Customer: testCustomer(), RequestType: "billing"})

	if res.Method != MethodFallback || !res.ShouldProceed || res.Priority != PriorityMedium {
		t.Fatalf("unexpected fallback: %+v", res)
	}
}

func TestRequestPriority(t *testing.T) {
	complaint := types.Ticket{ID: "T", Category: "complaint", Status: "open"}
	tests := []struct {
		name     string
		customer *types.CustomerProfile
		category string
		want     string
	}{
		{name: "outage", customer: &types.CustomerProfile{}, category: types.IntentOutage, want: PriorityUrgent},
		{name: "complaints", customer: &types.CustomerProfile{OpenTickets: []types.Ticket{complaint, complaint, complaint}}, category: types.IntentMeter, want: PriorityHigh},
		{name: "two complaints", customer: &types.CustomerProfile{OpenTickets: []types.Ticket{complaint, complaint}}, category: types.IntentMeter, want: PriorityMedium},
		{name: "closed complaints", customer: &types.CustomerProfile{OpenTickets: []types.Ticket{complaint, complaint, {Category: "complaint", Status: "closed"}}}, category: types.IntentMeter, want: PriorityMedium},
		{name: "balance", customer: &types.CustomerProfile{OutstandingBalance: 1500}, category: types.IntentAdvisory, want: PriorityHigh},
		{name: "bill jump", customer: &types.CustomerProfile{LastBill: 100, PredictedBill: 151}, category: types.IntentBilling, want: PriorityHigh},
		{name: "bill jump other intent", customer: &types.CustomerProfile{LastBill: 100, PredictedBill: 151}, category: types.IntentMeter, want: PriorityMedium},
		{name: "zero last bill", customer: &types.CustomerProfile{PredictedBill: 151}, category: types.IntentBilling, want: PriorityMedium},
		{name: "nil customer", customer: nil, category: types.IntentBilling, want: PriorityMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := requestPriority(tt.customer, types.ClassificationResult{Category: tt.category})
			if got != tt.want {
				t.Fatalf("requestPriority = %q, want %q", got, tt.want)
			}
		})
	}
}

func risingPredictor() fakePredictor {
	return fakePredictor{prediction: types.BillPrediction{
		Predicted:  180,
		Confidence: 0.8,
		Method:     forecast.MethodTrend,
		Trend:      forecast.TrendIncreasing,
	}}
}

func TestCustomerInsightsLocal(t *testing.T) {
	b := New(Deps{Predictor: risingPredictor()})
	c := testCustomer()
	c.OpenTickets = []types.Ticket{{ID: "T-9", Subject: "Complaint about rude staff", Status: "open"}}

	out := b.CustomerInsights(context.Background(), c)

	if out.Method != MethodLocal || out.AIPowered {
		t.Fatalf("expected local insights, got %q", out.Method)
	}
	if out.Prediction.Predicted != 180 {
		t.Fatalf("expected predictor value, got %v", out.Prediction.Predicted)
	}
	if out.Consumption.VariancePercent != 50 {
		t.Fatalf("expected 50%% variance, got %v", out.Consumption.VariancePercent)
	}
	if len(out.Recommendations) != 2 {
		t.Fatalf("expected rising-usage and complaint tips, got %+v", out.Recommendations)
	}
	if out.Recommendations[0].Priority != PriorityHigh || !strings.Contains(out.Recommendations[1].Message, "T-9") {
		t.Fatalf("unexpected tips: %+v", out.Recommendations)
	}
}

func TestCustomerInsightsGeneralTip(t *testing.T) {
	b := New(Deps{Predictor: fakePredictor{prediction: types.BillPrediction{Trend: forecast.TrendStable}}})

	out := b.CustomerInsights(context.Background(), testCustomer())
	if len(out.Recommendations) != 1 || out.Recommendations[0].Priority != PriorityLow {
		t.Fatalf("expected one low tip, got %+v", out.Recommendations)
	}
}

func TestCustomerInsightsStructured(t *testing.T) {
	gen := &fakeGenerator{}
	gen.result = structured(t, map[string]any{
		"predicted_bill": 310.456,
		"confidence":     0.9,
		"trend":          "Stable",
		"recommendations": []map[string]string{
			{"priority": "", "message": "Set the water heater on a timer"},
			{"priority": "low", "message": "  "},
		},
	})
	b := New(Deps{Predictor: risingPredictor(), Generator: gen})

	out := b.CustomerInsights(context.Background(), testCustomer())

	if out.Method != MethodGenerative || !out.AIPowered {
		t.Fatalf("expected generative insights, got %q", out.Method)
	}
	if out.Prediction.Predicted != 310.46 || out.Prediction.Trend != forecast.TrendStable || out.Prediction.Confidence != 0.9 {
		t.Fatalf("generated prediction not applied: %+v", out.Prediction)
	}
	if len(out.Recommendations) != 1 || out.Recommendations[0].Priority != PriorityMedium {
		t.Fatalf("unexpected recommendations: %+v", out.Recommendations)
	}
	if out.RawAnalysis != "" {
		t.Fatalf("raw analysis should be empty")
	}
}

func TestCustomerInsightsRawText(t *testing.T) {
	gen := &fakeGenerator{result: generative.Result{Kind: generative.KindRawText, Text: "Usage is climbing."}}
	b := New(Deps{Predictor: risingPredictor(), Generator: gen})

	out := b.CustomerInsights(context.Background(), testCustomer())

	if out.Method != MethodGenerativeRaw || out.RawAnalysis != "Usage is climbing." {
		t.Fatalf("expected raw analysis, got %+v", out)
	}
	if out.Prediction.Predicted != 180 {
		t.Fatalf("local prediction should be kept, got %v", out.Prediction.Predicted)
	}
}

func TestNewInteraction(t *testing.T) {
	req := QueryRequest{Customer: testCustomer(), Query: "my bill", Channel: "sms"}
	resp := QueryResponse{
		Message:    "ok",
		Intent:     types.IntentBilling,
		Confidence: 0.85,
		Timestamp:  time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}

	in := NewInteraction(req, resp)

	if in.ID == "" || in.CustomerID != "C-100" || in.Channel != "sms" {
		t.Fatalf("unexpected interaction: %+v", in)
	}
	if !in.Resolved || in.Escalated {
		t.Fatalf("non-escalated reply should be resolved")
	}
	if in.AIResponse != "ok" || !in.Timestamp.Equal(resp.Timestamp) {
		t.Fatalf("response fields not copied: %+v", in)
	}
}

func TestNormalizeLanguage(t *testing.T) {
	tests := map[string]string{
		"ar":    langArabic,
		"AR":    langArabic,
		"ar-SA": langArabic,
		" ar ":  langArabic,
		"en":    langEnglish,
		"en-GB": langEnglish,
		"fr":    langEnglish,
		"":      langEnglish,
		"??":    langEnglish,
	}
	for in, want := range tests {
		if got := normalizeLanguage(in); got != want {
			t.Fatalf("normalizeLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}
