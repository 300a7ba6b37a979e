package brain

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/easeaico/gridcare/internal/forecast"
	"github.com/easeaico/gridcare/internal/generative"
	"github.com/easeaico/gridcare/internal/prompt"
	"github.com/easeaico/gridcare/internal/types"
)

const risingVarianceThreshold = 15.0

// Tip is one recommendation for the customer.
type Tip struct {
	Priority string `json:"priority" jsonschema:"one of low, medium, high"`
	Message  string `json:"message" jsonschema:"the recommendation shown to the customer"`
}

// CustomerInsights is the bill outlook shown on a customer's dashboard.
type CustomerInsights struct {
	Prediction      types.BillPrediction     `json:"prediction"`
	Consumption     types.ConsumptionSummary `json:"consumption"`
	Recommendations []Tip                    `json:"recommendations"`
	// RawAnalysis holds a model reply that could not be parsed as JSON.
	RawAnalysis string `json:"raw_analysis,omitempty"`
	AIPowered   bool   `json:"ai_powered"`
	Method      string `json:"method"`
}

// insightsOutput is the structure requested from the generative model.
type insightsOutput struct {
	PredictedBill   float64 `json:"predicted_bill" jsonschema:"expected amount of the next bill"`
	Confidence      float64 `json:"confidence" jsonschema:"confidence between 0 and 1"`
	Trend           string  `json:"trend" jsonschema:"increasing, decreasing or stable"`
	Recommendations []Tip   `json:"recommendations"`
}

var insightsSchema = generative.SchemaFor[insightsOutput]()

// CustomerInsights never fails. Without a usable model reply it is built
// entirely from the local predictor and template tips.
func (b *Brain) CustomerInsights(ctx context.Context, customer *types.CustomerProfile) (out CustomerInsights) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("customer insights failed", "panic", fmt.Sprint(r))
			stored := 0.0
			if customer != nil {
				stored = customer.PredictedBill
			}
			out = CustomerInsights{
				Prediction: types.BillPrediction{
					Predicted:  stored,
					Confidence: 0.30,
					Method:     forecast.MethodFallback,
					Trend:      forecast.TrendStable,
				},
				Recommendations: []Tip{},
				Method:          MethodFallback,
			}
		}
	}()

	prediction := b.predictor.PredictNextBill(customer)
	summary := forecast.AnalyzeConsumption(customer)

	out = CustomerInsights{
		Prediction:      prediction,
		Consumption:     summary,
		Recommendations: localTips(customer, prediction, summary),
		Method:          MethodLocal,
	}
	if customer == nil || insightsSchema == nil {
		return out
	}

	text, err := b.prompts.Insights(prompt.InsightsInput{Customer: customer, Prediction: prediction})
	if err != nil {
		slog.Warn("failed to build insights prompt", "error", err.Error())
		return out
	}
	res := b.generator.Generate(ctx, generative.Request{
		Instruction: prompt.InsightsInstruction,
		Prompt:      text,
		Schema:      insightsSchema,
	})

	var generated insightsOutput
	switch {
	case generative.Decode(res, &generated):
		applyGenerated(&out, generated)
		out.AIPowered = true
		out.Method = MethodGenerative
	case res.Kind == generative.KindRawText:
		out.RawAnalysis = res.Text
		out.AIPowered = true
		out.Method = MethodGenerativeRaw
	}
	return out
}

func applyGenerated(out *CustomerInsights, g insightsOutput) {
	if g.PredictedBill > 0 && !math.IsInf(g.PredictedBill, 0) {
		out.Prediction.Predicted = math.Round(g.PredictedBill*100) / 100
		out.Prediction.Method = MethodGenerative
		if g.Confidence > 0 && g.Confidence <= 1 {
			out.Prediction.Confidence = g.Confidence
		}
		switch t := strings.ToLower(g.Trend); t {
		case forecast.TrendIncreasing, forecast.TrendDecreasing, forecast.TrendStable:
			out.Prediction.Trend = t
		}
	}
	tips := make([]Tip, 0, len(g.Recommendations))
	for _, tip := range g.Recommendations {
		if strings.TrimSpace(tip.Message) == "" {
			continue
		}
		if tip.Priority == "" {
			tip.Priority = PriorityMedium
		}
		tips = append(tips, tip)
	}
	if len(tips) > 0 {
		out.Recommendations = tips
	}
}

func localTips(c *types.CustomerProfile, prediction types.BillPrediction, summary types.ConsumptionSummary) []Tip {
	tips := []Tip{}
	if prediction.Trend == forecast.TrendIncreasing && summary.VariancePercent > risingVarianceThreshold {
		tips = append(tips, Tip{
			Priority: PriorityHigh,
			Message: fmt.Sprintf("Your consumption is rising: the latest bill is %.0f%% above your average. Check air conditioning, water heating and appliances left on standby.",
				summary.VariancePercent),
		})
	}
	if c != nil {
		for _, t := range c.OpenTickets {
			if t.IsOpen() && isComplaint(t) {
				tips = append(tips, Tip{
					Priority: PriorityMedium,
					Message:  fmt.Sprintf("Your complaint %s is still %s. You can check its status in the app.", t.ID, t.Status),
				})
			}
		}
	}
	if len(tips) == 0 {
		tips = append(tips, Tip{
			Priority: PriorityLow,
			Message:  "Your usage looks steady. Running heavy appliances outside peak hours can lower your next bill.",
		})
	}
	return tips
}
