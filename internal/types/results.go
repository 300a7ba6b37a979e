package types

// Intent categories.
const (
	IntentBilling   = "billing"
	IntentOutage    = "service_outage"
	IntentMeter     = "meter"
	IntentComplaint = "complaint"
	IntentAdvisory  = "advisory"
	IntentUnknown   = "unknown"
)

// ClassificationResult is the outcome of intent classification.
type ClassificationResult struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// SentimentResult is the lexical read of a customer's message.
type SentimentResult struct {
	Sentiment      string   `json:"sentiment"`
	Score          float64  `json:"score"`
	Emotions       []string `json:"emotions"`
	PrimaryEmotion string   `json:"primary_emotion"`
	Urgency        string   `json:"urgency"`
	Satisfaction   int      `json:"satisfaction"`
	Confidence     float64  `json:"confidence"`
	Escalate       bool     `json:"escalate"`
}

// BillPrediction is the next-bill estimate.
type BillPrediction struct {
	Predicted  float64        `json:"predicted"`
	Confidence float64        `json:"confidence"`
	Method     string         `json:"method"`
	Trend      string         `json:"trend"`
	Breakdown  *BillBreakdown `json:"breakdown,omitempty"`
}

// BillBreakdown explains how a prediction was composed.
type BillBreakdown struct {
	BaseAverage    float64 `json:"base_average"`
	TrendPercent   float64 `json:"trend_percent"`
	SeasonalFactor float64 `json:"seasonal_factor"`
}

// ConsumptionSummary describes a customer's consumption history.
type ConsumptionSummary struct {
	Points          int     `json:"points"`
	AverageAmount   float64 `json:"average_amount"`
	LatestAmount    float64 `json:"latest_amount"`
	VariancePercent float64 `json:"variance_percent"`
	AverageUsage    float64 `json:"average_usage"`
	PeakMonth       string  `json:"peak_month"`
	Trend           string  `json:"trend"`
}

// GuidanceResult is the deflection decision for a service request.
type GuidanceResult struct {
	Suggestion     string           `json:"suggestion"`
	Confidence     float64          `json:"confidence"`
	ShouldDeflect  bool             `json:"should_deflect"`
	Reason         string           `json:"reason"`
	ExistingTicket *Ticket          `json:"existing_ticket,omitempty"`
	Alternatives   []string         `json:"alternatives,omitempty"`
	Insight        *VarianceInsight `json:"insight,omitempty"`
	ETA            string           `json:"eta,omitempty"`
}

// VarianceInsight breaks down an explainable bill change.
type VarianceInsight struct {
	Average         float64 `json:"average"`
	Current         float64 `json:"current"`
	VariancePercent float64 `json:"variance_percent"`
	Reason          string  `json:"reason"`
}
