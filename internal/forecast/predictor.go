// Package forecast estimates upcoming bills from a customer's consumption history.
package forecast

import (
	"errors"
	"log/slog"
	"time"

	"github.com/easeaico/gridcare/internal/types"
)

// Prediction methods.
const (
	MethodTrend            = "trend_analysis"
	MethodInsufficientData = "insufficient_data"
	MethodFallback         = "fallback"
)

// Trend labels.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

const (
	minHistory         = 3
	window             = 3
	trendThreshold     = 0.05
	minConfidence      = 0.6
	maxConfidence      = 0.95
	insufficientConf   = 0.50
	fallbackConfidence = 0.30
)

var errMalformedHistory = errors.New("malformed consumption history")

// Predictor projects the next bill. Its clock is injectable for tests.
type Predictor struct {
	nowFunc func() time.Time
}

// NewPredictor returns a Predictor using wall-clock time.
func NewPredictor() *Predictor {
	return &Predictor{nowFunc: time.Now}
}

// PredictNextBill never fails: short histories are labeled insufficient_data
// and arithmetic problems degrade to the customer's stored prediction.
func (p *Predictor) PredictNextBill(customer *types.CustomerProfile) types.BillPrediction {
	if customer == nil {
		return fallbackPrediction(0)
	}
	amounts := customer.Amounts()
	if len(amounts) < minHistory {
		return types.BillPrediction{
			Predicted:  customer.PredictedBill,
			Confidence: insufficientConf,
			Method:     MethodInsufficientData,
			Trend:      TrendStable,
		}
	}

	prediction, err := p.predict(amounts)
	if err != nil {
		slog.Warn("bill prediction fell back", "error", err.Error(), "customer_id", customer.ID)
		return fallbackPrediction(customer.PredictedBill)
	}
	return prediction
}

func (p *Predictor) predict(amounts []float64) (types.BillPrediction, error) {
	for _, a := range amounts {
		if a < 0 || !finite(a) {
			return types.BillPrediction{}, errMalformedHistory
		}
	}

	recent := mean(amounts[len(amounts)-window:])
	trend, err := trendRatio(amounts)
	if err != nil {
		return types.BillPrediction{}, err
	}

	// The factor follows the current calendar month, not the billed period.
	seasonal := seasonalFactor(p.now().Month())
	predicted := recent * (1 + trend) * seasonal

	overall := mean(amounts)
	if overall == 0 {
		return types.BillPrediction{}, errors.New("zero mean consumption")
	}
	cv := populationStdDev(amounts) / overall * 100
	confidence := clamp(1-cv/100, minConfidence, maxConfidence)

	if !finite(predicted) || !finite(confidence) {
		return types.BillPrediction{}, errors.New("non-finite prediction")
	}

	return types.BillPrediction{
		Predicted:  round2(predicted),
		Confidence: round2(confidence),
		Method:     MethodTrend,
		Trend:      trendLabel(trend),
		Breakdown: &types.BillBreakdown{
			BaseAverage:    round2(recent),
			TrendPercent:   round2(trend * 100),
			SeasonalFactor: seasonal,
		},
	}, nil
}

func (p *Predictor) now() time.Time {
	if p == nil || p.nowFunc == nil {
		return time.Now()
	}
	return p.nowFunc()
}

// trendRatio compares the last three amounts with the three before them.
// Fewer than six points yield no trend.
func trendRatio(amounts []float64) (float64, error) {
	if len(amounts) < 2*window {
		return 0, nil
	}
	n := len(amounts)
	recent := mean(amounts[n-window:])
	previous := mean(amounts[n-2*window : n-window])
	if previous == 0 {
		return 0, errors.New("zero previous average")
	}
	return (recent - previous) / previous, nil
}

func trendLabel(trend float64) string {
	switch {
	case trend > trendThreshold:
		return TrendIncreasing
	case trend < -trendThreshold:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func seasonalFactor(month time.Month) float64 {
	switch month {
	case time.December, time.January, time.February:
		return 1.10
	case time.June, time.July, time.August, time.September:
		return 1.15
	default:
		return 1.0
	}
}

func fallbackPrediction(stored float64) types.BillPrediction {
	return types.BillPrediction{
		Predicted:  stored,
		Confidence: fallbackConfidence,
		Method:     MethodFallback,
		Trend:      TrendStable,
	}
}
