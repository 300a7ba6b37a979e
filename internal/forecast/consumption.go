package forecast

import "github.com/easeaico/gridcare/internal/types"

// AnalyzeConsumption summarizes a customer's history for reporting and advice.
func AnalyzeConsumption(customer *types.CustomerProfile) types.ConsumptionSummary {
	if customer == nil || len(customer.Consumption) == 0 {
		return types.ConsumptionSummary{Trend: TrendStable}
	}

	amounts := customer.Amounts()
	summary := types.ConsumptionSummary{
		Points:        len(amounts),
		AverageAmount: round2(mean(amounts)),
		LatestAmount:  amounts[len(amounts)-1],
		Trend:         TrendStable,
	}

	usage := make([]float64, 0, len(customer.Consumption))
	peak := customer.Consumption[0]
	for _, rec := range customer.Consumption {
		usage = append(usage, rec.Usage)
		if rec.Amount > peak.Amount {
			peak = rec
		}
	}
	summary.AverageUsage = round2(mean(usage))
	summary.PeakMonth = peak.Month

	if variance, _, ok := VariancePercent(amounts); ok {
		summary.VariancePercent = round2(variance)
	}
	if trend, err := trendRatio(amounts); err == nil {
		summary.Trend = trendLabel(trend)
	}
	return summary
}
