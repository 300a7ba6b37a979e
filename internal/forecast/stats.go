package forecast

import "math"

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationStdDev divides by n, not n-1.
func populationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sq := 0.0
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// VariancePercent compares the latest amount with the mean of all earlier amounts.
// ok is false when fewer than two points exist or the earlier mean is zero.
func VariancePercent(amounts []float64) (variance, average float64, ok bool) {
	if len(amounts) < 2 {
		return 0, 0, false
	}
	latest := amounts[len(amounts)-1]
	average = mean(amounts[:len(amounts)-1])
	if average == 0 {
		return 0, average, false
	}
	return (latest - average) / average * 100, average, true
}
