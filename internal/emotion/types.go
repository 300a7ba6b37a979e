package emotion

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Urgency tiers, most severe first.
const (
	UrgencyCritical = "critical"
	UrgencyHigh     = "high"
	UrgencyMedium   = "medium"
	UrgencyLow      = "low"
)

// EmotionAngry is the emotion that, combined with a negative high-urgency read, triggers escalation.
const EmotionAngry = "angry"

// ClampSatisfaction bounds a satisfaction estimate to 1-5.
func ClampSatisfaction(score int) int {
	switch {
	case score < 1:
		return 1
	case score > 5:
		return 5
	default:
		return score
	}
}
