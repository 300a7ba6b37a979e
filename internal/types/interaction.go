package types

import "time"

// Interaction is a logged exchange between a customer and the assistant.
type Interaction struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customer_id"`
	Channel       string    `json:"channel"`
	Intent        string    `json:"intent"`
	Query         string    `json:"query"`
	Confidence    float64   `json:"confidence"`
	Resolved      bool      `json:"resolved"`
	Escalated     bool      `json:"escalated"`
	HumanOverride bool      `json:"human_override"`
	AIResponse    string    `json:"ai_response"`
	Timestamp     time.Time `json:"timestamp"`
}
