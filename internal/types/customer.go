package types

import (
	"strings"
	"time"
)

// CustomerProfile is the read-only customer view consumed by the assistant core.
type CustomerProfile struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	AccountNumber      string  `json:"account_number"`
	Address            string  `json:"address"`
	Language           string  `json:"language"`
	LastBill           float64 `json:"last_bill"`
	PredictedBill      float64 `json:"predicted_bill"`
	OutstandingBalance float64 `json:"outstanding_balance"`
	// Consumption is ordered oldest first.
	Consumption  []ConsumptionRecord `json:"consumption"`
	OpenTickets  []Ticket            `json:"open_tickets"`
	UsagePattern UsagePattern        `json:"usage_pattern"`
}

// ConsumptionRecord is one billing period.
type ConsumptionRecord struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
	Usage  float64 `json:"usage"`
}

// Ticket is an existing support ticket.
type Ticket struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// UsagePattern holds free-text annotations about how a customer consumes.
type UsagePattern struct {
	HighConsumptionReason string   `json:"high_consumption_reason"`
	PeakHours             string   `json:"peak_hours"`
	Notes                 []string `json:"notes"`
}

// Amounts returns the billed amounts in chronological order.
func (c *CustomerProfile) Amounts() []float64 {
	if c == nil {
		return nil
	}
	amounts := make([]float64, 0, len(c.Consumption))
	for _, rec := range c.Consumption {
		amounts = append(amounts, rec.Amount)
	}
	return amounts
}

// IsOpen reports whether a ticket still awaits resolution. Status is matched
// case-insensitively.
func (t Ticket) IsOpen() bool {
	switch strings.ToLower(strings.TrimSpace(t.Status)) {
	case "closed", "resolved":
		return false
	default:
		return true
	}
}
