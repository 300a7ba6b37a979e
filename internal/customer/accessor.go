// Package customer assembles read-only customer profiles from their backing stores.
package customer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/easeaico/gridcare/internal/types"
)

// ProfileRepo loads the customer record and consumption history.
type ProfileRepo interface {
	GetByID(ctx context.Context, id string) (*types.CustomerProfile, error)
}

// TicketRepo lists a customer's unresolved tickets.
type TicketRepo interface {
	ListOpen(ctx context.Context, customerID string) ([]types.Ticket, error)
}

// Accessor composes profile and ticket data.
type Accessor struct {
	profiles ProfileRepo
	tickets  TicketRepo
}

// NewAccessor returns an Accessor. tickets may be nil.
func NewAccessor(profiles ProfileRepo, tickets TicketRepo) *Accessor {
	return &Accessor{profiles: profiles, tickets: tickets}
}

// Profile returns the customer with open tickets attached. A ticket store
// failure is logged and the profile is returned without tickets.
func (a *Accessor) Profile(ctx context.Context, id string) (*types.CustomerProfile, error) {
	if a == nil || a.profiles == nil {
		return nil, fmt.Errorf("customer accessor not configured")
	}
	profile, err := a.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer profile: %w", err)
	}
	if profile == nil {
		return nil, fmt.Errorf("customer %s not found", id)
	}

	if a.tickets != nil {
		tickets, err := a.tickets.ListOpen(ctx, id)
		if err != nil {
			slog.Warn("failed to load open tickets", "error", err.Error(), "customer_id", id)
		} else {
			profile.OpenTickets = tickets
		}
	}

	open := profile.OpenTickets[:0:0]
	for _, t := range profile.OpenTickets {
		if t.IsOpen() {
			open = append(open, t)
		}
	}
	profile.OpenTickets = open
	return profile, nil
}

// LoadFile reads a customer profile from a JSON document.
func LoadFile(path string) (*types.CustomerProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read customer file: %w", err)
	}
	var profile types.CustomerProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse customer file: %w", err)
	}
	return &profile, nil
}
