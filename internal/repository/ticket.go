// Package repository reads support tickets through a pgx connection pool.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/easeaico/gridcare/internal/types"
)

// TicketRepo provides read access to the tickets table.
type TicketRepo struct {
	pool *pgxpool.Pool
}

// NewTicketRepo creates a new TicketRepo.
func NewTicketRepo(pool *pgxpool.Pool) *TicketRepo {
	return &TicketRepo{pool: pool}
}

// Connect opens a pgx pool and verifies it.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// ListOpen fetches a customer's tickets that are not closed or resolved, newest first.
func (r *TicketRepo) ListOpen(ctx context.Context, customerID string) ([]types.Ticket, error) {
	query := `
		SELECT id, subject, category, status, created_at
		FROM tickets
		WHERE customer_id = $1 AND lower(trim(status)) NOT IN ('closed', 'resolved')
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open tickets: %w", err)
	}

	tickets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Ticket, error) {
		var t types.Ticket
		err := row.Scan(&t.ID, &t.Subject, &t.Category, &t.Status, &t.CreatedAt)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan open tickets: %w", err)
	}
	return tickets, nil
}
