// Package storage holds the gorm-backed repositories and the knowledge snapshot backends.
package storage

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/easeaico/gridcare/internal/customer"
)

// Store holds the gorm handle and its repositories.
type Store struct {
	db        *gorm.DB
	Customers customer.ProfileRepo
	Snapshots *PostgresSnapshotStore
}

// NewStore opens and pings the database.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		db:        db,
		Customers: NewCustomerRepo(db),
		Snapshots: NewPostgresSnapshotStore(db, DefaultSnapshotName),
	}, nil
}

// AutoMigrate creates the application tables.
func (s *Store) AutoMigrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(
		&customerModel{},
		&consumptionModel{},
		&ticketModel{},
		&knowledgeSnapshotModel{},
	); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	return nil
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Close() {
	if s.db == nil {
		return
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return
	}
	_ = sqlDB.Close()
}
