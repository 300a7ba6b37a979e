package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/easeaico/gridcare/internal/customer"
	"github.com/easeaico/gridcare/internal/types"
)

// customerModel maps to the customers table.
type customerModel struct {
	ID                 string `gorm:"primaryKey;size:64"`
	Name               string `gorm:"size:255"`
	AccountNumber      string `gorm:"size:64;index"`
	Address            string `gorm:"type:text"`
	Language           string `gorm:"size:8;default:'en'"`
	LastBill           float64
	PredictedBill      float64
	OutstandingBalance float64
	// UsagePattern is stored as JSONB free-text annotations.
	UsagePattern json.RawMessage `gorm:"type:jsonb"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (customerModel) TableName() string {
	return "customers"
}

// consumptionModel maps to the consumption_records table.
type consumptionModel struct {
	ID         int    `gorm:"primaryKey"`
	CustomerID string `gorm:"size:64;index"`
	Month      string `gorm:"size:7"`
	Amount     float64
	Usage      float64
	CreatedAt  time.Time
}

func (consumptionModel) TableName() string {
	return "consumption_records"
}

// ticketModel maps to the tickets table. Tickets are written by the ticketing
// service; the assistant only reads them.
type ticketModel struct {
	ID         string `gorm:"primaryKey;size:64"`
	CustomerID string `gorm:"size:64;index"`
	Subject    string `gorm:"type:text"`
	Category   string `gorm:"size:64"`
	Status     string `gorm:"size:32;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (ticketModel) TableName() string {
	return "tickets"
}

type customerRepo struct {
	db *gorm.DB
}

// NewCustomerRepo returns a customer.ProfileRepo backed by gorm.
func NewCustomerRepo(db *gorm.DB) customer.ProfileRepo {
	return &customerRepo{db: db}
}

func (r *customerRepo) GetByID(ctx context.Context, id string) (*types.CustomerProfile, error) {
	var model customerModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer by id: %w", err)
	}

	var records []consumptionModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", id).
		Order("month ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get consumption history: %w", err)
	}

	profile, err := customerFromModel(model, records)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func customerFromModel(model customerModel, records []consumptionModel) (*types.CustomerProfile, error) {
	profile := &types.CustomerProfile{
		ID:                 model.ID,
		Name:               model.Name,
		AccountNumber:      model.AccountNumber,
		Address:            model.Address,
		Language:           model.Language,
		LastBill:           model.LastBill,
		PredictedBill:      model.PredictedBill,
		OutstandingBalance: model.OutstandingBalance,
		Consumption:        make([]types.ConsumptionRecord, 0, len(records)),
	}
	if len(model.UsagePattern) > 0 {
		if err := json.Unmarshal(model.UsagePattern, &profile.UsagePattern); err != nil {
			return nil, fmt.Errorf("failed to decode usage pattern: %w", err)
		}
	}
	for _, rec := range records {
		profile.Consumption = append(profile.Consumption, types.ConsumptionRecord{
			Month:  rec.Month,
			Amount: rec.Amount,
			Usage:  rec.Usage,
		})
	}
	return profile, nil
}
