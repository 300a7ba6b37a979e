package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/easeaico/gridcare/internal/knowledge"
)

// DefaultSnapshotName identifies the knowledge graph row or document.
const DefaultSnapshotName = "knowledge_graph"

// knowledgeSnapshotModel maps to the knowledge_snapshots table.
type knowledgeSnapshotModel struct {
	Name      string          `gorm:"primaryKey;size:64"`
	Payload   json.RawMessage `gorm:"type:jsonb"`
	UpdatedAt time.Time
}

func (knowledgeSnapshotModel) TableName() string {
	return "knowledge_snapshots"
}

// PostgresSnapshotStore keeps the knowledge graph in a single JSONB row.
type PostgresSnapshotStore struct {
	db   *gorm.DB
	name string
}

// NewPostgresSnapshotStore returns a snapshot store for the named row.
func NewPostgresSnapshotStore(db *gorm.DB, name string) *PostgresSnapshotStore {
	return &PostgresSnapshotStore{db: db, name: name}
}

func (s *PostgresSnapshotStore) Load(ctx context.Context) ([]byte, error) {
	var model knowledgeSnapshotModel
	if err := s.db.WithContext(ctx).Where("name = ?", s.name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, knowledge.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load knowledge snapshot: %w", err)
	}
	return model.Payload, nil
}

func (s *PostgresSnapshotStore) Save(ctx context.Context, data []byte) error {
	record := knowledgeSnapshotModel{
		Name:      s.name,
		Payload:   json.RawMessage(data),
		UpdatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to save knowledge snapshot: %w", err)
	}
	return nil
}
