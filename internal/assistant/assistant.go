// Package assistant assembles the support assistant and its learning store from configuration.
package assistant

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/easeaico/gridcare/internal/advisor"
	"github.com/easeaico/gridcare/internal/brain"
	"github.com/easeaico/gridcare/internal/config"
	"github.com/easeaico/gridcare/internal/customer"
	"github.com/easeaico/gridcare/internal/generative"
	"github.com/easeaico/gridcare/internal/knowledge"
	"github.com/easeaico/gridcare/internal/models"
	"github.com/easeaico/gridcare/internal/repository"
	"github.com/easeaico/gridcare/internal/storage"
)

// SetupLogging installs a text slog handler writing to w at the configured level.
func SetupLogging(w io.Writer, level string) {
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
	slog.SetDefault(logger)
}

// ParseLevel maps debug|info|warn|error to a slog level. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewBrain builds the orchestrator. A provider of "none" yields a Brain that
// answers from templates and local analysis only.
func NewBrain(ctx context.Context, cfg *config.Config) (*brain.Brain, error) {
	llm, err := models.New(ctx, cfg.GenerativeProvider, cfg.GenerativeModel, cfg.APIKey())
	if err != nil {
		return nil, fmt.Errorf("failed to create generative model: %w", err)
	}
	if llm != nil {
		slog.Info("generative model configured", "provider", cfg.GenerativeProvider, "model", llm.Name())
	}

	var areaIssues []advisor.AreaIssue
	if len(cfg.AreaIssues) > 0 {
		areaIssues = cfg.AreaIssues
	}
	return brain.New(brain.Deps{
		Advisor:   advisor.NewAdvisor(areaIssues),
		Generator: generative.NewAdvisor(llm, cfg.GenerativeTimeout),
	}), nil
}

// Snapshots is an opened snapshot backend together with its cleanup.
type Snapshots struct {
	Store knowledge.SnapshotStore
	close func()
}

// Close releases the backend's connections.
func (s *Snapshots) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

// OpenSnapshots connects the configured snapshot backend.
func OpenSnapshots(ctx context.Context, cfg *config.Config) (*Snapshots, error) {
	switch cfg.SnapshotBackend {
	case config.SnapshotFile:
		return &Snapshots{Store: storage.NewFileSnapshotStore(cfg.SnapshotPath)}, nil
	case config.SnapshotPostgres:
		db, err := storage.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return &Snapshots{Store: db.Snapshots, close: db.Close}, nil
	case config.SnapshotFirestore:
		fs, err := storage.NewFirestoreSnapshotStore(ctx, cfg.FirestoreProject, cfg.FirestoreCollection, storage.DefaultSnapshotName)
		if err != nil {
			return nil, err
		}
		return &Snapshots{Store: fs, close: func() {
			if err := fs.Close(); err != nil {
				slog.Warn("failed to close firestore client", "error", err.Error())
			}
		}}, nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.SnapshotBackend)
	}
}

// OpenKnowledge opens the snapshot backend and loads the learning store from it.
func OpenKnowledge(ctx context.Context, cfg *config.Config) (*knowledge.Store, *Snapshots, error) {
	snaps, err := OpenSnapshots(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := knowledge.Open(ctx, snaps.Store, knowledge.Options{FlushEvery: cfg.FlushEvery})
	if err != nil {
		snaps.Close()
		return nil, nil, fmt.Errorf("failed to open knowledge store: %w", err)
	}
	slog.Info("knowledge store opened", "backend", cfg.SnapshotBackend, "intents", len(store.Stats().Intents))
	return store, snaps, nil
}

// OpenAccessor connects the customer and ticket repositories. The returned
// func closes both connections.
func OpenAccessor(ctx context.Context, cfg *config.Config) (*customer.Accessor, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is not configured")
	}
	db, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	pool, err := repository.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	closeAll := func() {
		pool.Close()
		db.Close()
	}
	return customer.NewAccessor(db.Customers, repository.NewTicketRepo(pool)), closeAll, nil
}
