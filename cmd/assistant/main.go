// Package main runs the learning service: it folds logged interactions into the
// knowledge graph and persists it to the configured snapshot backend.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/easeaico/gridcare/internal/assistant"
	"github.com/easeaico/gridcare/internal/config"
	"github.com/easeaico/gridcare/internal/kafka"
	"github.com/easeaico/gridcare/internal/knowledge"
	"github.com/easeaico/gridcare/internal/types"
)

const (
	queueSize       = 256
	shutdownTimeout = 10 * time.Second
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	assistant.SetupLogging(os.Stdout, cfg.LogLevel)
	slog.Info("configuration loaded",
		"snapshot_backend", cfg.SnapshotBackend,
		"flush_every", cfg.FlushEvery,
		"kafka", cfg.KafkaEnabled())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, &cfg, os.Stdin)
	stop()
	if err != nil {
		slog.Error("assistant stopped with error", "error", err.Error())
		os.Exit(1)
	}
}

// run owns every resource it opens and releases them all before returning,
// including when the interaction source fails.
func run(ctx context.Context, cfg *config.Config, stdin io.Reader) error {
	store, snaps, err := assistant.OpenKnowledge(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open knowledge store: %w", err)
	}
	defer snaps.Close()

	ingestor := knowledge.NewIngestor(store, queueSize)
	ingestDone := make(chan error, 1)
	go func() {
		ingestDone <- ingestor.Run(context.WithoutCancel(ctx))
	}()

	sourceErr := runSource(ctx, cfg, stdin, ingestor)
	ingestor.Close()
	<-ingestDone

	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := store.Close(flushCtx); err != nil {
		slog.Error("final flush failed", "error", err.Error())
	}

	if sourceErr != nil {
		return fmt.Errorf("interaction source failed: %w", sourceErr)
	}
	slog.Info("assistant shutdown complete", "total_interactions", store.Stats().TotalInteractions)
	return nil
}

// runSource feeds the ingestor from Kafka when brokers are configured and from
// JSON lines on stdin otherwise.
func runSource(ctx context.Context, cfg *config.Config, stdin io.Reader, ingestor *knowledge.Ingestor) error {
	if cfg.KafkaEnabled() {
		consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.InteractionsTopic, cfg.KafkaGroupID)
		defer func() {
			if err := consumer.Close(); err != nil {
				slog.Warn("failed to close kafka consumer", "error", err.Error())
			}
		}()
		slog.Info("consuming interactions", "topic", cfg.InteractionsTopic, "group", cfg.KafkaGroupID)
		return consumer.Run(ctx, ingestor.Submit)
	}

	slog.Info("reading interactions from stdin")
	done := make(chan error, 1)
	go func() {
		done <- readInteractions(ctx, stdin, ingestor)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return nil
	}
}

func readInteractions(ctx context.Context, r io.Reader, ingestor *knowledge.Ingestor) error {
	dec := json.NewDecoder(r)
	for {
		var in types.Interaction
		if err := dec.Decode(&in); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to decode interaction: %w", err)
		}
		if in.Timestamp.IsZero() {
			in.Timestamp = time.Now()
		}
		if err := ingestor.Submit(ctx, in); err != nil {
			return err
		}
	}
}
