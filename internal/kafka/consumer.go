package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/easeaico/gridcare/internal/types"
)

// Handler receives each decoded interaction.
type Handler func(ctx context.Context, in types.Interaction) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads interactions as part of a consumer group.
type Consumer struct {
	reader messageReader
}

// NewConsumer creates a group Consumer for the given topic.
func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
	}
}

// Run hands every message to handler and commits it afterwards. Malformed
// messages are logged and committed so they are not redelivered. Run returns
// nil when ctx is cancelled.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("failed to fetch message: %w", err)
		}

		in, err := decodeInteraction(msg)
		if err != nil {
			slog.Warn("skipping malformed interaction", "offset", msg.Offset, "partition", msg.Partition, "error", err.Error())
		} else if err := handler(ctx, in); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to handle interaction %s: %w", in.ID, err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to commit message: %w", err)
		}
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
