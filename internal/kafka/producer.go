// Package kafka moves logged interactions between assistant instances and the
// learning store over a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/segmentio/kafka-go"

	"github.com/easeaico/gridcare/internal/types"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes interactions to the interactions topic.
type Producer struct {
	writer messageWriter
}

// NewProducer creates a Producer for the given brokers and topic.
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// PublishInteraction sends one interaction keyed by customer.
func (p *Producer) PublishInteraction(ctx context.Context, in types.Interaction) error {
	msg, err := encodeInteraction(in)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish interaction: %w", err)
	}
	slog.Debug("published interaction", "id", in.ID, "intent", in.Intent)
	return nil
}

// Close closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

func encodeInteraction(in types.Interaction) (kafka.Message, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal interaction: %w", err)
	}
	key := in.CustomerID
	if key == "" {
		key = in.ID
	}
	return kafka.Message{Key: []byte(key), Value: data}, nil
}

func decodeInteraction(msg kafka.Message) (types.Interaction, error) {
	var in types.Interaction
	if err := json.Unmarshal(msg.Value, &in); err != nil {
		return types.Interaction{}, fmt.Errorf("failed to unmarshal interaction: %w", err)
	}
	if strings.TrimSpace(in.Intent) == "" {
		return types.Interaction{}, fmt.Errorf("interaction %q has no intent", in.ID)
	}
	return in, nil
}
