package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/easeaico/gridcare/internal/types"
)

// Ingestor is a single-writer queue in front of a Store. Callers hand off
// logged interactions without waiting for learning or persistence.
type Ingestor struct {
	store     *Store
	queue     chan types.Interaction
	closeOnce sync.Once
}

// NewIngestor returns an Ingestor with the given queue capacity.
func NewIngestor(store *Store, buffer int) *Ingestor {
	if buffer <= 0 {
		buffer = 64
	}
	return &Ingestor{
		store: store,
		queue: make(chan types.Interaction, buffer),
	}
}

// Submit queues an interaction, blocking while the queue is full.
func (i *Ingestor) Submit(ctx context.Context, in types.Interaction) (err error) {
	defer func() {
		if recover() != nil {
			err = fmt.Errorf("ingestor closed")
		}
	}()
	select {
	case i.queue <- in:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to queue interaction: %w", ctx.Err())
	}
}

// Run applies queued interactions until Close is called and the queue drains,
// or ctx is cancelled.
func (i *Ingestor) Run(ctx context.Context) error {
	for {
		select {
		case in, ok := <-i.queue:
			if !ok {
				return nil
			}
			i.store.Learn(ctx, in)
		case <-ctx.Done():
			slog.Info("ingestor stopping", "pending", len(i.queue))
			return nil
		}
	}
}

// Close stops accepting interactions. Run returns once the queue is drained.
func (i *Ingestor) Close() {
	i.closeOnce.Do(func() { close(i.queue) })
}
