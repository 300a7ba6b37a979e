// Package knowledge keeps per-intent learning statistics and persists them as a snapshot.
package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/easeaico/gridcare/internal/types"
)

// ErrSnapshotNotFound is returned by a SnapshotStore that holds no snapshot yet.
var ErrSnapshotNotFound = errors.New("knowledge snapshot not found")

// SnapshotStore is the durable home of the serialized graph.
type SnapshotStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Options tunes a Store.
type Options struct {
	// FlushEvery persists after every n-th interaction. Defaults to 10.
	FlushEvery int
	NowFunc    func() time.Time
}

// Store owns the graph. All mutations are serialized by mu, and snapshots are
// written in the order they were taken.
type Store struct {
	mu         sync.Mutex
	graph      *Graph
	snapshots  SnapshotStore
	flushEvery int64
	nowFunc    func() time.Time

	persistMu sync.Mutex
	seq       uint64
	savedSeq  uint64
	// held blocks automatic writes after a failed load until an explicit Save.
	held bool
}

// Open loads the latest snapshot, or starts empty when none exists.
// A nil SnapshotStore keeps the graph in memory only. When the backend cannot be
// read the store starts empty and does not overwrite the snapshot until Save is
// called explicitly.
func Open(ctx context.Context, snapshots SnapshotStore, opts Options) (*Store, error) {
	s := &Store{
		graph:      newGraph(),
		snapshots:  snapshots,
		flushEvery: int64(opts.FlushEvery),
		nowFunc:    opts.NowFunc,
	}
	if s.flushEvery <= 0 {
		s.flushEvery = 10
	}
	if s.nowFunc == nil {
		s.nowFunc = time.Now
	}
	if snapshots == nil {
		return s, nil
	}

	data, err := snapshots.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			slog.Info("no knowledge snapshot found, starting empty")
			return s, nil
		}
		slog.Warn("failed to load knowledge snapshot, starting empty with flushing held",
			"error", err.Error())
		s.held = true
		return s, nil
	}

	var graph Graph
	if err := json.Unmarshal(data, &graph); err != nil {
		slog.Warn("discarding unreadable knowledge snapshot", "error", err.Error())
		return s, nil
	}
	graph.ensure()
	s.graph = &graph
	slog.Info("knowledge snapshot loaded",
		"intents", len(graph.Intents),
		"total_interactions", graph.Metadata.TotalInteractions)
	return s, nil
}

// Learn folds one interaction into the graph and persists on every FlushEvery-th one.
// Persistence failures are logged; the in-memory state keeps accruing.
func (s *Store) Learn(ctx context.Context, in types.Interaction) {
	s.mu.Lock()
	s.apply(in)
	var (
		data []byte
		seq  uint64
	)
	if s.graph.Metadata.TotalInteractions%s.flushEvery == 0 {
		s.graph.Metadata.LearningCycles++
		if !s.held {
			data, seq = s.marshalLocked()
		}
	}
	s.mu.Unlock()

	if data != nil {
		if err := s.persist(ctx, data, seq); err != nil {
			slog.Warn("failed to persist knowledge graph", "error", err.Error())
		}
	}
}

func (s *Store) apply(in types.Interaction) {
	now := s.nowFunc()
	g := s.graph
	g.Metadata.TotalInteractions++
	g.Metadata.LastUpdated = now

	intent := strings.TrimSpace(in.Intent)
	if intent == "" {
		intent = types.IntentUnknown
	}
	stats, ok := g.Intents[intent]
	if !ok {
		stats = &IntentStats{}
		g.Intents[intent] = stats
	}

	stats.Count++
	stats.AvgConfidence += (in.Confidence - stats.AvgConfidence) / float64(stats.Count)

	seen := in.Timestamp
	if seen.IsZero() {
		seen = now
	}
	if query := normalizeQuery(in.Query); query != "" {
		stats.addVariation(query, seen)
	}

	if in.Resolved && !in.Escalated {
		stats.Resolutions++
	}
	stats.SuccessRate = float64(stats.Resolutions) / float64(stats.Count) * 100

	if in.Escalated {
		stats.Escalations++
		if in.Confidence < lowConfidence {
			stats.EscalationPatterns = append(stats.EscalationPatterns, EscalationPattern{
				Query:      truncateRunes(in.Query, escalationPatternLen),
				Confidence: in.Confidence,
				Timestamp:  seen,
			})
			if over := len(stats.EscalationPatterns) - maxEscalationPatterns; over > 0 {
				stats.EscalationPatterns = append([]EscalationPattern{}, stats.EscalationPatterns[over:]...)
			}
		}
	}

	if in.HumanOverride {
		g.Feedback = append(g.Feedback, Correction{
			ID:         uuid.NewString(),
			Timestamp:  seen,
			Intent:     intent,
			Query:      in.Query,
			AIResponse: in.AIResponse,
			Confidence: in.Confidence,
		})
		if over := len(g.Feedback) - maxCorrections; over > 0 {
			g.Feedback = append([]Correction{}, g.Feedback[over:]...)
		}
	}
}

func (st *IntentStats) addVariation(query string, seen time.Time) {
	for i := range st.Variations {
		if st.Variations[i].Text == query {
			st.Variations[i].Count++
			st.Variations[i].LastSeen = seen
			return
		}
	}
	st.Variations = append(st.Variations, Variation{Text: query, Count: 1, LastSeen: seen})
	if len(st.Variations) > maxVariations {
		sort.SliceStable(st.Variations, func(i, j int) bool {
			return st.Variations[i].Count > st.Variations[j].Count
		})
		st.Variations = st.Variations[:maxVariations]
	}
}

// Save persists the current graph immediately and releases a held store.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	data, seq := s.marshalLocked()
	s.mu.Unlock()
	if data == nil {
		return fmt.Errorf("failed to encode knowledge graph")
	}
	if err := s.persist(ctx, data, seq); err != nil {
		return err
	}
	s.mu.Lock()
	s.held = false
	s.mu.Unlock()
	return nil
}

// Held reports whether automatic writes are suspended after a failed load.
func (s *Store) Held() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}

// Close flushes the graph on shutdown. A held store is left unwritten.
func (s *Store) Close(ctx context.Context) error {
	if s.Held() {
		slog.Warn("skipping knowledge flush, snapshot was never loaded")
		return nil
	}
	if err := s.Save(ctx); err != nil {
		return fmt.Errorf("failed to flush knowledge graph: %w", err)
	}
	return nil
}

// Reset discards all learned state in memory. The next save overwrites the snapshot.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = newGraph()
}

// Snapshot returns a deep copy of the graph.
func (s *Store) Snapshot() *Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.clone()
}

func (s *Store) marshalLocked() ([]byte, uint64) {
	data, err := json.Marshal(s.graph)
	if err != nil {
		slog.Error("failed to marshal knowledge graph", "error", err.Error())
		return nil, 0
	}
	s.seq++
	return data, s.seq
}

// persist drops snapshots older than one already written.
func (s *Store) persist(ctx context.Context, data []byte, seq uint64) error {
	if s.snapshots == nil {
		return nil
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if seq <= s.savedSeq {
		return nil
	}
	if err := s.snapshots.Save(ctx, data); err != nil {
		return fmt.Errorf("failed to save knowledge snapshot: %w", err)
	}
	s.savedSeq = seq
	return nil
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
