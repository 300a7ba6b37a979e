package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/easeaico/gridcare/internal/types"
)

type fakeSnapshotStore struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	loadErr error
	saveErr error
}

func (f *fakeSnapshotStore) Load(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.data == nil {
		return nil, ErrSnapshotNotFound
	}
	return append([]byte(nil), f.data...), nil
}

func (f *fakeSnapshotStore) Save(ctx context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.data = append([]byte(nil), data...)
	f.saves++
	return nil
}

func fixedNow() time.Time {
	return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
}

func openStore(t *testing.T, snapshots SnapshotStore) *Store {
	t.Helper()
	store, err := Open(context.Background(), snapshots, Options{NowFunc: fixedNow})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return store
}

func interactions() []types.Interaction {
	return []types.Interaction{
		{Intent: "billing", Query: "Why is my bill high?", Confidence: 0.85, Resolved: true},
		{Intent: "billing", Query: "why is my bill high?", Confidence: 0.65, Resolved: true},
		{Intent: "billing", Query: "bill too high", Confidence: 0.40, Escalated: true},
		{Intent: "service_outage", Query: "no power at home", Confidence: 0.88, Resolved: true},
		{Intent: "unknown", Query: "hello", Confidence: 0.30, Escalated: true, HumanOverride: true, AIResponse: "Hi"},
	}
}

func TestLearnAggregates(t *testing.T) {
	store := openStore(t, nil)
	for _, in := range interactions() {
		store.Learn(context.Background(), in)
	}

	g := store.Snapshot()
	if g.Metadata.TotalInteractions != 5 {
		t.Fatalf("expected 5 interactions, got %d", g.Metadata.TotalInteractions)
	}
	billing := g.Intents["billing"]
	if billing == nil || billing.Count != 3 {
		t.Fatalf("unexpected billing stats: %#v", billing)
	}
	if diff := billing.AvgConfidence - (0.85+0.65+0.40)/3; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("unexpected average confidence: %v", billing.AvgConfidence)
	}
	if billing.Resolutions != 2 || billing.Escalations != 1 {
		t.Fatalf("unexpected counters: %#v", billing)
	}
	if len(billing.Variations) != 2 || billing.Variations[0].Count != 2 {
		t.Fatalf("expected normalized variations to merge: %#v", billing.Variations)
	}
	if len(billing.EscalationPatterns) != 1 {
		t.Fatalf("expected one escalation pattern, got %d", len(billing.EscalationPatterns))
	}
	if len(g.Feedback) != 1 || g.Feedback[0].ID == "" || g.Feedback[0].AIResponse != "Hi" {
		t.Fatalf("unexpected feedback: %#v", g.Feedback)
	}
}

func TestLearnPersistsEveryTenth(t *testing.T) {
	snapshots := &fakeSnapshotStore{}
	store := openStore(t, snapshots)
	for i := 0; i < 25; i++ {
		store.Learn(context.Background(), types.Interaction{Intent: "billing", Query: fmt.Sprintf("q%d", i), Confidence: 0.9})
	}
	if snapshots.saves != 2 {
		t.Fatalf("expected 2 saves, got %d", snapshots.saves)
	}
	if got := store.Stats().LearningCycles; got != 2 {
		t.Fatalf("expected 2 learning cycles, got %d", got)
	}
}

func TestLearnSurvivesSaveFailure(t *testing.T) {
	snapshots := &fakeSnapshotStore{saveErr: errors.New("disk full")}
	store := openStore(t, snapshots)
	for i := 0; i < 10; i++ {
		store.Learn(context.Background(), types.Interaction{Intent: "meter", Confidence: 0.8})
	}
	if got := store.Stats().TotalInteractions; got != 10 {
		t.Fatalf("expected state to keep accruing, got %d", got)
	}
	if err := store.Save(context.Background()); err == nil {
		t.Fatalf("expected save error")
	}
}

func TestReloadDoesNotDoubleCount(t *testing.T) {
	snapshots := &fakeSnapshotStore{}
	first := openStore(t, snapshots)
	for _, in := range interactions() {
		first.Learn(context.Background(), in)
	}
	if err := first.Save(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	reloaded := openStore(t, snapshots)
	fresh := openStore(t, nil)
	for _, in := range interactions() {
		fresh.Learn(context.Background(), in)
	}

	a, b := reloaded.Snapshot(), fresh.Snapshot()
	if a.Metadata.TotalInteractions != b.Metadata.TotalInteractions {
		t.Fatalf("total mismatch: %d vs %d", a.Metadata.TotalInteractions, b.Metadata.TotalInteractions)
	}
	for name, want := range b.Intents {
		got := a.Intents[name]
		if got == nil || got.Count != want.Count || got.Resolutions != want.Resolutions || got.Escalations != want.Escalations {
			t.Fatalf("intent %s mismatch: %#v vs %#v", name, got, want)
		}
	}
}

func TestVariationCap(t *testing.T) {
	store := openStore(t, nil)
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		q := fmt.Sprintf("frequent query %d", i)
		store.Learn(ctx, types.Interaction{Intent: "billing", Query: q, Confidence: 0.9})
		store.Learn(ctx, types.Interaction{Intent: "billing", Query: q, Confidence: 0.9})
	}
	for i := 0; i < 10; i++ {
		store.Learn(ctx, types.Interaction{Intent: "billing", Query: fmt.Sprintf("rare query %d", i), Confidence: 0.9})
	}

	variations := store.Snapshot().Intents["billing"].Variations
	if len(variations) != 50 {
		t.Fatalf("expected 50 variations, got %d", len(variations))
	}
	for i, v := range variations {
		if strings.HasPrefix(v.Text, "rare") {
			t.Fatalf("low-frequency entry survived: %s", v.Text)
		}
		if i > 0 && variations[i-1].Count < v.Count {
			t.Fatalf("variations not ranked by count")
		}
	}
}

func TestEscalationPatternCap(t *testing.T) {
	store := openStore(t, nil)
	long := strings.Repeat("x", 150)
	for i := 0; i < 25; i++ {
		store.Learn(context.Background(), types.Interaction{
			Intent:     "complaint",
			Query:      fmt.Sprintf("%02d%s", i, long),
			Confidence: 0.2,
			Escalated:  true,
		})
	}
	patterns := store.Snapshot().Intents["complaint"].EscalationPatterns
	if len(patterns) != 20 {
		t.Fatalf("expected 20 patterns, got %d", len(patterns))
	}
	if !strings.HasPrefix(patterns[0].Query, "05") {
		t.Fatalf("expected oldest entries evicted, first is %s", patterns[0].Query[:2])
	}
	if len([]rune(patterns[0].Query)) != 100 {
		t.Fatalf("expected truncation to 100 runes, got %d", len([]rune(patterns[0].Query)))
	}
}

func TestCorrectionCap(t *testing.T) {
	store := openStore(t, nil)
	for i := 0; i < 105; i++ {
		store.Learn(context.Background(), types.Interaction{Intent: "billing", Query: fmt.Sprintf("q%d", i), HumanOverride: true})
	}
	feedback := store.Snapshot().Feedback
	if len(feedback) != 100 {
		t.Fatalf("expected 100 corrections, got %d", len(feedback))
	}
	if feedback[0].Query != "q5" {
		t.Fatalf("expected oldest corrections evicted, first is %s", feedback[0].Query)
	}
}

func TestReset(t *testing.T) {
	store := openStore(t, nil)
	store.Learn(context.Background(), types.Interaction{Intent: "billing", Confidence: 0.9})
	store.Reset()
	if stats := store.Stats(); stats.TotalInteractions != 0 || stats.IntentCount != 0 {
		t.Fatalf("expected empty graph, got %#v", stats)
	}
}

func TestOpenLoadErrorHoldsFlushing(t *testing.T) {
	snapshots := &fakeSnapshotStore{data: []byte(`{"intents":{}}`), loadErr: errors.New("unreachable")}
	store := openStore(t, snapshots)
	if !store.Held() {
		t.Fatalf("expected store to be held after a failed load")
	}

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		store.Learn(ctx, types.Interaction{Intent: "billing", Query: fmt.Sprintf("q%d", i), Confidence: 0.9})
	}
	if err := store.Close(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if snapshots.saves != 0 {
		t.Fatalf("expected existing snapshot untouched, got %d saves", snapshots.saves)
	}
	if got := store.Stats().TotalInteractions; got != 20 {
		t.Fatalf("expected state to keep accruing, got %d", got)
	}

	if err := store.Save(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if snapshots.saves != 1 || store.Held() {
		t.Fatalf("expected explicit save to write and release, saves=%d held=%v", snapshots.saves, store.Held())
	}
	for i := 0; i < 10; i++ {
		store.Learn(ctx, types.Interaction{Intent: "billing", Confidence: 0.9})
	}
	if snapshots.saves != 2 {
		t.Fatalf("expected automatic flushing to resume, got %d saves", snapshots.saves)
	}
}

func TestSuccessRateCountsEveryInteraction(t *testing.T) {
	store := openStore(t, nil)
	ctx := context.Background()
	store.Learn(ctx, types.Interaction{Intent: "billing", Confidence: 0.9, Resolved: true})
	if got := store.Snapshot().Intents["billing"].SuccessRate; got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
	store.Learn(ctx, types.Interaction{Intent: "billing", Confidence: 0.3, Escalated: true})
	if got := store.Snapshot().Intents["billing"].SuccessRate; got != 50 {
		t.Fatalf("expected an escalation to lower the rate to 50, got %v", got)
	}
	store.Learn(ctx, types.Interaction{Intent: "billing", Confidence: 0.6, Resolved: true, Escalated: true})
	stats := store.Snapshot().Intents["billing"]
	if stats.Resolutions != 1 {
		t.Fatalf("escalated resolution should not count, got %d", stats.Resolutions)
	}
	if diff := stats.SuccessRate - 100.0/3; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected rate over all interactions, got %v", stats.SuccessRate)
	}
}

func TestOpenCorruptSnapshotStartsEmpty(t *testing.T) {
	store := openStore(t, &fakeSnapshotStore{data: []byte("{not json")})
	if store.Stats().TotalInteractions != 0 {
		t.Fatalf("expected empty graph")
	}
}

func TestConcurrentLearn(t *testing.T) {
	store := openStore(t, &fakeSnapshotStore{})
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				store.Learn(context.Background(), types.Interaction{Intent: "billing", Query: "same", Confidence: 0.5, Resolved: true})
			}
		}()
	}
	wg.Wait()
	stats := store.Snapshot().Intents["billing"]
	if stats.Count != 800 || stats.Resolutions != 800 || stats.Variations[0].Count != 800 {
		t.Fatalf("lost updates: %#v", stats)
	}
}
