package knowledge

import "time"

const (
	maxVariations         = 50
	maxEscalationPatterns = 20
	maxCorrections        = 100
	escalationPatternLen  = 100
	lowConfidence         = 0.5
)

// Graph is the persisted aggregate state, keyed by intent.
type Graph struct {
	Intents  map[string]*IntentStats `json:"intents"`
	Feedback []Correction            `json:"feedback"`
	Metadata Metadata                `json:"metadata"`
}

// IntentStats aggregates every interaction classified under one intent.
type IntentStats struct {
	Count              int64               `json:"count"`
	AvgConfidence      float64             `json:"avg_confidence"`
	SuccessRate        float64             `json:"success_rate"`
	Resolutions        int64               `json:"resolutions"`
	Escalations        int64               `json:"escalations"`
	Variations         []Variation         `json:"variations"`
	EscalationPatterns []EscalationPattern `json:"escalation_patterns"`
}

// Variation is a normalized query phrasing and how often it was seen.
type Variation struct {
	Text     string    `json:"text"`
	Count    int64     `json:"count"`
	LastSeen time.Time `json:"last_seen"`
}

// EscalationPattern records a low-confidence query that ended with a human.
type EscalationPattern struct {
	Query      string    `json:"query"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// Correction is a human override of an assistant answer.
type Correction struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Intent     string    `json:"intent"`
	Query      string    `json:"query"`
	AIResponse string    `json:"ai_response"`
	Confidence float64   `json:"confidence"`
}

// Metadata holds graph-wide counters.
type Metadata struct {
	LastUpdated       time.Time `json:"last_updated"`
	TotalInteractions int64     `json:"total_interactions"`
	LearningCycles    int64     `json:"learning_cycles"`
}

func newGraph() *Graph {
	return &Graph{
		Intents:  make(map[string]*IntentStats),
		Feedback: []Correction{},
	}
}

func (g *Graph) clone() *Graph {
	out := &Graph{
		Intents:  make(map[string]*IntentStats, len(g.Intents)),
		Feedback: append([]Correction{}, g.Feedback...),
		Metadata: g.Metadata,
	}
	for name, stats := range g.Intents {
		cp := *stats
		cp.Variations = append([]Variation{}, stats.Variations...)
		cp.EscalationPatterns = append([]EscalationPattern{}, stats.EscalationPatterns...)
		out.Intents[name] = &cp
	}
	return out
}

// ensure fills collections that may be absent in older snapshots.
func (g *Graph) ensure() {
	if g.Intents == nil {
		g.Intents = make(map[string]*IntentStats)
	}
	if g.Feedback == nil {
		g.Feedback = []Correction{}
	}
	for name, stats := range g.Intents {
		if stats == nil {
			delete(g.Intents, name)
		}
	}
}
