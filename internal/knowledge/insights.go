package knowledge

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// NoDataMessage is reported for intents that were never observed.
const NoDataMessage = "no data available for this intent"

const (
	topVariations       = 5
	maxSimilarResults   = 5
	similarityThreshold = 0.6
	successRateFloor    = 70.0
	avgConfidenceFloor  = 0.70
	escalationRateCeil  = 0.30
	priorityHigh        = "high"
	priorityMedium      = "medium"
)

// Insights summarizes how well one intent is handled.
type Insights struct {
	Intent            string           `json:"intent"`
	Found             bool             `json:"found"`
	Message           string           `json:"message,omitempty"`
	TotalInteractions int64            `json:"total_interactions"`
	SuccessRate       string           `json:"success_rate"`
	AverageConfidence string           `json:"average_confidence"`
	EscalationRate    string           `json:"escalation_rate"`
	TopVariations     []Variation      `json:"top_variations"`
	Recommendations   []Recommendation `json:"recommendations"`
}

// Recommendation is an action suggested by the statistics.
type Recommendation struct {
	Priority string `json:"priority"`
	Message  string `json:"message"`
}

// IntentInsights reports statistics and recommendations for intent.
func (s *Store) IntentInsights(intent string) Insights {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, ok := s.graph.Intents[intent]
	if !ok || stats.Count == 0 {
		return Insights{Intent: intent, Message: NoDataMessage}
	}

	escalationRate := float64(stats.Escalations) / float64(stats.Count)

	top := append([]Variation{}, stats.Variations...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })
	if len(top) > topVariations {
		top = top[:topVariations]
	}

	recs := []Recommendation{}
	if stats.SuccessRate < successRateFloor {
		recs = append(recs, Recommendation{
			Priority: priorityHigh,
			Message:  fmt.Sprintf("Success rate for %s is %.1f%%; review the resolution flow and reply templates.", intent, stats.SuccessRate),
		})
	}
	if stats.AvgConfidence < avgConfidenceFloor {
		recs = append(recs, Recommendation{
			Priority: priorityMedium,
			Message:  fmt.Sprintf("Average confidence for %s is %.1f%%; add keywords for common phrasings.", intent, stats.AvgConfidence*100),
		})
	}
	if escalationRate > escalationRateCeil {
		recs = append(recs, Recommendation{
			Priority: priorityHigh,
			Message:  fmt.Sprintf("%.1f%% of %s interactions escalate; consider routing them to a specialist queue.", escalationRate*100, intent),
		})
	}

	return Insights{
		Intent:            intent,
		Found:             true,
		TotalInteractions: stats.Count,
		SuccessRate:       fmt.Sprintf("%.1f%%", stats.SuccessRate),
		AverageConfidence: fmt.Sprintf("%.1f%%", stats.AvgConfidence*100),
		EscalationRate:    fmt.Sprintf("%.1f%%", escalationRate*100),
		TopVariations:     top,
		Recommendations:   recs,
	}
}

// GraphStats is a graph-wide overview.
type GraphStats struct {
	TotalInteractions int64          `json:"total_interactions"`
	LearningCycles    int64          `json:"learning_cycles"`
	LastUpdated       time.Time      `json:"last_updated"`
	IntentCount       int            `json:"intent_count"`
	TotalVariations   int            `json:"total_variations"`
	TotalCorrections  int            `json:"total_corrections"`
	Intents           []IntentVolume `json:"intents"`
}

// IntentVolume is one intent's share of the traffic.
type IntentVolume struct {
	Intent      string  `json:"intent"`
	Count       int64   `json:"count"`
	SuccessRate float64 `json:"success_rate"`
}

// Stats returns graph-wide counters, busiest intents first.
func (s *Store) Stats() GraphStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.graph
	out := GraphStats{
		TotalInteractions: g.Metadata.TotalInteractions,
		LearningCycles:    g.Metadata.LearningCycles,
		LastUpdated:       g.Metadata.LastUpdated,
		IntentCount:       len(g.Intents),
		TotalCorrections:  len(g.Feedback),
		Intents:           make([]IntentVolume, 0, len(g.Intents)),
	}
	for name, stats := range g.Intents {
		out.TotalVariations += len(stats.Variations)
		out.Intents = append(out.Intents, IntentVolume{
			Intent:      name,
			Count:       stats.Count,
			SuccessRate: math.Round(stats.SuccessRate*100) / 100,
		})
	}
	sort.Slice(out.Intents, func(i, j int) bool {
		if out.Intents[i].Count != out.Intents[j].Count {
			return out.Intents[i].Count > out.Intents[j].Count
		}
		return out.Intents[i].Intent < out.Intents[j].Intent
	})
	return out
}

// SimilarQuery is a stored phrasing close to a probe query.
type SimilarQuery struct {
	Query      string  `json:"query"`
	Intent     string  `json:"intent"`
	Similarity float64 `json:"similarity"`
	Count      int64   `json:"count"`
}

// FindSimilarQueries ranks stored phrasings by Jaccard similarity of their word sets.
// An empty intent searches every intent.
func (s *Store) FindSimilarQueries(query, intent string) []SimilarQuery {
	probe := wordSet(normalizeQuery(query))
	if len(probe) == 0 {
		return []SimilarQuery{}
	}

	s.mu.Lock()
	var matches []SimilarQuery
	for name, stats := range s.graph.Intents {
		if intent != "" && name != intent {
			continue
		}
		for _, v := range stats.Variations {
			sim := jaccard(probe, wordSet(v.Text))
			if sim > similarityThreshold {
				matches = append(matches, SimilarQuery{
					Query:      v.Text,
					Intent:     name,
					Similarity: math.Round(sim*100) / 100,
					Count:      v.Count,
				})
			}
		}
	}
	s.mu.Unlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		if matches[i].Count != matches[j].Count {
			return matches[i].Count > matches[j].Count
		}
		return matches[i].Query < matches[j].Query
	})
	if len(matches) > maxSimilarResults {
		matches = matches[:maxSimilarResults]
	}
	if matches == nil {
		return []SimilarQuery{}
	}
	return matches
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(text) {
		set[w] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
