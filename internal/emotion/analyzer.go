// Package emotion reads sentiment, emotions, and urgency from customer messages.
package emotion

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/easeaico/gridcare/internal/types"
)

// Analyzer scans bilingual keyword tables. It holds no state.
type Analyzer struct{}

// NewAnalyzer returns an Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// DefaultSentiment is the neutral read returned for empty or malformed input.
func DefaultSentiment() types.SentimentResult {
	return types.SentimentResult{
		Sentiment:      SentimentNeutral,
		Score:          0,
		Emotions:       []string{},
		PrimaryEmotion: SentimentNeutral,
		Urgency:        UrgencyMedium,
		Satisfaction:   3,
		Confidence:     0.5,
		Escalate:       false,
	}
}

// Analyze scores text against both keyword languages. lang only steers normalization.
func (a *Analyzer) Analyze(text, lang string) types.SentimentResult {
	if strings.TrimSpace(text) == "" || !utf8.ValidString(text) {
		return DefaultSentiment()
	}

	doc := newDocument(text, lang)

	positive := doc.count(positiveKeywords)
	negative := doc.count(negativeKeywords)
	score := float64(positive) - float64(negative)

	sentiment := SentimentNeutral
	switch {
	case score > 0.5:
		sentiment = SentimentPositive
	case score < -0.5:
		sentiment = SentimentNegative
	}

	emotions := make([]string, 0, len(emotionTable))
	for _, entry := range emotionTable {
		if doc.any(entry.keywords) {
			emotions = append(emotions, entry.name)
		}
	}
	primary := SentimentNeutral
	if len(emotions) > 0 {
		primary = emotions[0]
	}

	urgency := UrgencyMedium
	for _, tier := range urgencyTiers {
		if doc.any(tier.keywords) {
			urgency = tier.level
			break
		}
	}

	confidence := 0.5 + 0.15*float64(positive+negative)
	if confidence > 1.0 {
		confidence = 1.0
	}

	satisfaction := 3
	switch sentiment {
	case SentimentPositive:
		satisfaction++
		if score > 2 {
			satisfaction++
		}
	case SentimentNegative:
		satisfaction--
		if score < -2 {
			satisfaction--
		}
	}

	escalate := sentiment == SentimentNegative &&
		(urgency == UrgencyCritical || urgency == UrgencyHigh) &&
		containsString(emotions, EmotionAngry)

	return types.SentimentResult{
		Sentiment:      sentiment,
		Score:          score,
		Emotions:       emotions,
		PrimaryEmotion: primary,
		Urgency:        urgency,
		Satisfaction:   ClampSatisfaction(satisfaction),
		Confidence:     confidence,
		Escalate:       escalate,
	}
}

// document is a normalized message with its word set.
type document struct {
	text   string
	tokens map[string]struct{}
}

func newDocument(text, lang string) document {
	tag := language.Make(lang)
	lower := cases.Lower(tag).String(text)
	lower = stripArabicMarks(lower)

	tokens := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	}) {
		tokens[tok] = struct{}{}
	}
	return document{text: lower, tokens: tokens}
}

// has matches single words against whole tokens and phrases as substrings.
func (d document) has(keyword string) bool {
	if strings.ContainsRune(keyword, ' ') {
		return strings.Contains(d.text, keyword)
	}
	_, ok := d.tokens[keyword]
	return ok
}

func (d document) count(keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if d.has(kw) {
			n++
		}
	}
	return n
}

func (d document) any(keywords []string) bool {
	for _, kw := range keywords {
		if d.has(kw) {
			return true
		}
	}
	return false
}

// stripArabicMarks drops tatweel and short-vowel diacritics.
func stripArabicMarks(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\u0640' || (r >= '\u064B' && r <= '\u0652') {
			return -1
		}
		return r
	}, s)
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
