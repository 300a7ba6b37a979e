// Package brain orchestrates classification, sentiment, forecasting and deflection
// into the responses served to customers and agents.
package brain

import (
	"math/rand"
	"sync"
	"time"

	"github.com/easeaico/gridcare/internal/advisor"
	"github.com/easeaico/gridcare/internal/emotion"
	"github.com/easeaico/gridcare/internal/forecast"
	"github.com/easeaico/gridcare/internal/generative"
	"github.com/easeaico/gridcare/internal/intent"
	"github.com/easeaico/gridcare/internal/prompt"
	"github.com/easeaico/gridcare/internal/types"
)

// Response methods.
const (
	MethodGenerative    = "generative"
	MethodGenerativeRaw = "generative_raw"
	MethodTemplate      = "template"
	MethodLocal         = "local"
	MethodFallback      = "fallback"
)

// Classifier assigns an intent to a request.
type Classifier interface {
	Classify(requestType, details string) types.ClassificationResult
}

// SentimentAnalyzer reads sentiment, emotion and urgency from text.
type SentimentAnalyzer interface {
	Analyze(text, lang string) types.SentimentResult
}

// BillPredictor estimates the next bill.
type BillPredictor interface {
	PredictNextBill(customer *types.CustomerProfile) types.BillPrediction
}

// DeflectionAdvisor decides whether a request can be deflected.
type DeflectionAdvisor interface {
	Analyze(customer *types.CustomerProfile, requestType, requestDetails string) types.GuidanceResult
}

// Picker is the random source for template personalization. *rand.Rand satisfies it.
type Picker interface {
	Intn(n int) int
}

// Deps are the collaborators of a Brain. Nil fields get the default implementations.
type Deps struct {
	Classifier Classifier
	Sentiment  SentimentAnalyzer
	Predictor  BillPredictor
	Advisor    DeflectionAdvisor
	Generator  generative.Advisor
	Prompts    *prompt.Builder
	Picker     Picker
}

// Brain is safe for concurrent use.
type Brain struct {
	classifier Classifier
	sentiment  SentimentAnalyzer
	predictor  BillPredictor
	advisor    DeflectionAdvisor
	generator  generative.Advisor
	prompts    *prompt.Builder

	pickMu sync.Mutex
	picker Picker
}

// New returns a Brain.
func New(deps Deps) *Brain {
	b := &Brain{
		classifier: deps.Classifier,
		sentiment:  deps.Sentiment,
		predictor:  deps.Predictor,
		advisor:    deps.Advisor,
		generator:  deps.Generator,
		prompts:    deps.Prompts,
		picker:     deps.Picker,
	}
	if b.classifier == nil {
		b.classifier = intent.NewClassifier()
	}
	if b.sentiment == nil {
		b.sentiment = emotion.NewAnalyzer()
	}
	if b.predictor == nil {
		b.predictor = forecast.NewPredictor()
	}
	if b.advisor == nil {
		b.advisor = advisor.NewAdvisor(nil)
	}
	if b.generator == nil {
		b.generator = generative.Unavailable{}
	}
	if b.prompts == nil {
		b.prompts = prompt.NewBuilder()
	}
	if b.picker == nil {
		b.picker = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return b
}

func (b *Brain) pick(n int) int {
	if n <= 1 {
		return 0
	}
	b.pickMu.Lock()
	defer b.pickMu.Unlock()
	i := b.picker.Intn(n)
	if i < 0 || i >= n {
		return 0
	}
	return i
}
