// Package intent maps customer requests onto a closed set of intent categories.
package intent

import (
	"fmt"
	"strings"

	"github.com/easeaico/gridcare/internal/types"
)

// unknownConfidence is reported when no keyword group matches.
const unknownConfidence = 0.50

// Classifier is a stateless keyword classifier.
type Classifier struct{}

// NewClassifier returns a Classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify concatenates the request type and details and returns the first
// matching intent in priority order billing > outage > meter > complaint > advisory.
func (c *Classifier) Classify(requestType, details string) types.ClassificationResult {
	text := strings.ToLower(strings.TrimSpace(requestType + " " + details))
	if text == "" {
		return types.ClassificationResult{
			Category:   types.IntentUnknown,
			Confidence: unknownConfidence,
			Reasoning:  "empty request",
		}
	}
	// Padding lets keywords with a trailing space match at the end of input.
	text += " "

	for _, group := range groups {
		for _, kw := range group.keywords {
			if strings.Contains(text, kw) {
				return types.ClassificationResult{
					Category:   group.category,
					Confidence: group.confidence,
					Reasoning:  fmt.Sprintf("matched %s keyword %q", group.category, strings.TrimSpace(kw)),
				}
			}
		}
	}

	return types.ClassificationResult{
		Category:   types.IntentUnknown,
		Confidence: unknownConfidence,
		Reasoning:  "no keyword group matched",
	}
}
