package utils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON returns the outermost JSON object embedded in a model reply,
// tolerating prose or code fences around it.
func ExtractJSON(raw string) (json.RawMessage, error) {
	clean := strings.TrimSpace(raw)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}
	clean = clean[start : end+1]

	if !json.Valid([]byte(clean)) {
		return nil, fmt.Errorf("failed to parse model output: invalid JSON")
	}
	return json.RawMessage(clean), nil
}
