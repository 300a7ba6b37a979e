// Package utils holds helpers for reading model replies.
package utils

import (
	"strings"

	"google.golang.org/genai"
)

// ReplyText concatenates the visible text parts of content. Thought parts
// emitted by reasoning models are skipped.
func ReplyText(content *genai.Content) string {
	if content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}
