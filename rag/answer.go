package rag

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"notetutor/types"
)

// FallbackReply is the user-visible message when the provider's output
// cannot be parsed. It is a normal reply, never an error response.
const FallbackReply = "Failed to generate response correctly."

// extractJSON pulls the outermost JSON object out of a raw model reply.
// Models wrap JSON in prose or code fences often enough that a brace scan
// is the reliable move.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return s, errors.New("no valid json found")
	}
	return s[start : end+1], nil
}

// ParseGroundedAnswer decodes the model's structured chat output.
func ParseGroundedAnswer(raw string) (*types.GroundedAnswer, error) {
	jsonStr, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}
	var ans types.GroundedAnswer
	if err := json.Unmarshal([]byte(jsonStr), &ans); err != nil {
		return nil, fmt.Errorf("decode grounded answer: %w", err)
	}
	if ans.SpokenAnswer == "" {
		return nil, errors.New("grounded answer missing spoken_answer")
	}
	return &ans, nil
}

// RenderReply turns a grounded answer into the final chat reply. A refusal
// is returned verbatim with no evidence appended; anything else gets a
// supporting-evidence block listing each citation.
func RenderReply(ans *types.GroundedAnswer, subject string) string {
	if strings.Contains(ans.SpokenAnswer, RefusalString(subject)) {
		return ans.SpokenAnswer
	}

	var sb strings.Builder
	sb.WriteString(ans.SpokenAnswer)
	if len(ans.Citations) > 0 {
		sb.WriteString("\n\nSupporting Evidence:\n")
		for _, c := range ans.Citations {
			fmt.Fprintf(&sb, "- [%s] %q\n", c.ID, c.EvidenceSnippet)
		}
	}
	return strings.TrimRight(sb.String(), " \t\n")
}
