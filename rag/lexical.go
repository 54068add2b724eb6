package rag

import "strings"

// Tokenize lowercases text, replaces every character outside [a-z0-9] and
// whitespace with a space, and splits on whitespace runs.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			return r
		default:
			return ' '
		}
	}, lowered)
	return strings.Fields(mapped)
}

// ScoreChunk counts how many of the chunk's tokens appear in the query's
// token set. Repetition in the chunk counts every time: "cat cat cat"
// scores 3 against the query "cat". That bias is inherited behavior and
// callers depend on it; swap this function out wholesale rather than
// tweaking it.
func ScoreChunk(query, chunkText string) int {
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return 0
	}
	querySet := make(map[string]struct{}, len(queryTokens))
	for _, t := range queryTokens {
		querySet[t] = struct{}{}
	}

	score := 0
	for _, t := range Tokenize(chunkText) {
		if _, ok := querySet[t]; ok {
			score++
		}
	}
	return score
}

// Confidence labels derived from the top retrieval score.
const (
	ConfidenceLow    = "Low"
	ConfidenceMedium = "Medium"
	ConfidenceHigh   = "High"
)

// ConfidencePolicy thresholds the top-ranked chunk's score into a label.
type ConfidencePolicy struct {
	High   int
	Medium int
}

// StrictPolicy is the system-of-record policy. LoosePolicy matches the
// softer thresholds some deployments ran with; both are kept so the choice
// stays configuration rather than code.
var (
	StrictPolicy = ConfidencePolicy{High: 5, Medium: 2}
	LoosePolicy  = ConfidencePolicy{High: 20, Medium: 8}
)

// Label maps a top score to Low, Medium or High.
func (p ConfidencePolicy) Label(topScore int) string {
	switch {
	case topScore >= p.High:
		return ConfidenceHigh
	case topScore >= p.Medium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
