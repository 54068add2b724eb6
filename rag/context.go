package rag

import (
	"fmt"
	"log"
	"strings"

	"notetutor/types"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// HistoryWindow is how many recent turns travel to the provider.
	HistoryWindow = 10
	// InlineHistoryWindow is how many of those are rendered textually
	// inside the system instruction.
	InlineHistoryWindow = 3
)

// FormatChunks renders retrieved chunks into the grounding payload, one
// citation header per chunk. Truncation only ever drops whole chunks, never
// cuts inside one.
func FormatChunks(chunks []types.ScoredChunk) string {
	var sb strings.Builder
	for i, c := range chunks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(fmt.Sprintf("[Citation: %s, Chunk %d]\n%s", c.NoteTitle, c.Index, c.Text))
	}
	return sb.String()
}

// TrimHistory keeps the most recent n turns.
func TrimHistory(turns []types.ConversationTurn, n int) []types.ConversationTurn {
	if len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}

// FormatHistory renders the last InlineHistoryWindow turns as
// "role: content" lines for inlining into an instruction.
func FormatHistory(turns []types.ConversationTurn) string {
	turns = TrimHistory(turns, InlineHistoryWindow)
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, fmt.Sprintf("%s: %s", t.Role, t.Content))
	}
	return strings.Join(lines, "\n")
}

// CountTokens measures a prompt with the gpt-3.5-turbo encoding. It is
// accounting only; on encoder errors the size is reported as unknown.
func CountTokens(prompt string) int {
	enc, err := tiktoken.EncodingForModel("gpt-3.5-turbo")
	if err != nil {
		return -1
	}
	return len(enc.Encode(prompt, nil, nil))
}

// LogPromptSize records the token and character footprint of an assembled
// prompt, matching what the provider is about to receive.
func LogPromptSize(tag, prompt string) {
	if n := CountTokens(prompt); n >= 0 {
		log.Printf("[%s] prompt size: %d tokens, %d chars", tag, n, len(prompt))
	} else {
		log.Printf("[%s] prompt size: %d chars (token count unavailable)", tag, len(prompt))
	}
}
