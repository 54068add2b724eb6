package rag

import (
	"fmt"
	"strings"

	"notetutor/types"
)

// RefusalString is the exact reply required when the notes do not support
// an answer. Downstream code detects it by substring, so the wording must
// not drift.
func RefusalString(subject string) string {
	return "Not found in your notes for " + subject
}

// BuildChatInstruction assembles the grounding contract for one chat turn:
// subject scoping, the evidence payload, a short textual history window, the
// exact refusal string and the required output schema.
func BuildChatInstruction(subject string, chunks []types.ScoredChunk, history []types.ConversationTurn) string {
	var sb strings.Builder

	sb.WriteString("You are a study tutor answering questions about the subject '")
	sb.WriteString(subject)
	sb.WriteString("' using ONLY the notes context below. Do not use outside knowledge.\n\n")

	sb.WriteString("IMPORTANT RULES (MANDATORY):\n")
	sb.WriteString("- Answer only from the provided context.\n")
	fmt.Fprintf(&sb, "- If the context does not contain enough support, reply with exactly '%s' and nothing else.\n", RefusalString(subject))
	sb.WriteString("- Every answer must cite the snippets it relies on.\n")
	sb.WriteString("- Output MUST be a single valid JSON object, no markdown, no text outside JSON.\n\n")

	sb.WriteString("JSON STRUCTURE (FIXED):\n")
	sb.WriteString(`{
  "spoken_answer": "",
  "citations": [
    {"id": "", "evidence_snippet": ""}
  ],
  "confidence": "Low|Medium|High"
}`)
	sb.WriteString("\n\n")

	if h := FormatHistory(history); h != "" {
		sb.WriteString("Recent conversation:\n")
		sb.WriteString(h)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Notes context:\n")
	if ctx := FormatChunks(chunks); ctx != "" {
		sb.WriteString(ctx)
	} else {
		sb.WriteString("(empty)")
	}

	return sb.String()
}
