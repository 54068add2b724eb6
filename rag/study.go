package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"notetutor/model"
	"notetutor/types"
)

const (
	// MCQCount and SAQCount are the fixed shape of a study set.
	MCQCount = 5
	SAQCount = 3

	// MaxStudyChunks caps how much note material a study set draws from.
	MaxStudyChunks = 20

	// EmptyStudyMessage is returned when a folder has no notes. No provider
	// call is made in that case.
	EmptyStudyMessage = "This folder has no notes yet, so there is nothing to build an exam from. Add some notes and try again."
)

// ErrMalformedOutput marks provider output that failed schema validation.
// Callers turn it into a fallback reply, not a crash.
var ErrMalformedOutput = errors.New("malformed generative output")

// StudySetGenerator builds a practice exam from a folder's notes. Two
// implementations exist: a generative one and a templated offline fallback.
type StudySetGenerator interface {
	Generate(ctx context.Context, subject string, notes []types.Note) (*types.StudySet, error)
}

// NewStudySetGenerator picks the generative mode when a provider is wired
// and the templated fallback otherwise.
func NewStudySetGenerator(provider model.TextProvider, chunkSize int) StudySetGenerator {
	if provider == nil {
		return &TemplatedStudyGenerator{ChunkSize: chunkSize}
	}
	return &GenerativeStudyGenerator{Provider: provider, ChunkSize: chunkSize}
}

func emptyStudySet(subject string) *types.StudySet {
	return &types.StudySet{
		Subject:              subject,
		MCQs:                 []types.MCQ{},
		ShortAnswerQuestions: []types.SAQ{},
		References:           []string{},
		Message:              EmptyStudyMessage,
	}
}

func citationID(c types.Chunk) string {
	return fmt.Sprintf("%s, Chunk %d", c.NoteTitle, c.Index)
}

func snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}

func buildReferences(notes []types.Note) []string {
	seen := make(map[string]struct{}, len(notes))
	refs := make([]string, 0, len(notes))
	for _, n := range notes {
		title := n.Title
		if title == "" {
			title = "Untitled note"
		}
		if _, ok := seen[title]; ok {
			continue
		}
		seen[title] = struct{}{}
		refs = append(refs, fmt.Sprintf("%s. (n.d.). Personal study notes.", title))
	}
	return refs
}

// GenerativeStudyGenerator asks the text provider for the full exam in one
// constrained call.
type GenerativeStudyGenerator struct {
	Provider  model.TextProvider
	ChunkSize int
}

func (g *GenerativeStudyGenerator) Generate(ctx context.Context, subject string, notes []types.Note) (*types.StudySet, error) {
	if len(notes) == 0 {
		return emptyStudySet(subject), nil
	}

	chunks := BuildChunks(notes, g.ChunkSize)
	if len(chunks) > MaxStudyChunks {
		log.Printf("[STUDY] capping context: %d -> %d chunks", len(chunks), MaxStudyChunks)
		chunks = chunks[:MaxStudyChunks]
	}
	scored := make([]types.ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		scored = append(scored, types.ScoredChunk{Chunk: c})
	}

	instruction := buildStudyInstruction(subject, scored)
	LogPromptSize("STUDY", instruction)

	raw, err := g.Provider.Complete(ctx, instruction, []model.Message{
		{Role: types.RoleUser, Content: fmt.Sprintf("Generate the practice exam for %s now.", subject)},
	})
	if err != nil {
		return nil, fmt.Errorf("study generation call: %w", err)
	}

	set, err := parseStudySet(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	set.Subject = subject
	if len(set.References) == 0 {
		set.References = buildReferences(notes)
	}
	return set, nil
}

func buildStudyInstruction(subject string, chunks []types.ScoredChunk) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are building a practice exam for the subject '%s' using ONLY the notes context below.\n\n", subject)

	sb.WriteString("IMPORTANT RULES (MANDATORY):\n")
	fmt.Fprintf(&sb, "- Produce exactly %d multiple-choice questions and exactly %d short-answer questions.\n", MCQCount, SAQCount)
	sb.WriteString("- Every question must carry at least one citation whose id names a note title and chunk from the context.\n")
	sb.WriteString("- Include an APA-style references entry for every note used.\n")
	sb.WriteString("- Output MUST be a single valid JSON object, no markdown, no text outside JSON.\n\n")

	sb.WriteString("JSON STRUCTURE (FIXED):\n")
	sb.WriteString(`{
  "mcqs": [
    {
      "question": "",
      "options": {"A": "", "B": "", "C": "", "D": ""},
      "correct_option": "A",
      "explanation": "",
      "citations": [{"id": "", "evidence_snippet": ""}]
    }
  ],
  "short_answer_questions": [
    {
      "question": "",
      "model_answer": "",
      "citations": [{"id": "", "evidence_snippet": ""}]
    }
  ],
  "references": [""]
}`)
	sb.WriteString("\n\nNotes context:\n")
	sb.WriteString(FormatChunks(chunks))

	return sb.String()
}

func parseStudySet(raw string) (*types.StudySet, error) {
	jsonStr, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}
	var set types.StudySet
	if err := json.Unmarshal([]byte(jsonStr), &set); err != nil {
		return nil, fmt.Errorf("decode study set: %w", err)
	}
	if len(set.MCQs) != MCQCount || len(set.ShortAnswerQuestions) != SAQCount {
		return nil, fmt.Errorf("study set has %d mcqs and %d saqs, want %d and %d",
			len(set.MCQs), len(set.ShortAnswerQuestions), MCQCount, SAQCount)
	}
	for _, q := range set.MCQs {
		if len(q.Citations) == 0 {
			return nil, fmt.Errorf("mcq %q has no citations", snippet(q.Question, 60))
		}
	}
	for _, q := range set.ShortAnswerQuestions {
		if len(q.Citations) == 0 {
			return nil, fmt.Errorf("saq %q has no citations", snippet(q.Question, 60))
		}
	}
	return &set, nil
}

// TemplatedStudyGenerator is the degraded offline mode: purely mechanical
// questions synthesized from the first chunks of the folder. Option A is
// correct in every MCQ because the options are built that way.
type TemplatedStudyGenerator struct {
	ChunkSize int
}

func (g *TemplatedStudyGenerator) Generate(_ context.Context, subject string, notes []types.Note) (*types.StudySet, error) {
	if len(notes) == 0 {
		return emptyStudySet(subject), nil
	}

	chunks := BuildChunks(notes, g.ChunkSize)
	if len(chunks) > MaxStudyChunks {
		chunks = chunks[:MaxStudyChunks]
	}

	set := &types.StudySet{
		Subject:              subject,
		MCQs:                 []types.MCQ{},
		ShortAnswerQuestions: []types.SAQ{},
		References:           buildReferences(notes),
	}

	for i := 0; i < MCQCount && i < len(chunks); i++ {
		c := chunks[i]
		set.MCQs = append(set.MCQs, types.MCQ{
			Question: fmt.Sprintf("Which statement appears in your notes on %s?", c.NoteTitle),
			Options: map[string]string{
				"A": snippet(c.Text, 160),
				"B": "This topic is only mentioned in a different folder.",
				"C": "Your notes state the opposite of all the options shown.",
				"D": "None of these statements appear in your notes.",
			},
			CorrectOption: "A",
			Explanation:   fmt.Sprintf("Option A is taken directly from %s.", citationID(c)),
			Citations: []types.Citation{
				{ID: citationID(c), EvidenceSnippet: snippet(c.Text, 160)},
			},
		})
	}

	for i := MCQCount; i < MCQCount+SAQCount && i < len(chunks); i++ {
		c := chunks[i]
		set.ShortAnswerQuestions = append(set.ShortAnswerQuestions, types.SAQ{
			Question:    fmt.Sprintf("In your own words, explain this passage from %s: %q", c.NoteTitle, snippet(c.Text, 120)),
			ModelAnswer: c.Text,
			Citations: []types.Citation{
				{ID: citationID(c), EvidenceSnippet: snippet(c.Text, 160)},
			},
		})
	}

	return set, nil
}
