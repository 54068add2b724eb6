package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"notetutor/model"
	"notetutor/types"
)

// Grader scores a free-text answer against a model answer with one
// constrained generative call.
type Grader struct {
	Provider model.TextProvider
}

func NewGrader(provider model.TextProvider) *Grader {
	return &Grader{Provider: provider}
}

const gradeInstruction = `You are grading a student's short answer against a model answer.
Compare conceptual coverage, not exact wording. Partial credit is expected.

IMPORTANT RULES (MANDATORY):
- score is an integer from 0 to 10.
- feedback is one or two sentences telling the student what was right and what was missed.
- Output MUST be a single valid JSON object, no markdown, no text outside JSON.

JSON STRUCTURE (FIXED):
{"score": 0, "feedback": ""}`

// Grade returns a 0-10 score and feedback. Malformed provider output
// degrades to the fallback feedback instead of an error; only transport
// failures propagate.
func (g *Grader) Grade(ctx context.Context, question, modelAnswer, userAnswer string) (*types.GradeResult, error) {
	if g.Provider == nil {
		return nil, model.ErrNotConfigured
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Question:\n%s\n\n", question)
	fmt.Fprintf(&sb, "Model answer:\n%s\n\n", modelAnswer)
	fmt.Fprintf(&sb, "Student answer:\n%s\n", userAnswer)

	raw, err := g.Provider.Complete(ctx, gradeInstruction, []model.Message{
		{Role: types.RoleUser, Content: sb.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("grading call: %w", err)
	}

	result, err := parseGradeResult(raw)
	if err != nil {
		return &types.GradeResult{Score: 0, Feedback: FallbackReply}, nil
	}
	return result, nil
}

func parseGradeResult(raw string) (*types.GradeResult, error) {
	jsonStr, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}
	var result types.GradeResult
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("decode grade result: %w", err)
	}
	if result.Score < 0 {
		result.Score = 0
	}
	if result.Score > 10 {
		result.Score = 10
	}
	return &result, nil
}
