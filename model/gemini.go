package model

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// genaiRole maps a conversation role onto the typed genai role. Anything
// that is not the model's own turn is treated as user input.
func genaiRole(role string) genai.Role {
	if role == "assistant" || role == "model" {
		return genai.RoleModel
	}
	return genai.RoleUser
}

// GeminiProvider implements TextProvider on Google's Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider builds a provider from the GEMINI_API_KEY environment
// credential. A missing key returns ErrNotConfigured so the caller can run
// in degraded mode instead of crashing.
func NewGeminiProvider(ctx context.Context, modelName string) (*GeminiProvider, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: modelName}, nil
}

// Complete sends the system instruction and conversation turns to Gemini
// and returns the concatenated text of the first candidate.
func (p *GeminiProvider) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	config := &genai.GenerateContentConfig{}
	if system != "" {
		if parts := genai.Text(system); len(parts) > 0 {
			config.SystemInstruction = parts[0]
		}
	}

	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		contents = append(contents, genai.NewContentFromText(m.Content, genaiRole(m.Role)))
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}
