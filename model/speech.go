package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SpeechClient is a thin pass-through to a third-party speech inference
// endpoint. No retrieval or grounding logic lives here.
type SpeechClient struct {
	transcribeURL string
	synthesizeURL string
	httpClient    *http.Client
}

// NewSpeechClient keeps empty URLs as-is; the per-call methods report
// ErrNotConfigured for whichever direction is missing.
func NewSpeechClient(transcribeURL, synthesizeURL string) *SpeechClient {
	return &SpeechClient{
		transcribeURL: transcribeURL,
		synthesizeURL: synthesizeURL,
		httpClient:    &http.Client{Timeout: 60 * time.Second},
	}
}

type transcriptResponse struct {
	Text string `json:"text"`
}

// Transcribe posts raw audio and returns the transcript text.
func (s *SpeechClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if s.transcribeURL == "" {
		return "", ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.transcribeURL, bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("create transcribe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call transcribe endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("transcribe endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var tr transcriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode transcript: %w", err)
	}
	return tr.Text, nil
}

type synthesizeRequest struct {
	Text string `json:"text"`
}

// Synthesize posts text and returns the rendered audio bytes.
func (s *SpeechClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if s.synthesizeURL == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(synthesizeRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal synthesize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.synthesizeURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create synthesize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call synthesize endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("synthesize endpoint returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return io.ReadAll(resp.Body)
}
