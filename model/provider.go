package model

import (
	"context"
	"errors"
)

// ErrNotConfigured marks a provider whose credentials or endpoint are absent.
// Callers treat it as a degraded mode, not a crash.
var ErrNotConfigured = errors.New("provider is not configured")

// Message is one conversation turn handed to a text provider.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// TextProvider is the narrow boundary to a generative text model. The core
// never talks to a provider any other way, so tests can substitute a fake.
type TextProvider interface {
	Complete(ctx context.Context, system string, messages []Message) (string, error)
}
