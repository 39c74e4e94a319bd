package llm

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured   = errors.New("AI service not configured")
	ErrEmptyResponse   = errors.New("empty AI response")
	ErrInvalidResponse = errors.New("invalid AI response")
)

// Request is one system+user turn sent to a chat model.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
	// JSON asks the provider for a JSON-only reply where supported.
	JSON bool
}

// Completer is the provider-neutral surface the analyzer depends on.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Unconfigured is used when no API key is present; every call fails with
// ErrNotConfigured so handlers can answer 503.
type Unconfigured struct{}

func (Unconfigured) Complete(context.Context, Request) (string, error) {
	return "", ErrNotConfigured
}
