package llm

import (
	"context"
	"errors"
)

// Operation names the kind of generation a request performs. Providers use it for
// logging; the mock provider uses it to pick a canned answer.
type Operation string

const (
	OpCritique  Operation = "critique"
	OpContinue  Operation = "continue"
	OpSummarize Operation = "summarize"
)

// Request is a single prompt sent to a provider.
type Request struct {
	Operation Operation
	System    string
	Prompt    string
	// Temperature <= 0 leaves the provider default.
	Temperature float64
	MaxTokens   int
}

// Response is the text returned by a provider plus accounting details.
type Response struct {
	Text             string
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Client abstracts LLM providers.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

var (
	// ErrUnknownProvider is returned when a provider selector is not registered.
	ErrUnknownProvider = errors.New("unknown llm provider")
	// ErrEmptyResponse is returned when a provider answers with no text.
	ErrEmptyResponse = errors.New("llm returned empty response")
	// ErrNotConfigured is returned when a provider is missing its credentials.
	ErrNotConfigured = errors.New("llm provider not configured")
)
