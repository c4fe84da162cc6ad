package llm

import (
	"context"
	"errors"
)

// Completion failure classes. Callers classify with errors.Is and must treat
// every class as non-fatal to the process.
var (
	ErrAuthentication = errors.New("completion: authentication failed")
	ErrRateLimited    = errors.New("completion: rate limited")
	ErrTimeout        = errors.New("completion: request timed out")
	ErrMalformed      = errors.New("completion: malformed response")
)

// CompletionClient produces one assistant message for an ordered message
// history, synchronously.
type CompletionClient interface {
	Complete(ctx context.Context, messages []Message, opts ...CompletionOption) (string, error)

	GetModel() string
}

type CompletionSettings struct {
	model       string  // model or deployment name
	temperature float64 // randomness (0.0 to 1.0)
	maxTokens   int     // maximum tokens to generate
	system      string  // system prompt
}

type CompletionOption func(*CompletionSettings)

// Common options for all completion providers
func WithTemperature(temp float64) CompletionOption {
	return func(s *CompletionSettings) { s.temperature = temp }
}

func WithMaxTokens(tokens int) CompletionOption {
	return func(s *CompletionSettings) { s.maxTokens = tokens }
}

func WithSystemPrompt(prompt string) CompletionOption {
	return func(s *CompletionSettings) { s.system = prompt }
}

func WithModel(model string) CompletionOption {
	return func(s *CompletionSettings) { s.model = model }
}

type Message struct {
	Role    string `json:"role"`    // "user", "assistant", "system"
	Content string `json:"content"` // the message content
}
