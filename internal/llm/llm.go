// Package llm provides chat-completion clients for OpenAI-compatible
// endpoints. It defines a provider-agnostic Client interface with a
// streaming OpenAI implementation for hosted generation endpoints and a
// deterministic mock for testing.
package llm

import (
	"context"
	"errors"
)

var (
	ErrLLMFailed     = errors.New("LLM request failed")
	ErrInvalidConfig = errors.New("invalid LLM configuration")
)

// Client is a chat-completion backend. Implementations must be stateless
// and safe for concurrent use.
type Client interface {
	// Complete sends one system message and one user message and returns
	// the full completion text.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Config holds the request shape used for every call through a client.
type Config struct {
	// Model is the model identifier sent to the endpoint. Hosted TGI
	// endpoints expect the fixed name "tgi".
	Model string

	// BaseURL overrides the provider's default API endpoint. Empty means
	// the provider default.
	BaseURL string

	// APIKey authenticates against the endpoint.
	APIKey string

	// Temperature controls sampling randomness. It is always sent, so a
	// zero value means a deterministic request, not a provider default.
	Temperature float64

	// MaxTokens limits the response length (0 = provider default).
	MaxTokens int

	// Stream selects the streaming completion path, accumulating content
	// deltas into the returned string.
	Stream bool
}

// GenerationConfig returns the fixed request shape used for fable
// generation against a hosted endpoint: streaming, creative temperature.
func GenerationConfig(baseURL, apiKey string) Config {
	return Config{
		Model:       "tgi",
		BaseURL:     baseURL,
		APIKey:      apiKey,
		Temperature: 0.7,
		MaxTokens:   1000,
		Stream:      true,
	}
}

// EvaluationConfig returns the fixed request shape used for the judge
// model: non-streaming, temperature zero for reproducible grades.
func EvaluationConfig(model, apiKey string, maxTokens int) Config {
	return Config{
		Model:       model,
		APIKey:      apiKey,
		Temperature: 0,
		MaxTokens:   maxTokens,
	}
}
