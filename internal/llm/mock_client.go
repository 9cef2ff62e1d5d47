package llm

import (
	"context"
	"strings"
	"sync"
)

// MockClient is a deterministic Client implementation for testing. It can
// return a fixed response, replay a sequence of streamed deltas, or fail
// with a scripted error.
type MockClient struct {
	// Response is the fixed text returned by Complete.
	Response string

	// Deltas, if set, are concatenated the way the streaming path
	// accumulates content chunks; empty deltas are skipped.
	Deltas []string

	// Error, if set, is returned by Complete instead of a response.
	Error error

	// Delay, if set, is a hook invoked before responding, letting tests
	// control completion order.
	Delay func()

	mu         sync.Mutex
	calls      int
	lastSystem string
	lastUser   string
}

// NewMockClient creates a mock that always returns the given response.
func NewMockClient(response string) *MockClient {
	return &MockClient{Response: response}
}

// NewMockClientWithError creates a mock that always fails with err.
func NewMockClientWithError(err error) *MockClient {
	return &MockClient{Error: err}
}

// Complete records the call and returns the scripted result.
func (m *MockClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.lastSystem = systemPrompt
	m.lastUser = userPrompt
	delay := m.Delay
	m.mu.Unlock()

	if delay != nil {
		delay()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Error != nil {
		return "", m.Error
	}
	if len(m.Deltas) > 0 {
		var b strings.Builder
		for _, d := range m.Deltas {
			if d != "" {
				b.WriteString(d)
			}
		}
		return b.String(), nil
	}
	return m.Response, nil
}

// Calls returns how many times Complete was invoked.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastPrompts returns the most recent system and user prompts.
func (m *MockClient) LastPrompts() (system, user string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSystem, m.lastUser
}
