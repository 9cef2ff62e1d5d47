package llm

import (
	"context"
	"errors"
	"testing"
)

func TestMockClient_FixedResponse(t *testing.T) {
	mock := NewMockClient("Once upon a time, a fox shared its meal.")

	out, err := mock.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Once upon a time, a fox shared its meal." {
		t.Errorf("unexpected response: %s", out)
	}
	if mock.Calls() != 1 {
		t.Errorf("expected 1 call, got %d", mock.Calls())
	}

	system, user := mock.LastPrompts()
	if system != "system" || user != "user" {
		t.Errorf("prompts not recorded: system=%q user=%q", system, user)
	}
}

func TestMockClient_DeltaAccumulation(t *testing.T) {
	// Mirrors the streaming contract: incremental content deltas are
	// concatenated and empty deltas are skipped.
	mock := &MockClient{Deltas: []string{"Once", " upon", "", " a time"}}

	out, err := mock.Complete(context.Background(), "sys", "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Once upon a time" {
		t.Errorf("expected %q, got %q", "Once upon a time", out)
	}
}

func TestMockClient_Error(t *testing.T) {
	boom := errors.New("endpoint down")
	mock := NewMockClientWithError(boom)

	_, err := mock.Complete(context.Background(), "sys", "prompt")
	if !errors.Is(err, boom) {
		t.Fatalf("expected scripted error, got %v", err)
	}
}

func TestMockClient_CancelledContext(t *testing.T) {
	mock := NewMockClient("ignored")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := mock.Complete(ctx, "sys", "prompt"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestNewOpenAIClient_Validation(t *testing.T) {
	if _, err := NewOpenAIClient(Config{Model: "tgi"}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for missing API key, got %v", err)
	}
	if _, err := NewOpenAIClient(Config{APIKey: "k"}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for missing model, got %v", err)
	}
	if _, err := NewOpenAIClient(Config{APIKey: "k", Model: "tgi"}); err != nil {
		t.Errorf("unexpected error for valid config: %v", err)
	}
}

func TestOpenAIClient_EmptyPrompt(t *testing.T) {
	client, err := NewOpenAIClient(GenerationConfig("https://example.test/v1/", "k"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := client.Complete(context.Background(), "sys", ""); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for empty prompt, got %v", err)
	}
}

func TestGenerationConfig(t *testing.T) {
	cfg := GenerationConfig("https://example.test/v1/", "token")
	if cfg.Model != "tgi" {
		t.Errorf("expected model tgi, got %s", cfg.Model)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", cfg.Temperature)
	}
	if cfg.MaxTokens != 1000 {
		t.Errorf("expected max tokens 1000, got %d", cfg.MaxTokens)
	}
	if !cfg.Stream {
		t.Error("generation config must stream")
	}
}

func TestEvaluationConfig(t *testing.T) {
	cfg := EvaluationConfig("gpt-4o", "token", 10)
	if cfg.Temperature != 0 {
		t.Errorf("judge temperature must be 0, got %v", cfg.Temperature)
	}
	if cfg.Stream {
		t.Error("evaluation config must not stream")
	}
	if cfg.MaxTokens != 10 {
		t.Errorf("expected max tokens 10, got %d", cfg.MaxTokens)
	}
}
