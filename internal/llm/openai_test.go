package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIClient_StreamingAccumulation(t *testing.T) {
	// The server emits content deltas interleaved with a choice-less
	// chunk and an empty-content delta; only real deltas may land in the
	// accumulated result.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{
			`{"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"Once"}}]}`,
			`{"id":"c1","object":"chat.completion.chunk","choices":[]}`,
			`{"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":" upon"}}]}`,
			`{"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":""}}]}`,
			`{"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":" a time"}}]}`,
		}
		for _, c := range chunks {
			fmt.Fprintf(w, "data: %s\n\n", c)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client, err := NewOpenAIClient(GenerationConfig(server.URL+"/v1/", "test-token"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := client.Complete(context.Background(), "system", "Write a fable.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Once upon a time" {
		t.Errorf("expected %q, got %q", "Once upon a time", out)
	}
}

func TestOpenAIClient_Blocking(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"8"}}]}`)
	}))
	defer server.Close()

	cfg := EvaluationConfig("gpt-4o", "test-token", 10)
	cfg.BaseURL = server.URL + "/v1/"
	client, err := NewOpenAIClient(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := client.Complete(context.Background(), "You are a fable critic.", "Grade this fable.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "8" {
		t.Errorf("expected grade 8, got %q", out)
	}
}

func TestOpenAIClient_APIError(t *testing.T) {
	// 400 is not retried by the client, so the failure surfaces directly.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"bad request","type":"invalid_request_error"}}`)
	}))
	defer server.Close()

	client, err := NewOpenAIClient(GenerationConfig(server.URL+"/v1/", "test-token"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := client.Complete(context.Background(), "system", "prompt"); !errors.Is(err, ErrLLMFailed) {
		t.Fatalf("expected ErrLLMFailed, got %v", err)
	}
}
