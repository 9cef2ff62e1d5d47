package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIClient implements Client against any OpenAI-compatible API,
// including Hugging Face TGI endpoints via a base URL override.
type OpenAIClient struct {
	client openai.Client
	config Config
}

// NewOpenAIClient creates a client for the configured endpoint. The API
// key and model name are required.
func NewOpenAIClient(config Config) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w: missing API key", ErrInvalidConfig)
	}
	if config.Model == "" {
		return nil, fmt.Errorf("%w: missing model name", ErrInvalidConfig)
	}

	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		config: config,
	}, nil
}

// Complete issues one chat completion with a system and a user message.
// In streaming mode the response is accumulated from its content deltas.
func (o *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if userPrompt == "" {
		return "", fmt.Errorf("%w: prompt cannot be empty", ErrInvalidConfig)
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(o.config.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		// Sent unconditionally: the judge model relies on an explicit 0.
		Temperature: openai.Float(o.config.Temperature),
	}
	if o.config.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(o.config.MaxTokens))
	}

	if o.config.Stream {
		return o.completeStreaming(ctx, params)
	}
	return o.completeBlocking(ctx, params)
}

func (o *OpenAIClient) completeBlocking(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLLMFailed, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: no response generated", ErrLLMFailed)
	}
	return completion.Choices[0].Message.Content, nil
}

// completeStreaming concatenates the incremental content deltas, skipping
// chunks that carry none, into the final completion text.
func (o *OpenAIClient) completeStreaming(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	stream := o.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	var b strings.Builder
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			b.WriteString(delta)
		}
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrLLMFailed, err)
	}
	return b.String(), nil
}
