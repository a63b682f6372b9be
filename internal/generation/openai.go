package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ErrNoCompletionInResponse is returned when the API response contains no choices.
var ErrNoCompletionInResponse = errors.New("generation: no completion in response")

const defaultModel = "gpt-4o-mini"

const systemPrompt = "You are an experienced startup investor evaluating a pitch. " +
	"Respond only in the requested format."

// OpenAIClient calls the OpenAI chat completions API via the official SDK.
type OpenAIClient struct {
	sdk   openaisdk.Client
	model string
}

// Ensure OpenAIClient implements Client interface
var _ Client = (*OpenAIClient)(nil)

// OpenAIOption configures the OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithModel sets the chat model name (e.g. gpt-4o-mini). Empty uses default.
func WithModel(model string) OpenAIOption {
	return func(c *OpenAIClient) {
		if model != "" {
			c.model = model
		}
	}
}

// NewOpenAIClient creates an OpenAI chat completions client using the official SDK.
func NewOpenAIClient(apiKey string, opts ...OpenAIOption) *OpenAIClient {
	client := &OpenAIClient{
		sdk:   openaisdk.NewClient(option.WithAPIKey(apiKey)),
		model: defaultModel,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Generate returns the raw completion text for the given prompt.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	resp, err := c.sdk.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(systemPrompt),
			openaisdk.UserMessage(prompt),
		},
		Model: openaisdk.ChatModel(c.model),
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai completion: %w", ErrGeneration, err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoCompletionInResponse
	}

	return resp.Choices[0].Message.Content, nil
}
