package categorization

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/richxcame/expense-tracker/pkg/config"
	openai "github.com/sashabaranov/go-openai"
)

// ErrNoChoices is returned when the completion carries no message
var ErrNoChoices = errors.New("model returned no choices")

// ChatClient talks to an OpenAI-compatible chat completions API
type ChatClient struct {
	client *openai.Client
	model  string
}

// NewChatClient creates a client from the LLM config
func NewChatClient(cfg *config.LLMConfig) *ChatClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &ChatClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

// Complete sends prompt as the user message and returns the first choice.
// The model is asked for a JSON object.
func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		// a literal 0 is dropped by omitempty
		Temperature: math.SmallestNonzeroFloat32,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}

// StatusCode returns the HTTP status carried by a completion error, or 0
func StatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
