package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ChatAPI is the subset of the go-openai client used by Client.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	ListModels(ctx context.Context) (openai.ModelsList, error)
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api       ChatAPI
	model     string
	maxTokens int
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// New creates a new LLM client.
func New(opts Options) *Client {
	config := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}
	if opts.Timeout > 0 {
		config.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	return NewWithAPI(openai.NewClientWithConfig(config), opts.Model, opts.MaxTokens)
}

// NewWithAPI creates a Client around an existing API implementation.
func NewWithAPI(api ChatAPI, model string, maxTokens int) *Client {
	if maxTokens <= 0 {
		maxTokens = 500
	}
	return &Client{api: api, model: model, maxTokens: maxTokens}
}

// Complete sends prompt as a single user message and returns the text of the first choice.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM response", "raw", raw)
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("LLM returned empty content")
	}
	return raw, nil
}

// Ping checks that the endpoint is reachable and serves the configured model.
func (c *Client) Ping(ctx context.Context) error {
	models, err := c.api.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	for _, m := range models.Models {
		if m.ID == c.model {
			return nil
		}
	}
	slog.Warn("configured model not listed by endpoint", "model", c.model, "available", len(models.Models))
	return nil
}
