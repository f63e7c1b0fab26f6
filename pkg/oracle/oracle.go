// Package oracle provides the classification-oracle port and its
// DeepSeek-backed implementation over the OpenAI-compatible chat API.
package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL is the DeepSeek OpenAI-compatible endpoint.
	DefaultBaseURL = "https://api.deepseek.com/v1"

	// DefaultModel is the chat model consulted for grouping analysis.
	DefaultModel = "deepseek-chat"

	// DefaultTimeout bounds the single oracle call per run.
	DefaultTimeout = 120 * time.Second

	// temperature is kept low so rule extraction stays near-deterministic.
	temperature = 0.2
)

// Oracle answers one classification prompt with free-form text expected to
// contain an embedded JSON object.
type Oracle interface {
	Classify(ctx context.Context, systemRole, prompt string) (string, error)
}

// Config holds the connection settings for the oracle service.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client is the DeepSeek-backed Oracle implementation. One invocation is
// one chat-completion call; retry policy is left to the caller, which
// treats any failure as a recoverable "no rules" outcome.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

// NewClient creates an oracle client. The API key is required; base URL,
// model, and timeout fall back to the DeepSeek defaults.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("oracle API key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return &Client{
		api:     openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// Classify sends the prompt and returns the raw response text.
func (c *Client) Classify(ctx context.Context, systemRole, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemRole},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("oracle request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("oracle returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
