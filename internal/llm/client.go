// Package llm composes the TaxAJ prompt and calls the OpenRouter chat-completion API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/hyperjump/fintax/internal/config"
	"github.com/hyperjump/fintax/internal/models"
)

// Completer returns the model's reply to a single user prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client calls an OpenAI-compatible chat-completion endpoint.
type Client struct {
	api    *openai.Client
	model  string
	hasKey bool
}

// NewClient creates a client from cfg. A missing API key is reported by Complete.
func NewClient(cfg config.LLMConfig) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	apiCfg.HTTPClient = applyTransport(
		&http.Client{Timeout: cfg.Timeout()},
		withProvider(cfg.Provider),
		withStatusCheck(),
		withRequestLogging(),
	)
	return &Client{
		api:    openai.NewClientWithConfig(apiCfg),
		model:  cfg.Model,
		hasKey: cfg.APIKey != "",
	}
}

// Complete sends prompt as one user message and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.hasKey {
		return "", models.ErrMissingAPIKey
	}
	ctxzap.Info(ctx, "requesting chat completion", zap.String("model", c.model), zap.Int("prompt_chars", len(prompt)))

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			return "", upstream
		}
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("OpenRouter returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
