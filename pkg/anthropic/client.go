// Package anthropic wraps the official SDK behind the narrow completion
// surface the pipeline needs: one system prompt, one user message, text out.
package anthropic

import (
	"context"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Completer is the collaborator contract: a fixed system instruction plus a
// user payload, answered with plain text. Stages depend on this interface
// so tests can substitute deterministic fixtures.
type Completer interface {
	Complete(ctx context.Context, model, system, user string) (string, error)
}

// Config holds client settings.
type Config struct {
	Key       string
	MaxTokens int64
	// Timeout bounds each request. The SDK's own default is generous
	// enough to stall a whole batch, so a per-call deadline is applied
	// unconditionally.
	Timeout time.Duration
}

// Client implements Completer against the Anthropic messages API.
type Client struct {
	client    sdk.Client
	maxTokens int64
	timeout   time.Duration
}

var _ Completer = (*Client)(nil)

// New creates a client. The API key is required.
func New(cfg Config) (*Client, error) {
	if cfg.Key == "" {
		return nil, eris.New("anthropic: api key is required")
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		client:    sdk.NewClient(option.WithAPIKey(cfg.Key)),
		maxTokens: maxTokens,
		timeout:   timeout,
	}, nil
}

// Complete sends one message exchange and returns the concatenated text
// content. Temperature is pinned to 0 so normalization stays as close to
// deterministic as the collaborator allows.
func (c *Client) Complete(ctx context.Context, model, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(model),
		MaxTokens:   c.maxTokens,
		Temperature: sdk.Float(0),
		System:      []sdk.TextBlockParam{{Text: system}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "anthropic: create message")
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	zap.L().Debug("anthropic completion",
		zap.String("model", string(msg.Model)),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
	)
	return text, nil
}
