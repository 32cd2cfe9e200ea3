// Package vision sends whiteboard photos to the Anthropic Messages API and
// returns the model's text reply.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/okian/playsketch/pkg/errs"
	"github.com/okian/playsketch/pkg/logger"
)

// Defaults for the model call.
const (
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 4096
)

// Client calls the vision model once per image.
type Client struct {
	api       anthropic.Client
	model     string
	maxTokens int64
	logger    logger.Logger

	apiKey  string
	baseURL string
	extra   []option.RequestOption
}

// New creates a Client. Retries inside the SDK are disabled so each Analyze
// issues exactly one request.
func New(opts ...Option) *Client {
	c := &Client{
		model:     DefaultModel,
		maxTokens: DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Named("vision")
	}

	reqOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if c.apiKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(c.apiKey))
	}
	if c.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(c.baseURL))
	}
	reqOpts = append(reqOpts, c.extra...)
	c.api = anthropic.NewClient(reqOpts...)
	return c
}

// Analyze sends the image followed by Prompt and returns the first text
// block of the reply. Every failure carries ErrModelCall.
func (c *Client) Analyze(ctx context.Context, image []byte, mediaType string) (string, error) {
	const op = "vision.analyze"

	if len(image) == 0 {
		return "", errs.WrapKind(op, ErrModelCall, ErrNoImage)
	}

	start := time.Now()
	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(mediaType, base64.StdEncoding.EncodeToString(image)),
				anthropic.NewTextBlock(Prompt),
			),
		},
	})
	if err != nil {
		c.logger.Warn(ctx, "model call failed",
			logger.String("model", c.model),
			logger.Error(err),
		)
		return "", errs.WrapKind(op, ErrModelCall, err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			c.logger.Debug(ctx, "model replied",
				logger.String("model", c.model),
				logger.Int("chars", len(block.Text)),
				logger.Any("duration", time.Since(start)),
			)
			return block.Text, nil
		}
	}
	return "", errs.WrapKind(op, ErrModelCall, fmt.Errorf("%w (stop reason %q)", ErrNoText, msg.StopReason))
}
