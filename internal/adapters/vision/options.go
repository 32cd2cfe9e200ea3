package vision

import (
	"net/http"

	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/okian/playsketch/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithAPIKey sets the API key. Without it the SDK reads ANTHROPIC_API_KEY.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithBaseURL points the client at another endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxTokens caps the reply length.
func WithMaxTokens(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = int64(n)
		}
	}
}

// WithHTTPClient sets the HTTP client used by the SDK.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.extra = append(c.extra, option.WithHTTPClient(hc))
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
