package imagefetch

import (
	"net/http"
	"time"

	"github.com/okian/playsketch/pkg/logger"
)

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithHTTPClient replaces the default client, including its address guard.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithTimeout bounds each fetch, body included.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithAllowPrivateHosts lets the default client fetch from loopback, private
// and link-local addresses.
func WithAllowPrivateHosts(allow bool) Option {
	return func(l *Loader) { l.allowPrivate = allow }
}

// WithMaxBytes caps the accepted body size.
func WithMaxBytes(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(lg logger.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}
