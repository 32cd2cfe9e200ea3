// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers files and environment over the defaults, then validates.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/playsketch/pkg/errs"
)

// Counter store backends.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the handler: text, json or tint.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`
	// RequestTimeout bounds one analysis end to end.
	RequestTimeout time.Duration `koanf:"request_timeout"`
	// APITokens are "caller:token" pairs accepted as bearer tokens.
	APITokens []string `koanf:"api_tokens"`

	DailyLimit   int `koanf:"daily_limit"`
	MonthlyLimit int `koanf:"monthly_limit"`

	// CounterStore selects where usage counters live: memory, redis or postgres.
	CounterStore   string `koanf:"counter_store"`
	RedisURL       string `koanf:"redis_url"`
	RedisKeyPrefix string `koanf:"redis_key_prefix"`
	PostgresDSN    string `koanf:"postgres_dsn"`

	// AnthropicAPIKey falls back to ANTHROPIC_API_KEY when empty.
	AnthropicAPIKey  string `koanf:"anthropic_api_key"`
	AnthropicBaseURL string `koanf:"anthropic_base_url"`
	Model            string `koanf:"model"`
	MaxTokens        int    `koanf:"max_tokens"`

	ImageMaxBytes     int64         `koanf:"image_max_bytes"`
	ImageFetchTimeout time.Duration `koanf:"image_fetch_timeout"`
	// ImageAllowPrivateHosts permits image references on loopback, private
	// and link-local addresses.
	ImageAllowPrivateHosts bool `koanf:"image_allow_private_hosts"`

	MinMeanConfidence        float64 `koanf:"min_mean_confidence"`
	LOSConfidenceThreshold   float64 `koanf:"los_confidence_threshold"`
	SkillDefaultThreshold    float64 `koanf:"skill_default_threshold"`
	LowConfidenceWarning     float64 `koanf:"low_confidence_warning"`
	RouteConfidenceThreshold float64 `koanf:"route_confidence_threshold"`
	DefaultLOSPercent        float64 `koanf:"default_los_percent"`
	NotesMaxLength           int     `koanf:"notes_max_length"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":9080",
		RequestTimeout: 60 * time.Second,

		DailyLimit:   50,
		MonthlyLimit: 500,

		CounterStore:   StoreMemory,
		RedisKeyPrefix: "playsketch",

		Model:     "claude-sonnet-4-20250514",
		MaxTokens: 4096,

		ImageMaxBytes:     10 << 20,
		ImageFetchTimeout: 20 * time.Second,

		MinMeanConfidence:        0.3,
		LOSConfidenceThreshold:   0.6,
		SkillDefaultThreshold:    0.5,
		LowConfidenceWarning:     0.6,
		RouteConfidenceThreshold: 0.6,
		DefaultLOSPercent:        60,
		NotesMaxLength:           500,
	}
}

// Validate reports every problem at once, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	const op = "config.validate"
	var problems []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Errorf(format, args...))
		}
	}

	check(c.Addr != "", "addr must not be empty")
	check(c.LogFormat == "text" || c.LogFormat == "json" || c.LogFormat == "tint",
		"log_format %q must be text, json or tint", c.LogFormat)
	check(c.RequestTimeout > 0, "request_timeout must be positive")
	check(c.DailyLimit > 0, "daily_limit must be positive")
	check(c.MonthlyLimit > 0, "monthly_limit must be positive")

	switch c.CounterStore {
	case StoreMemory:
	case StoreRedis:
		check(c.RedisURL != "", "redis_url is required for the redis counter store")
	case StorePostgres:
		check(c.PostgresDSN != "", "postgres_dsn is required for the postgres counter store")
	default:
		check(false, "counter_store %q must be memory, redis or postgres", c.CounterStore)
	}

	check(c.Model != "", "model must not be empty")
	check(c.MaxTokens > 0, "max_tokens must be positive")
	check(c.ImageMaxBytes > 0, "image_max_bytes must be positive")
	check(c.ImageFetchTimeout > 0, "image_fetch_timeout must be positive")

	for name, v := range map[string]float64{
		"min_mean_confidence":        c.MinMeanConfidence,
		"los_confidence_threshold":   c.LOSConfidenceThreshold,
		"skill_default_threshold":    c.SkillDefaultThreshold,
		"low_confidence_warning":     c.LowConfidenceWarning,
		"route_confidence_threshold": c.RouteConfidenceThreshold,
	} {
		check(v >= 0 && v <= 1, "%s must be within [0, 1]", name)
	}
	check(c.DefaultLOSPercent >= 0 && c.DefaultLOSPercent <= 100, "default_los_percent must be within [0, 100]")
	check(c.NotesMaxLength > 0, "notes_max_length must be positive")

	if len(problems) > 0 {
		return errs.WrapKind(op, ErrInvalidConfig, errors.Join(problems...))
	}
	return nil
}
