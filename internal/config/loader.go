package config

import (
	"context"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/playsketch/pkg/errs"
)

// Environment variables that point at optional config sources.
const (
	EnvPrefix     = "PLAYSKETCH_"
	EnvConfigFile = EnvPrefix + "CONFIG"
	EnvDotEnvFile = EnvPrefix + "ENV_FILE"
)

// Load builds a Config by layering defaults, optional files, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if PLAYSKETCH_CONFIG is set
//  3. env (prefix PLAYSKETCH_), including variables from PLAYSKETCH_ENV_FILE
//
// Variables already present in the process environment win over the .env file.
func Load(ctx context.Context) (*Config, error) {
	const op = "config.load"

	base := New(ctx)

	if path := os.Getenv(EnvDotEnvFile); path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, errs.WrapKind(op, ErrLoadConfig, err)
		}
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errs.WrapKind(op, ErrLoadConfig, err)
		}
	}

	// PLAYSKETCH_DAILY_LIMIT -> daily_limit (flat keys). List keys are
	// comma separated.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if _, ok := listKeys[key]; ok {
			return key, strings.Split(value, ",")
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, errs.WrapKind(op, ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errs.WrapKind(op, ErrLoadConfig, err)
	}
	cfg.APITokens = compact(cfg.APITokens)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// listKeys are decoded from comma separated env values.
var listKeys = map[string]struct{}{ //nolint:gochecknoglobals // fixed key set
	"api_tokens": {},
}

// compact splits comma joined entries, trims them and drops empty ones left
// by trailing commas.
func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, entry := range in {
		for _, s := range strings.Split(entry, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
