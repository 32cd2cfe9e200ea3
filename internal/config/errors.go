package config

import "errors"

// Load wraps every failure in ErrLoadConfig; Validate failures additionally
// match ErrInvalidConfig.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
