package service

import (
	"time"

	"github.com/okian/playsketch/internal/domain/validate"
	"github.com/okian/playsketch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithTimeout bounds one Analyze call end to end.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithGate replaces the default analysis gate.
func WithGate(g Gate) Option {
	return func(s *Service) {
		if g != nil {
			s.gate = g
		}
	}
}

// WithNormalizer replaces the default normalizer.
func WithNormalizer(n Normalizer) Option {
	return func(s *Service) {
		if n != nil {
			s.normalizer = n
		}
	}
}

// WithParseOptions passes options to validate.Parse.
func WithParseOptions(opts ...validate.Option) Option {
	return func(s *Service) {
		s.parseOpts = append(s.parseOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
