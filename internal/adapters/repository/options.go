// Package repository provides usage counter stores for the quota tracker.
package repository

import "time"

const (
	defaultKeyPrefix = "playsketch"
	defaultTable     = "whiteboard_usage"
)

// Option applies a configuration option to a store.
type Option func(*settings)

type settings struct {
	now       func() time.Time
	keyPrefix string
	table     string
}

func newSettings(opts []Option) settings {
	s := settings{
		now:       time.Now,
		keyPrefix: defaultKeyPrefix,
		table:     defaultTable,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithClock overrides the time source used for the lastUsed stamp.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithKeyPrefix sets the Redis key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(s *settings) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// WithTable sets the Postgres table name.
func WithTable(table string) Option {
	return func(s *settings) {
		if table != "" {
			s.table = table
		}
	}
}
