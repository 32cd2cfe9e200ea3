package quota

import (
	"time"

	"github.com/okian/playsketch/pkg/logger"
)

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithDailyLimit sets the per-tenant daily ceiling.
func WithDailyLimit(limit int) Option {
	return func(t *Tracker) {
		if limit > 0 {
			t.dailyLimit = limit
		}
	}
}

// WithMonthlyLimit sets the per-tenant monthly ceiling.
func WithMonthlyLimit(limit int) Option {
	return func(t *Tracker) {
		if limit > 0 {
			t.monthlyLimit = limit
		}
	}
}

// WithClock overrides the time source used to derive bucket keys.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}
