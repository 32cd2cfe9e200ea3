// Package quota enforces per-tenant daily and monthly analysis ceilings.
//
// The check reads the tenant's usage record and writes the incremented
// counts back as two separate store calls. Concurrent requests from one
// tenant inside the same window can both pass the check before either write
// lands, so the ceiling is approximate. Stores that offer a conditional
// update can tighten this without changing the Tracker contract.
package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/playsketch/pkg/errs"
	"github.com/okian/playsketch/pkg/logger"
	"github.com/okian/playsketch/pkg/metrics"
)

// Default ceilings per tenant.
const (
	DefaultDailyLimit   = 50
	DefaultMonthlyLimit = 500

	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// Window names a quota bucket.
type Window string

const (
	WindowDaily   Window = "daily"
	WindowMonthly Window = "monthly"
)

// Usage is a tenant's consumption in the current day and month buckets.
type Usage struct {
	Daily   int
	Monthly int
}

// Remaining is what is left after a successful check.
type Remaining struct {
	Daily   int `json:"daily"`
	Monthly int `json:"monthly"`
}

// Store persists usage records keyed by tenant and bucket keys.
type Store interface {
	// Load returns the counts for the given day and month keys. Missing
	// records read as zero.
	Load(ctx context.Context, tenantID, dayKey, monthKey string) (Usage, error)
	// Save writes the counts for the given keys, leaving other buckets intact.
	Save(ctx context.Context, tenantID, dayKey, monthKey string, u Usage) error
}

// ExceededError reports which ceiling stopped the request.
type ExceededError struct {
	Window Window
	Limit  int
}

func (e *ExceededError) Error() string {
	if e.Window == WindowDaily {
		return fmt.Sprintf("daily limit of %d conversions reached, try again tomorrow", e.Limit)
	}
	return fmt.Sprintf("monthly limit of %d conversions reached", e.Limit)
}

// Is lets errors.Is(err, ErrQuotaExceeded) match.
func (e *ExceededError) Is(target error) bool { return target == ErrQuotaExceeded }

// Tracker gates requests on the tenant's usage counters.
type Tracker struct {
	store        Store
	dailyLimit   int
	monthlyLimit int
	now          func() time.Time
	logger       logger.Logger
}

// New creates a Tracker over store.
func New(store Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:        store,
		dailyLimit:   DefaultDailyLimit,
		monthlyLimit: DefaultMonthlyLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = logger.Named("quota")
	}
	return t
}

// Keys returns the day and month bucket keys for at, in UTC.
func Keys(at time.Time) (dayKey, monthKey string) {
	u := at.UTC()
	return u.Format(dayLayout), u.Format(monthLayout)
}

// CheckAndConsume fails with ErrQuotaExceeded when either ceiling is reached,
// leaving the counters untouched. Otherwise it increments both counters and
// returns the post-increment remaining counts.
func (t *Tracker) CheckAndConsume(ctx context.Context, tenantID string) (Remaining, error) {
	const op = "quota.check_and_consume"

	dayKey, monthKey := Keys(t.now())

	usage, err := t.store.Load(ctx, tenantID, dayKey, monthKey)
	if err != nil {
		return Remaining{}, errs.WrapKind(op, ErrStore, err)
	}

	if usage.Daily >= t.dailyLimit {
		metrics.RecordQuotaRejection(string(WindowDaily))
		t.logger.Info(ctx, "daily quota exhausted",
			logger.String("tenant", tenantID),
			logger.Int("used", usage.Daily),
		)
		return Remaining{}, errs.Wrap(op, &ExceededError{Window: WindowDaily, Limit: t.dailyLimit})
	}
	if usage.Monthly >= t.monthlyLimit {
		metrics.RecordQuotaRejection(string(WindowMonthly))
		t.logger.Info(ctx, "monthly quota exhausted",
			logger.String("tenant", tenantID),
			logger.Int("used", usage.Monthly),
		)
		return Remaining{}, errs.Wrap(op, &ExceededError{Window: WindowMonthly, Limit: t.monthlyLimit})
	}

	next := Usage{Daily: usage.Daily + 1, Monthly: usage.Monthly + 1}
	if err := t.store.Save(ctx, tenantID, dayKey, monthKey, next); err != nil {
		return Remaining{}, errs.WrapKind(op, ErrStore, err)
	}

	return Remaining{
		Daily:   t.dailyLimit - next.Daily,
		Monthly: t.monthlyLimit - next.Monthly,
	}, nil
}
