package quota_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/playsketch/internal/domain/quota"
	"github.com/okian/playsketch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fakeStore struct {
	mu      sync.Mutex
	buckets map[string]int
	saves   int
	loadErr error
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{buckets: make(map[string]int)}
}

func (s *fakeStore) Load(_ context.Context, tenantID, dayKey, monthKey string) (quota.Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return quota.Usage{}, s.loadErr
	}
	return quota.Usage{
		Daily:   s.buckets[tenantID+"/daily_"+dayKey],
		Monthly: s.buckets[tenantID+"/monthly_"+monthKey],
	}, nil
}

func (s *fakeStore) Save(_ context.Context, tenantID, dayKey, monthKey string, u quota.Usage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.buckets[tenantID+"/daily_"+dayKey] = u.Daily
	s.buckets[tenantID+"/monthly_"+monthKey] = u.Monthly
	return nil
}

func fixedClock(ts string) func() time.Time {
	at, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return at }
}

func TestKeys(t *testing.T) {
	Convey("Given a timestamp with a non-UTC offset", t, func() {
		at := time.Date(2026, 3, 31, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))

		Convey("Then the bucket keys are derived in UTC", func() {
			day, month := quota.Keys(at)
			So(day, ShouldEqual, "2026-04-01")
			So(month, ShouldEqual, "2026-04")
		})
	})
}

func TestTracker_CheckAndConsume(t *testing.T) {
	ctx := context.Background()

	Convey("Given a tenant starting at zero usage", t, func() {
		store := newFakeStore()
		tracker := quota.New(store,
			quota.WithDailyLimit(3),
			quota.WithMonthlyLimit(10),
			quota.WithClock(fixedClock("2026-10-18T12:00:00Z")),
		)

		Convey("When issuing sequential requests within one day", func() {
			var remaining []int
			for i := 0; i < 3; i++ {
				r, err := tracker.CheckAndConsume(ctx, "school-1")
				So(err, ShouldBeNil)
				remaining = append(remaining, r.Daily)
			}

			Convey("Then each request decrements the daily remainder by one", func() {
				So(remaining, ShouldResemble, []int{2, 1, 0})
			})

			Convey("And the next request fails without incrementing", func() {
				_, err := tracker.CheckAndConsume(ctx, "school-1")
				So(errors.Is(err, quota.ErrQuotaExceeded), ShouldBeTrue)

				var exceeded *quota.ExceededError
				So(errors.As(err, &exceeded), ShouldBeTrue)
				So(exceeded.Window, ShouldEqual, quota.WindowDaily)
				So(exceeded.Limit, ShouldEqual, 3)

				So(store.saves, ShouldEqual, 3)
				So(store.buckets["school-1/daily_2026-10-18"], ShouldEqual, 3)
				So(store.buckets["school-1/monthly_2026-10"], ShouldEqual, 3)
			})
		})

		Convey("When another tenant is at its ceiling", func() {
			store.buckets["school-2/daily_2026-10-18"] = 3

			Convey("Then this tenant is unaffected", func() {
				r, err := tracker.CheckAndConsume(ctx, "school-1")
				So(err, ShouldBeNil)
				So(r, ShouldResemble, quota.Remaining{Daily: 2, Monthly: 9})
			})
		})
	})

	Convey("Given a tenant whose daily counter equals the daily limit", t, func() {
		store := newFakeStore()
		store.buckets["school-1/daily_2026-10-18"] = quota.DefaultDailyLimit
		store.buckets["school-1/monthly_2026-10"] = quota.DefaultDailyLimit
		tracker := quota.New(store, quota.WithClock(fixedClock("2026-10-18T08:00:00Z")))

		Convey("When one more request arrives", func() {
			_, err := tracker.CheckAndConsume(ctx, "school-1")

			Convey("Then it fails with a quota error and the counter is unchanged", func() {
				So(errors.Is(err, quota.ErrQuotaExceeded), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "daily limit of 50")
				So(store.buckets["school-1/daily_2026-10-18"], ShouldEqual, quota.DefaultDailyLimit)
				So(store.saves, ShouldEqual, 0)
			})
		})

		Convey("When the day rolls over", func() {
			next := quota.New(store, quota.WithClock(fixedClock("2026-10-19T00:00:01Z")))
			r, err := next.CheckAndConsume(ctx, "school-1")

			Convey("Then the daily bucket starts fresh but the monthly one carries", func() {
				So(err, ShouldBeNil)
				So(r.Daily, ShouldEqual, quota.DefaultDailyLimit-1)
				So(r.Monthly, ShouldEqual, quota.DefaultMonthlyLimit-quota.DefaultDailyLimit-1)
			})
		})
	})

	Convey("Given a tenant at the monthly ceiling", t, func() {
		store := newFakeStore()
		store.buckets["school-1/monthly_2026-10"] = 10
		tracker := quota.New(store,
			quota.WithMonthlyLimit(10),
			quota.WithClock(fixedClock("2026-10-18T08:00:00Z")),
		)

		Convey("Then the monthly window is reported", func() {
			_, err := tracker.CheckAndConsume(ctx, "school-1")
			var exceeded *quota.ExceededError
			So(errors.As(err, &exceeded), ShouldBeTrue)
			So(exceeded.Window, ShouldEqual, quota.WindowMonthly)
			So(err.Error(), ShouldContainSubstring, "monthly limit of 10")
		})
	})

	Convey("Given a failing store", t, func() {
		store := newFakeStore()
		tracker := quota.New(store)

		Convey("When the read fails", func() {
			store.loadErr = errors.New("unavailable")
			_, err := tracker.CheckAndConsume(ctx, "school-1")

			Convey("Then a store error is returned", func() {
				So(errors.Is(err, quota.ErrStore), ShouldBeTrue)
				So(errors.Is(err, quota.ErrQuotaExceeded), ShouldBeFalse)
			})
		})

		Convey("When the write fails", func() {
			store.saveErr = errors.New("read only")
			_, err := tracker.CheckAndConsume(ctx, "school-1")

			Convey("Then a store error is returned", func() {
				So(errors.Is(err, quota.ErrStore), ShouldBeTrue)
			})
		})
	})

	Convey("Given non-positive limit options", t, func() {
		store := newFakeStore()
		tracker := quota.New(store, quota.WithDailyLimit(0), quota.WithMonthlyLimit(-1))

		Convey("Then the defaults are kept", func() {
			r, err := tracker.CheckAndConsume(ctx, "school-1")
			So(err, ShouldBeNil)
			So(r, ShouldResemble, quota.Remaining{Daily: quota.DefaultDailyLimit - 1, Monthly: quota.DefaultMonthlyLimit - 1})
		})
	})
}
