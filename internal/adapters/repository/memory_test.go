package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/playsketch/internal/domain/quota"
)

func TestMemoryStore_LoadSave(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	store := NewMemoryStore(WithClock(func() time.Time { return at }))

	// Unknown tenant reads as zero
	u, err := store.Load(ctx, "t1", "2026-10-18", "2026-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != (quota.Usage{}) {
		t.Errorf("expected zero usage, got %+v", u)
	}
	if _, ok := store.LastUsed("t1"); ok {
		t.Error("expected no lastUsed for unknown tenant")
	}

	if err := store.Save(ctx, "t1", "2026-10-18", "2026-10", quota.Usage{Daily: 2, Monthly: 7}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u, err = store.Load(ctx, "t1", "2026-10-18", "2026-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Daily != 2 || u.Monthly != 7 {
		t.Errorf("expected {2 7}, got %+v", u)
	}

	last, ok := store.LastUsed("t1")
	if !ok || !last.Equal(at) {
		t.Errorf("expected lastUsed %v, got %v (ok=%v)", at, last, ok)
	}

	// A new day starts at zero while the month carries
	u, err = store.Load(ctx, "t1", "2026-10-19", "2026-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Daily != 0 || u.Monthly != 7 {
		t.Errorf("expected {0 7}, got %+v", u)
	}

	// Tenants are isolated
	u, _ = store.Load(ctx, "t2", "2026-10-18", "2026-10")
	if u != (quota.Usage{}) {
		t.Errorf("expected zero usage for other tenant, got %+v", u)
	}
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Load(ctx, "t1", "d", "m"); err == nil {
		t.Error("expected error for cancelled context on load")
	}
	if err := store.Save(ctx, "t1", "d", "m", quota.Usage{Daily: 1}); err == nil {
		t.Error("expected error for cancelled context on save")
	}
}

func TestMemoryStore_ConcurrentTenants(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			tenant := fmt.Sprintf("tenant-%d", id)
			for n := 1; n <= 50; n++ {
				if err := store.Save(ctx, tenant, "d", "m", quota.Usage{Daily: n, Monthly: n}); err != nil {
					t.Errorf("save failed: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		u, err := store.Load(ctx, fmt.Sprintf("tenant-%d", i), "d", "m")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if u.Daily != 50 {
			t.Errorf("tenant-%d: expected 50, got %d", i, u.Daily)
		}
	}
}

func TestMemoryStore_WithTracker(t *testing.T) {
	initLogger(t)
	ctx := context.Background()
	store := NewMemoryStore()
	tracker := quota.New(store, quota.WithDailyLimit(2))

	for i := 0; i < 2; i++ {
		if _, err := tracker.CheckAndConsume(ctx, "t1"); err != nil {
			t.Fatalf("request %d: unexpected error: %v", i+1, err)
		}
	}
	if _, err := tracker.CheckAndConsume(ctx, "t1"); err == nil {
		t.Fatal("expected quota error on third request")
	}
}
