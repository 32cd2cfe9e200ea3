package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/playsketch/internal/domain/quota"
)

var _ quota.Store = (*MemoryStore)(nil)

// usageRecord holds one tenant's buckets.
type usageRecord struct {
	buckets  map[string]int
	lastUsed time.Time
}

// MemoryStore keeps usage records in process memory. Counts are lost on
// restart, so it suits development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	tenants map[string]*usageRecord
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := newSettings(opts)
	return &MemoryStore{
		tenants: make(map[string]*usageRecord),
		now:     s.now,
	}
}

// Load returns the tenant's counts; unknown tenants and buckets read as zero.
func (m *MemoryStore) Load(ctx context.Context, tenantID, dayKey, monthKey string) (quota.Usage, error) {
	if err := ctx.Err(); err != nil {
		return quota.Usage{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.tenants[tenantID]
	if !ok {
		return quota.Usage{}, nil
	}
	return quota.Usage{
		Daily:   rec.buckets[dailyField(dayKey)],
		Monthly: rec.buckets[monthlyField(monthKey)],
	}, nil
}

// Save merges the counts into the tenant's record and stamps lastUsed.
func (m *MemoryStore) Save(ctx context.Context, tenantID, dayKey, monthKey string, u quota.Usage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.tenants[tenantID]
	if !ok {
		rec = &usageRecord{buckets: make(map[string]int)}
		m.tenants[tenantID] = rec
	}
	rec.buckets[dailyField(dayKey)] = u.Daily
	rec.buckets[monthlyField(monthKey)] = u.Monthly
	rec.lastUsed = m.now().UTC()
	return nil
}

// LastUsed reports when the tenant's record was last written.
func (m *MemoryStore) LastUsed(tenantID string) (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.tenants[tenantID]
	if !ok {
		return time.Time{}, false
	}
	return rec.lastUsed, true
}

func dailyField(dayKey string) string     { return "daily_" + dayKey }
func monthlyField(monthKey string) string { return "monthly_" + monthKey }
