package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/playsketch/internal/domain/quota"
	"github.com/okian/playsketch/pkg/errs"
)

var _ quota.Store = (*RedisStore)(nil)

// lastUsedField is the hash field stamped on every save.
const lastUsedField = "lastUsed"

// RedisStore keeps one hash per tenant. Fields are daily_<day>,
// monthly_<month> and lastUsed; old buckets stay in the hash untouched.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.Cmdable, opts ...Option) *RedisStore {
	s := newSettings(opts)
	return &RedisStore{client: client, prefix: s.keyPrefix, now: s.now}
}

// DialRedis parses a redis:// URL and checks the server answers.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	const op = "repository.dial_redis"

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, errs.WrapKind(op, ErrUnavailable, err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errs.WrapKind(op, ErrUnavailable, err)
	}
	return client, nil
}

// Key returns the hash key for a tenant.
func (r *RedisStore) Key(tenantID string) string {
	return r.prefix + ":" + tenantID + ":usage:whiteboard"
}

// Load reads both bucket fields with one HMGET.
func (r *RedisStore) Load(ctx context.Context, tenantID, dayKey, monthKey string) (quota.Usage, error) {
	const op = "repository.redis.load"

	vals, err := r.client.HMGet(ctx, r.Key(tenantID), dailyField(dayKey), monthlyField(monthKey)).Result()
	if err != nil {
		return quota.Usage{}, errs.WrapKind(op, ErrUnavailable, err)
	}

	daily, err := parseCount(vals, 0)
	if err != nil {
		return quota.Usage{}, errs.WrapKind(op, ErrCorruptRecord, err)
	}
	monthly, err := parseCount(vals, 1)
	if err != nil {
		return quota.Usage{}, errs.WrapKind(op, ErrCorruptRecord, err)
	}
	return quota.Usage{Daily: daily, Monthly: monthly}, nil
}

// Save writes both bucket fields and lastUsed with one HSET.
func (r *RedisStore) Save(ctx context.Context, tenantID, dayKey, monthKey string, u quota.Usage) error {
	const op = "repository.redis.save"

	err := r.client.HSet(ctx, r.Key(tenantID),
		dailyField(dayKey), u.Daily,
		monthlyField(monthKey), u.Monthly,
		lastUsedField, r.now().UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return errs.WrapKind(op, ErrUnavailable, err)
	}
	return nil
}

func parseCount(vals []interface{}, i int) (int, error) {
	if i >= len(vals) || vals[i] == nil {
		return 0, nil
	}
	s, ok := vals[i].(string)
	if !ok {
		return 0, fmt.Errorf("unexpected field type %T", vals[i])
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %d", n)
	}
	return n, nil
}
