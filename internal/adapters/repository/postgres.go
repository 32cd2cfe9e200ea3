package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/playsketch/internal/domain/quota"
	"github.com/okian/playsketch/pkg/errs"
)

var _ quota.Store = (*PostgresStore)(nil)

// Querier is the subset of *pgxpool.Pool the store needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var tableName = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// PostgresStore keeps one row per tenant and bucket.
type PostgresStore struct {
	db    Querier
	table string
	now   func() time.Time
}

// NewPostgresStore wraps a pool or any Querier. The table name must be a
// plain lowercase identifier.
func NewPostgresStore(db Querier, opts ...Option) (*PostgresStore, error) {
	s := newSettings(opts)
	if !tableName.MatchString(s.table) {
		return nil, fmt.Errorf("invalid table name %q", s.table)
	}
	return &PostgresStore{db: db, table: s.table, now: s.now}, nil
}

// OpenPostgres creates a pool from dsn and pings it.
func OpenPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	const op = "repository.open_postgres"

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errs.WrapKind(op, ErrUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errs.WrapKind(op, ErrUnavailable, err)
	}
	return pool, nil
}

// EnsureSchema creates the usage table when missing.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	const op = "repository.postgres.ensure_schema"

	_, err := p.db.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	tenant_id  TEXT        NOT NULL,
	bucket     TEXT        NOT NULL,
	count      INTEGER     NOT NULL DEFAULT 0,
	last_used  TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (tenant_id, bucket)
)`, p.table))
	if err != nil {
		return errs.WrapKind(op, ErrUnavailable, err)
	}
	return nil
}

// Load reads both buckets with one query; missing rows read as zero.
func (p *PostgresStore) Load(ctx context.Context, tenantID, dayKey, monthKey string) (quota.Usage, error) {
	const op = "repository.postgres.load"

	query := fmt.Sprintf(`SELECT
	COALESCE(MAX(count) FILTER (WHERE bucket = $2), 0),
	COALESCE(MAX(count) FILTER (WHERE bucket = $3), 0)
FROM %s WHERE tenant_id = $1 AND bucket IN ($2, $3)`, p.table)

	var daily, monthly int
	err := p.db.QueryRow(ctx, query, tenantID, dailyField(dayKey), monthlyField(monthKey)).Scan(&daily, &monthly)
	if err != nil {
		return quota.Usage{}, errs.WrapKind(op, ErrUnavailable, err)
	}
	if daily < 0 || monthly < 0 {
		return quota.Usage{}, errs.NewKind(op, ErrCorruptRecord)
	}
	return quota.Usage{Daily: daily, Monthly: monthly}, nil
}

// Save upserts both buckets with the computed counts.
func (p *PostgresStore) Save(ctx context.Context, tenantID, dayKey, monthKey string, u quota.Usage) error {
	const op = "repository.postgres.save"

	stmt := fmt.Sprintf(`INSERT INTO %s (tenant_id, bucket, count, last_used)
VALUES ($1, $2, $3, $6), ($1, $4, $5, $6)
ON CONFLICT (tenant_id, bucket) DO UPDATE
SET count = EXCLUDED.count, last_used = EXCLUDED.last_used`, p.table)

	_, err := p.db.Exec(ctx, stmt,
		tenantID,
		dailyField(dayKey), u.Daily,
		monthlyField(monthKey), u.Monthly,
		p.now().UTC(),
	)
	if err != nil {
		return errs.WrapKind(op, ErrUnavailable, err)
	}
	return nil
}
