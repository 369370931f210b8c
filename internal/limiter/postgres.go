package limiter

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/model"
)

// PG is a PostgreSQL-backed fixed-window limiter implementation.
type PG struct {
	pool   pgxQuerier
	window time.Duration
	max    int
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPG constructs a PostgreSQL-backed limiter. Any querier with Exec and
// QueryRow works, which keeps the tests off a live database.
func NewPG(q pgxQuerier, window time.Duration, max int) *PG {
	return &PG{pool: q, window: window, max: max}
}

// CheckAndIncrement bumps the counter for the address's current window. A
// lapsed window resets to count=1 regardless of the stored count. The call
// is a single upsert so two concurrent senders cannot both land on the same
// count.
func (l *PG) CheckAndIncrement(ctx context.Context, email string) (model.RateLimitResult, error) {
	const q = `
INSERT INTO rate_limits (email_hash, count, window_start)
VALUES ($1, 1, now())
ON CONFLICT (email_hash) DO UPDATE
SET
  count = CASE WHEN now() - rate_limits.window_start > $2::interval THEN 1 ELSE rate_limits.count + 1 END,
  window_start = CASE WHEN now() - rate_limits.window_start > $2::interval THEN now() ELSE rate_limits.window_start END
RETURNING count, window_start`
	var count int
	var windowStart time.Time
	if err := l.pool.QueryRow(ctx, q, HashEmail(email), l.window).Scan(&count, &windowStart); err != nil {
		return model.RateLimitResult{}, err
	}
	if count > l.max {
		return model.RateLimitResult{
			Allowed: false,
			ResetAt: windowStart.Add(l.window),
		}, nil
	}
	return model.RateLimitResult{
		Allowed:   true,
		Remaining: l.max - count,
	}, nil
}

// Decrement refunds one unit, never below zero.
func (l *PG) Decrement(ctx context.Context, email string) error {
	const q = `
UPDATE rate_limits
SET count = GREATEST(count - 1, 0)
WHERE email_hash = $1`
	_, err := l.pool.Exec(ctx, q, HashEmail(email))
	return err
}

// PruneStale deletes records whose window lapsed. The hot path never deletes;
// it only treats lapsed windows as reset.
func (l *PG) PruneStale(ctx context.Context) (int64, error) {
	const q = `DELETE FROM rate_limits WHERE window_start < now() - $1::interval`
	tag, err := l.pool.Exec(ctx, q, l.window)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
