package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/errs"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/model"
)

// SubscriptionRepo implements repository.SubscriptionCache using PostgreSQL.
type SubscriptionRepo struct {
	db  *DB
	ttl time.Duration
}

// NewSubscriptionRepo constructs a subscription-cache repository. ttl bounds
// how long an entry satisfies reads before it counts as a miss.
func NewSubscriptionRepo(db *DB, ttl time.Duration) *SubscriptionRepo {
	return &SubscriptionRepo{db: db, ttl: ttl}
}

// Read returns the cached entry for email. A stale entry is a miss, not
// "free": callers fall through to the provider and overwrite it.
func (r *SubscriptionRepo) Read(ctx context.Context, email string) (*model.SubscriptionEntry, error) {
	const q = `
SELECT email, premium, customer_id, updated_at
FROM subscription_cache WHERE email=$1`
	row := r.db.Pool.QueryRow(ctx, q, email)
	var e model.SubscriptionEntry
	if err := row.Scan(&e.Email, &e.Premium, &e.CustomerID, &e.UpdatedAt); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	if time.Since(e.UpdatedAt) > r.ttl {
		return nil, errs.ErrNotFound
	}
	return &e, nil
}

// ReadAny returns the entry regardless of staleness. Used only to recover a
// customer reference for billing-portal sessions, never for entitlement.
func (r *SubscriptionRepo) ReadAny(ctx context.Context, email string) (*model.SubscriptionEntry, error) {
	const q = `
SELECT email, premium, customer_id, updated_at
FROM subscription_cache WHERE email=$1`
	row := r.db.Pool.QueryRow(ctx, q, email)
	var e model.SubscriptionEntry
	if err := row.Scan(&e.Email, &e.Premium, &e.CustomerID, &e.UpdatedAt); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return &e, nil
}

// Write unconditionally overwrites the entry with updated_at=now.
func (r *SubscriptionRepo) Write(ctx context.Context, email string, premium bool, customerID string) error {
	const q = `
INSERT INTO subscription_cache (email, premium, customer_id, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (email)
DO UPDATE SET premium=$2, customer_id=$3, updated_at=now()`
	_, err := r.db.Pool.Exec(ctx, q, email, premium, customerID)
	return err
}
