package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/errs"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/model"
)

// AuthRequestRepo implements repository.AuthRequestStore using PostgreSQL.
type AuthRequestRepo struct {
	db  *DB
	ttl time.Duration
}

// NewAuthRequestRepo constructs an auth-request repository. ttl is the
// request lifetime after which records are treated as never having existed.
func NewAuthRequestRepo(db *DB, ttl time.Duration) *AuthRequestRepo {
	return &AuthRequestRepo{db: db, ttl: ttl}
}

// Create inserts a new pending request.
func (r *AuthRequestRepo) Create(ctx context.Context, id uuid.UUID, email string) (*model.AuthRequest, error) {
	const q = `
INSERT INTO auth_requests (id, email, status, session_token, created_at)
VALUES ($1, $2, 'pending', '', now())
RETURNING created_at`
	var createdAt time.Time
	if err := r.db.Pool.QueryRow(ctx, q, id, email).Scan(&createdAt); err != nil {
		return nil, err
	}
	return &model.AuthRequest{
		ID:        id,
		Email:     email,
		Status:    model.StatusPending,
		CreatedAt: createdAt,
	}, nil
}

// Get loads a request by id. Records older than the request lifetime are
// deleted on the spot and reported as ErrNotFound, so callers cannot
// distinguish "expired" from "unknown id".
func (r *AuthRequestRepo) Get(ctx context.Context, id uuid.UUID) (*model.AuthRequest, error) {
	const q = `
SELECT id, email, status, session_token, created_at
FROM auth_requests WHERE id=$1`
	row := r.db.Pool.QueryRow(ctx, q, id)
	var a model.AuthRequest
	if err := row.Scan(&a.ID, &a.Email, &a.Status, &a.SessionToken, &a.CreatedAt); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	if time.Since(a.CreatedAt) > r.ttl {
		_ = r.Delete(ctx, id)
		return nil, errs.ErrNotFound
	}
	return &a, nil
}

// MarkVerified flips status to verified and attaches the session token.
func (r *AuthRequestRepo) MarkVerified(ctx context.Context, id uuid.UUID, sessionToken string) error {
	const q = `
UPDATE auth_requests
SET status='verified', session_token=$2
WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, sessionToken)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Consume deletes a verified request and returns its payload. The DELETE is
// the consumption: of two racing pollers only one sees a row.
func (r *AuthRequestRepo) Consume(ctx context.Context, id uuid.UUID) (string, string, error) {
	const q = `
DELETE FROM auth_requests
WHERE id=$1 AND status='verified'
RETURNING email, session_token`
	var email, token string
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&email, &token); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", errs.ErrNotFound
		}
		return "", "", err
	}
	return email, token, nil
}

// Delete removes a request; removing an absent id is a no-op.
func (r *AuthRequestRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM auth_requests WHERE id=$1`
	_, err := r.db.Pool.Exec(ctx, q, id)
	return err
}

// PruneExpired sweeps all records older than the request lifetime.
func (r *AuthRequestRepo) PruneExpired(ctx context.Context) (int64, error) {
	const q = `DELETE FROM auth_requests WHERE created_at < now() - $1::interval`
	tag, err := r.db.Pool.Exec(ctx, q, r.ttl)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
