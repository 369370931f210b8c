// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/model"
)

// AuthRequestStore persists in-flight magic-link sign-in attempts.
// All implementations must treat an expired record exactly like an unknown id.
type AuthRequestStore interface {
	// Create inserts a new pending request.
	Create(ctx context.Context, id uuid.UUID, email string) (*model.AuthRequest, error)
	// Get loads a request; a record older than the request lifetime is
	// deleted and reported as ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*model.AuthRequest, error)
	// MarkVerified sets status=verified and attaches the session token.
	MarkVerified(ctx context.Context, id uuid.UUID, sessionToken string) error
	// Consume atomically deletes a verified request and returns its payload.
	// Of two racing pollers exactly one receives the token; the other sees
	// ErrNotFound.
	Consume(ctx context.Context, id uuid.UUID) (email, sessionToken string, err error)
	// Delete removes a request; deleting an absent id is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
	// PruneExpired sweeps records older than the request lifetime.
	PruneExpired(ctx context.Context) (int64, error)
}

// SubscriptionCache stores the last-known premium status per email.
type SubscriptionCache interface {
	// Read returns the entry for email; absent or stale entries are
	// reported as ErrNotFound.
	Read(ctx context.Context, email string) (*model.SubscriptionEntry, error)
	// ReadAny returns the entry regardless of staleness; used to recover a
	// customer reference, never for entitlement decisions.
	ReadAny(ctx context.Context, email string) (*model.SubscriptionEntry, error)
	// Write unconditionally overwrites the entry; last writer wins.
	Write(ctx context.Context, email string, premium bool, customerID string) error
}
