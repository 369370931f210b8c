// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// AuthRequest status values.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
)

// AuthRequest is one in-flight magic-link sign-in attempt. A record is
// created when the link is sent, flipped to verified exactly once when the
// link is clicked, and deleted the moment a poller receives the token.
type AuthRequest struct {
	ID           uuid.UUID
	Email        string
	Status       string
	SessionToken string // empty until verified
	CreatedAt    time.Time
}

// SubscriptionEntry is the last-known premium status for an email.
// Entries older than the cache TTL are treated as misses, never as "free".
type SubscriptionEntry struct {
	Email      string
	Premium    bool
	CustomerID string // payment-provider customer reference, may be empty
	UpdatedAt  time.Time
}

// RateLimitResult reports the outcome of a rate-limit check.
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time // populated when denied
}

// PollResult is handed to the extension's poll loop.
type PollResult struct {
	Status       string
	Email        string
	SessionToken string
}
