// Package limiter defines interfaces and implementations for request rate limiting.
package limiter

import (
	"context"
	"crypto/sha256"

	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/model"
)

// Email throttles magic-link sends per address with a fixed window. The
// counter is durable so a process restart between a link being sent and
// clicked does not reopen the budget.
type Email interface {
	// CheckAndIncrement consumes one unit of the address's window budget.
	CheckAndIncrement(ctx context.Context, email string) (model.RateLimitResult, error)
	// Decrement refunds one unit (floor zero), called once per completed
	// sign-in.
	Decrement(ctx context.Context, email string) error
	// PruneStale removes records whose window has lapsed.
	PruneStale(ctx context.Context) (int64, error)
}

// HashEmail returns a stable hash for an address to avoid storing it raw
// in the limiter table.
func HashEmail(email string) []byte {
	h := sha256.Sum256([]byte(email))
	return h[:]
}
