// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
	"time"
)

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist or has expired.
	ErrNotFound = errors.New("not found")

	// ErrExpired indicates a magic link past its click window.
	ErrExpired = errors.New("expired")

	// ErrUnauthorized indicates a missing, malformed or expired bearer token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates rejection by a rate limiter.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidEmail indicates the supplied address failed validation.
	ErrInvalidEmail = errors.New("invalid email")
)

// RateLimitError carries the retry hint alongside the ErrRateLimited sentinel.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %v", e.RetryAfter)
}

// Unwrap lets errors.Is(err, ErrRateLimited) match.
func (e *RateLimitError) Unwrap() error { return ErrRateLimited }
