// Package payment integrates the payment provider: live subscription
// lookups, checkout/billing-portal session creation, and reconciliation of
// webhook events into the subscription cache.
package payment

import "context"

// Provider is the outbound interface to the payment provider. It is queried
// only on cache misses and for delegated session creation; it is never the
// source of truth for hot-path entitlement checks.
type Provider interface {
	// SubscriptionStatus reports whether the email currently has an active
	// subscription, with the provider's customer reference if one exists.
	SubscriptionStatus(ctx context.Context, email string) (premium bool, customerID string, err error)
	// CustomerEmail resolves a customer reference to its email on file.
	CustomerEmail(ctx context.Context, customerID string) (string, error)
	// Checkout creates a checkout session for the plan and returns its URL.
	Checkout(ctx context.Context, email, plan string) (string, error)
	// PortalSession creates a billing-portal session for the customer.
	PortalSession(ctx context.Context, customerID string) (string, error)
}

// ErrUnknownPlan is returned by Checkout for plans with no configured price.
type ErrUnknownPlan struct{ Plan string }

func (e *ErrUnknownPlan) Error() string { return "unknown plan: " + e.Plan }
