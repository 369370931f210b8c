package payment

import (
	"context"
	"encoding/json"

	stripe "github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/repository"
)

// Reconciler maps provider lifecycle events to subscription-cache writes.
//
// Events for one subscription can arrive in any order under the provider's
// retry semantics. The precedence rule that keeps the cache correct is:
// created events with a non-active status are informational-only (writing
// premium=false could clobber a premium=true set by an update or checkout
// event that raced ahead), while updated/deleted/checkout events are always
// authoritative.
type Reconciler struct {
	cache    repository.SubscriptionCache
	provider Provider
	log      *zap.Logger
}

// NewReconciler constructs a Reconciler.
func NewReconciler(cache repository.SubscriptionCache, provider Provider, log *zap.Logger) *Reconciler {
	return &Reconciler{cache: cache, provider: provider, log: log}
}

// Apply processes one event. Failures inside a single event (lookup, decode,
// cache write) are logged and swallowed; the webhook endpoint acknowledges
// receipt regardless.
func (r *Reconciler) Apply(ctx context.Context, event *stripe.Event) {
	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			r.log.Error("webhook: decode checkout session", zap.Error(err))
			return
		}
		if sess.Customer == nil {
			r.log.Warn("webhook: checkout session without customer", zap.String("event", string(event.Type)))
			return
		}
		// A completed checkout is authoritative proof of payment.
		r.write(ctx, sess.Customer.ID, true)

	case "customer.subscription.created":
		sub, ok := r.decodeSubscription(event)
		if !ok {
			return
		}
		if sub.Status != stripe.SubscriptionStatusActive {
			// Transient pre-activation status; only updated/deleted events
			// may write premium=false.
			r.log.Info("webhook: non-active subscription created, ignoring",
				zap.String("status", string(sub.Status)))
			return
		}
		r.write(ctx, sub.Customer.ID, true)

	case "customer.subscription.updated":
		sub, ok := r.decodeSubscription(event)
		if !ok {
			return
		}
		r.write(ctx, sub.Customer.ID, sub.Status == stripe.SubscriptionStatusActive)

	case "customer.subscription.deleted":
		sub, ok := r.decodeSubscription(event)
		if !ok {
			return
		}
		r.write(ctx, sub.Customer.ID, false)

	case "invoice.payment_succeeded", "invoice.payment_failed":
		r.log.Info("webhook: invoice event", zap.String("type", string(event.Type)))

	default:
		r.log.Info("webhook: unhandled event", zap.String("type", string(event.Type)))
	}
}

func (r *Reconciler) decodeSubscription(event *stripe.Event) (*stripe.Subscription, bool) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		r.log.Error("webhook: decode subscription", zap.String("type", string(event.Type)), zap.Error(err))
		return nil, false
	}
	if sub.Customer == nil || sub.Customer.ID == "" {
		r.log.Warn("webhook: subscription without customer", zap.String("type", string(event.Type)))
		return nil, false
	}
	return &sub, true
}

// write resolves the customer to an email and overwrites the cache entry.
// A customer with no email on file is logged and dropped; there is no retry
// queue for such events.
func (r *Reconciler) write(ctx context.Context, customerID string, premium bool) {
	email, err := r.provider.CustomerEmail(ctx, customerID)
	if err != nil {
		r.log.Warn("webhook: resolve customer email",
			zap.String("customer", customerID), zap.Error(err))
		return
	}
	if err := r.cache.Write(ctx, email, premium, customerID); err != nil {
		r.log.Error("webhook: cache write",
			zap.String("customer", customerID), zap.Bool("premium", premium), zap.Error(err))
		return
	}
	r.log.Info("webhook: cache updated",
		zap.String("customer", customerID), zap.Bool("premium", premium))
}
