package payment

import (
	"context"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/errs"
)

// StripeConfig carries the plan-to-price mapping and redirect targets.
type StripeConfig struct {
	PriceMonthly string
	PriceAnnual  string
	SuccessURL   string
	CancelURL    string
	ReturnURL    string
}

// Stripe implements Provider against the Stripe API.
type Stripe struct {
	api *client.API
	cfg StripeConfig
}

// NewStripe constructs a Stripe provider with its own API client. Request
// timeouts are the Stripe client's own; nothing here re-implements them.
func NewStripe(secretKey string, cfg StripeConfig) *Stripe {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Stripe{api: api, cfg: cfg}
}

// SubscriptionStatus looks up the customer by email and reports whether any
// of their subscriptions is active.
func (s *Stripe) SubscriptionStatus(ctx context.Context, email string) (bool, string, error) {
	custParams := &stripe.CustomerListParams{Email: stripe.String(email)}
	custParams.Context = ctx
	custParams.Limit = stripe.Int64(1)
	it := s.api.Customers.List(custParams)
	if !it.Next() {
		if err := it.Err(); err != nil {
			return false, "", err
		}
		// No customer on file means no subscription.
		return false, "", nil
	}
	cust := it.Customer()

	subParams := &stripe.SubscriptionListParams{
		Customer: stripe.String(cust.ID),
		Status:   stripe.String("all"),
	}
	subParams.Context = ctx
	subs := s.api.Subscriptions.List(subParams)
	for subs.Next() {
		if subs.Subscription().Status == stripe.SubscriptionStatusActive {
			return true, cust.ID, nil
		}
	}
	if err := subs.Err(); err != nil {
		return false, cust.ID, err
	}
	return false, cust.ID, nil
}

// CustomerEmail resolves a customer reference to its email on file.
func (s *Stripe) CustomerEmail(ctx context.Context, customerID string) (string, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	cust, err := s.api.Customers.Get(customerID, params)
	if err != nil {
		return "", err
	}
	if cust.Email == "" {
		return "", errs.ErrNotFound
	}
	return cust.Email, nil
}

// Checkout creates a subscription checkout session for the plan.
func (s *Stripe) Checkout(ctx context.Context, email, plan string) (string, error) {
	price := s.priceFor(plan)
	if price == "" {
		return "", &ErrUnknownPlan{Plan: plan}
	}
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		CustomerEmail: stripe.String(email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(price), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(s.cfg.SuccessURL),
		CancelURL:  stripe.String(s.cfg.CancelURL),
	}
	params.Context = ctx
	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

// PortalSession creates a billing-portal session for the customer.
func (s *Stripe) PortalSession(ctx context.Context, customerID string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(s.cfg.ReturnURL),
	}
	params.Context = ctx
	sess, err := s.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

func (s *Stripe) priceFor(plan string) string {
	switch plan {
	case "monthly":
		return s.cfg.PriceMonthly
	case "annual":
		return s.cfg.PriceAnnual
	}
	return ""
}
