package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/errs"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/grandfathered"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/payment"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/repository"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/token"
)

// LicenseService answers entitlement checks and delegates checkout/portal
// session creation to the payment provider.
type LicenseService struct {
	cache         repository.SubscriptionCache
	grandfathered *grandfathered.Set
	provider      payment.Provider
	tokens        *token.Issuer
	log           *zap.Logger
}

// NewLicenseService constructs LicenseService.
func NewLicenseService(
	cache repository.SubscriptionCache,
	gf *grandfathered.Set,
	provider payment.Provider,
	tokens *token.Issuer,
	log *zap.Logger,
) *LicenseService {
	return &LicenseService{
		cache:         cache,
		grandfathered: gf,
		provider:      provider,
		tokens:        tokens,
		log:           log,
	}
}

// Check resolves the email's entitlement and mints a license token. Order:
// grandfathered registry, then cache, then a live provider query whose
// result repopulates the cache.
func (s *LicenseService) Check(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(email)

	if s.grandfathered.Contains(email) {
		return s.tokens.IssueLicense(email, true, true)
	}

	if entry, err := s.cache.Read(ctx, email); err == nil {
		return s.tokens.IssueLicense(email, entry.Premium, false)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return "", err
	}

	premium, customerID, err := s.provider.SubscriptionStatus(ctx, email)
	if err != nil {
		return "", err
	}
	if err := s.cache.Write(ctx, email, premium, customerID); err != nil {
		// The check itself succeeded; a failed populate only costs the next
		// caller a provider query.
		s.log.Warn("subscription cache populate failed", zap.Error(err))
	}
	return s.tokens.IssueLicense(email, premium, false)
}

// Checkout creates a provider checkout session for the plan.
func (s *LicenseService) Checkout(ctx context.Context, email, plan string) (string, error) {
	return s.provider.Checkout(ctx, email, plan)
}

// Portal creates a billing-portal session. The customer reference comes from
// the cache (staleness is fine, it is only a reference) or a provider
// lookup; no customer on file is ErrNotFound.
func (s *LicenseService) Portal(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(email)

	customerID := ""
	if entry, err := s.cache.ReadAny(ctx, email); err == nil && entry.CustomerID != "" {
		customerID = entry.CustomerID
	} else {
		_, id, perr := s.provider.SubscriptionStatus(ctx, email)
		if perr != nil {
			return "", perr
		}
		customerID = id
	}
	if customerID == "" {
		return "", errs.ErrNotFound
	}
	return s.provider.PortalSession(ctx, customerID)
}
