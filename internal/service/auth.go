// Package service contains application services for sign-in and entitlement.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/errs"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/limiter"
	mailer "github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/mail"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/model"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/repository"
	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/token"
)

// AuthService drives the magic-link state machine: link request, link click,
// and the extension's poll for the resulting session token.
type AuthService struct {
	requests repository.AuthRequestStore
	lim      limiter.Email
	sender   mailer.Sender
	tokens   *token.Issuer
	baseURL  string
	linkTTL  time.Duration
	log      *zap.Logger
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(
	requests repository.AuthRequestStore,
	lim limiter.Email,
	sender mailer.Sender,
	tokens *token.Issuer,
	baseURL string,
	linkTTL time.Duration,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		requests: requests,
		lim:      lim,
		sender:   sender,
		tokens:   tokens,
		baseURL:  baseURL,
		linkTTL:  linkTTL,
		log:      log,
	}
}

// RequestLink validates the address, charges the rate limiter, creates the
// request record and emails the link. A failed send deletes the record so no
// orphan survives the error.
func (s *AuthService) RequestLink(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return "", errs.ErrInvalidEmail
	}

	res, err := s.lim.CheckAndIncrement(ctx, email)
	if err != nil {
		return "", err
	}
	if !res.Allowed {
		return "", &errs.RateLimitError{RetryAfter: time.Until(res.ResetAt)}
	}

	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	if _, err := s.requests.Create(ctx, id, email); err != nil {
		return "", err
	}

	link := fmt.Sprintf("%s/auth/verify?token=%s", strings.TrimRight(s.baseURL, "/"), url.QueryEscape(id.String()))
	if err := s.sender.SendMagicLink(ctx, email, link, s.linkTTL); err != nil {
		// Roll back so an undeliverable address leaves no pending record.
		_ = s.requests.Delete(ctx, id)
		return "", fmt.Errorf("send magic link: %w", err)
	}

	s.log.Info("magic link sent", zap.String("request_id", id.String()))
	return id.String(), nil
}

// Verify handles the browser's link click. Repeat clicks on an already
// verified request succeed again without re-minting a token or refunding the
// limiter a second time.
func (s *AuthService) Verify(ctx context.Context, rawID string) (string, error) {
	id, err := uuid.FromString(rawID)
	if err != nil {
		return "", errs.ErrNotFound
	}
	req, err := s.requests.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if req.Status == model.StatusVerified {
		return req.Email, nil
	}
	// The click window is stricter than the request lifetime: the poller can
	// still see the record after the link itself has lapsed.
	if time.Since(req.CreatedAt) > s.linkTTL {
		return "", errs.ErrExpired
	}

	sessionToken, err := s.tokens.IssueSession(req.Email)
	if err != nil {
		return "", err
	}
	if err := s.requests.MarkVerified(ctx, id, sessionToken); err != nil {
		return "", err
	}

	// Refund one rate-limit unit, once per request, on the pending->verified
	// transition only.
	if err := s.lim.Decrement(ctx, req.Email); err != nil {
		s.log.Warn("rate limit refund failed", zap.Error(err))
	}

	s.log.Info("magic link verified", zap.String("request_id", id.String()))
	return req.Email, nil
}

// Poll reports request state to the extension. The first poll that observes
// status=verified consumes the record: the token is delivered at most once,
// and a second poll for the same id sees not-found.
func (s *AuthService) Poll(ctx context.Context, rawID string) (*model.PollResult, error) {
	id, err := uuid.FromString(rawID)
	if err != nil {
		return nil, errs.ErrNotFound
	}
	req, err := s.requests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != model.StatusVerified {
		return &model.PollResult{Status: model.StatusPending}, nil
	}

	email, sessionToken, err := s.requests.Consume(ctx, id)
	if err != nil {
		// A racing poller won the delete; for this caller the request no
		// longer exists.
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &model.PollResult{
		Status:       model.StatusVerified,
		Email:        email,
		SessionToken: sessionToken,
	}, nil
}
