// Package token mints and verifies the two bearer-token kinds the backend
// issues: long-lived session tokens proving a completed sign-in, and
// short-lived license tokens asserting current entitlement.
package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/errs"
)

// SessionClaims is carried by session tokens.
type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// LicenseClaims is carried by license tokens.
type LicenseClaims struct {
	Email         string `json:"email"`
	Premium       bool   `json:"premium"`
	Grandfathered bool   `json:"grandfathered"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 tokens with a single process-wide secret.
// There is no revocation list: validity is signature plus expiry, nothing else.
type Issuer struct {
	secret           []byte
	sessionTTL       time.Duration
	licenseTTL       time.Duration
	grandfatheredTTL time.Duration
}

// NewIssuer constructs an Issuer.
func NewIssuer(secret []byte, sessionTTL, licenseTTL, grandfatheredTTL time.Duration) *Issuer {
	return &Issuer{
		secret:           secret,
		sessionTTL:       sessionTTL,
		licenseTTL:       licenseTTL,
		grandfatheredTTL: grandfatheredTTL,
	}
}

// IssueSession creates a signed session token for the (lowercased) email.
func (i *Issuer) IssueSession(email string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Email: strings.ToLower(email),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.sessionTTL)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(i.secret)
}

// IssueLicense creates a signed license token. Grandfathered licenses live
// far longer than the normal refresh cadence.
func (i *Issuer) IssueLicense(email string, premium, grandfathered bool) (string, error) {
	ttl := i.licenseTTL
	if grandfathered {
		ttl = i.grandfatheredTTL
	}
	now := time.Now()
	claims := LicenseClaims{
		Email:         strings.ToLower(email),
		Premium:       premium,
		Grandfathered: grandfathered,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(i.secret)
}

// VerifySession validates a session token and returns its email claim.
// Any parse, signature or expiry failure maps to ErrUnauthorized.
func (i *Issuer) VerifySession(tokenString string) (string, error) {
	var claims SessionClaims
	if err := i.parse(tokenString, &claims); err != nil {
		return "", err
	}
	if claims.Email == "" {
		return "", errs.ErrUnauthorized
	}
	return claims.Email, nil
}

// VerifyLicense validates a license token and returns its claims.
func (i *Issuer) VerifyLicense(tokenString string) (*LicenseClaims, error) {
	var claims LicenseClaims
	if err := i.parse(tokenString, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (i *Issuer) parse(tokenString string, claims jwt.Claims) error {
	tok, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !tok.Valid {
		return errs.ErrUnauthorized
	}
	return nil
}
