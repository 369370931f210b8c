package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lawrencehook/remove-youtube-suggestions-sub000/internal/errs"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestIssuer() *Issuer {
	return NewIssuer(testSecret, 30*24*time.Hour, 3*24*time.Hour, 730*24*time.Hour)
}

func TestSessionRoundTrip(t *testing.T) {
	t.Parallel()
	i := newTestIssuer()

	tok, err := i.IssueSession("Donor@Example.com")
	require.NoError(t, err)

	email, err := i.VerifySession(tok)
	require.NoError(t, err)
	require.Equal(t, "donor@example.com", email)
}

func TestLicenseClaims(t *testing.T) {
	t.Parallel()
	i := newTestIssuer()

	tok, err := i.IssueLicense("User@Example.com", true, false)
	require.NoError(t, err)

	claims, err := i.VerifyLicense(tok)
	require.NoError(t, err)
	require.Equal(t, "user@example.com", claims.Email)
	require.True(t, claims.Premium)
	require.False(t, claims.Grandfathered)

	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	require.Equal(t, 3*24*time.Hour, ttl)
}

func TestGrandfatheredLicenseLifetime(t *testing.T) {
	t.Parallel()
	i := newTestIssuer()

	tok, err := i.IssueLicense("donor@example.com", true, true)
	require.NoError(t, err)

	claims, err := i.VerifyLicense(tok)
	require.NoError(t, err)
	require.True(t, claims.Premium)
	require.True(t, claims.Grandfathered)

	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	require.Equal(t, 730*24*time.Hour, ttl)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	t.Parallel()
	i := newTestIssuer()
	other := NewIssuer([]byte("another-secret-key-of-enough-len"), time.Hour, time.Hour, time.Hour)

	tok, err := other.IssueSession("user@example.com")
	require.NoError(t, err)

	_, err = i.VerifySession(tok)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()
	short := NewIssuer(testSecret, -time.Minute, -time.Minute, -time.Minute)

	tok, err := short.IssueSession("user@example.com")
	require.NoError(t, err)

	_, err = short.VerifySession(tok)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	t.Parallel()
	i := newTestIssuer()

	_, err := i.VerifySession("not-a-jwt")
	require.ErrorIs(t, err, errs.ErrUnauthorized)
}
