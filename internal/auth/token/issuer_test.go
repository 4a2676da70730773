package token

import (
	"bytes"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gateway-service/internal/auth"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestIssuer(secret string) (*Issuer, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)}
	return NewIssuer(Config{
		Secret:     secret,
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
		Now:        clock.Now,
	}), clock
}

func TestDeriveKey_Deterministic(t *testing.T) {
	secrets := []string{"", "abc", "exactly-thirty-two-bytes-secret!", "a-much-longer-secret-that-exceeds-the-minimum-length"}
	for _, s := range secrets {
		first := DeriveKey(s)
		second := DeriveKey(s)
		assert.True(t, bytes.Equal(first, second), "key for %q must be stable", s)
		assert.GreaterOrEqual(t, len(first), minKeyLength)
	}
}

func TestDeriveKey_EmptySecretUsesDevelopmentDefault(t *testing.T) {
	assert.Equal(t, []byte(developmentSecret), DeriveKey(""))
}

func TestDeriveKey_ShortSecretIsTiled(t *testing.T) {
	key := DeriveKey("abc")
	require.Len(t, key, 32)
	assert.Equal(t, []byte("abcabcabcabcabcabcabcabcabcabcab"), key)
}

func TestMintVerify_AccessRoundTrip(t *testing.T) {
	issuer, _ := newTestIssuer("short")

	raw, err := issuer.MintAccess(auth.Subject(4242), "user@example.com", "Victoria")
	require.NoError(t, err)

	claims, err := issuer.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, auth.Subject(4242), claims.UserID)
	assert.Equal(t, "4242", claims.Subject)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "Victoria", claims.DisplayName)
	assert.Equal(t, TypeAccess, claims.Type)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestMintVerify_Refresh(t *testing.T) {
	issuer, _ := newTestIssuer("")

	raw, err := issuer.MintRefresh(auth.Subject(7))
	require.NoError(t, err)

	claims, err := issuer.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, TypeRefresh, claims.Type)
	assert.Empty(t, claims.Email)
	assert.Equal(t, 24*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestVerify_Expired(t *testing.T) {
	issuer, clock := newTestIssuer("secret")

	raw, err := issuer.MintAccess(auth.Subject(1), "a@b.c", "n")
	require.NoError(t, err)

	clock.t = clock.t.Add(59 * time.Minute)
	_, err = issuer.Verify(raw)
	require.NoError(t, err)

	clock.t = clock.t.Add(2 * time.Minute)
	_, err = issuer.Verify(raw)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_InvalidSignature(t *testing.T) {
	issuer, clock := newTestIssuer("secret-one")
	other := NewIssuer(Config{Secret: "secret-two", Now: clock.Now})

	raw, err := other.MintAccess(auth.Subject(1), "", "")
	require.NoError(t, err)

	_, err = issuer.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_Malformed(t *testing.T) {
	issuer, _ := newTestIssuer("secret")

	_, err := issuer.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	issuer, clock := newTestIssuer("secret")

	claims := Claims{
		UserID: 1,
		Type:   TypeAccess,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwtlib.NewNumericDate(clock.t.Add(time.Hour)),
		},
	}
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS512, claims).SignedString(DeriveKey("secret"))
	require.NoError(t, err)

	_, err = issuer.Verify(raw)
	assert.Error(t, err)
}
