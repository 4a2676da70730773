// Package token mints and verifies the gateway's own session tokens.
//
// Tokens are HS256 JWTs and are stateless: validity depends only on the
// signature and the expiry claim.
package token

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"gateway-service/internal/auth"
	"gateway-service/internal/logger"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"

	minKeyLength = 32

	// developmentSecret is used when no secret is configured.
	developmentSecret = "default-jwt-secret-key-for-development-only-change-in-production-32bytes"
)

var (
	ErrInvalidSignature = errors.New("token: invalid signature")
	ErrExpired          = errors.New("token: expired")
	ErrMalformed        = errors.New("token: malformed")
)

// Claims is the payload of a session token.
type Claims struct {
	UserID      auth.Subject `json:"userId"`
	Email       string       `json:"email,omitempty"`
	DisplayName string       `json:"nickname,omitempty"`
	Type        string       `json:"type"`
	jwtlib.RegisteredClaims
}

type Config struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// Issuer signs and verifies session tokens. The key is derived once in
// NewIssuer and only read afterwards, so an Issuer is safe for concurrent use.
type Issuer struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(cfg Config) *Issuer {
	if cfg.Secret == "" {
		logger.Warn("JWT secret not configured, using development key", nil)
	} else if len(cfg.Secret) < minKeyLength {
		logger.Warn("JWT secret shorter than 32 bytes, padding", map[string]any{
			"length": len(cfg.Secret),
		})
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Issuer{
		key:        DeriveKey(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        cfg.Now,
	}
}

// DeriveKey turns a configured secret into an HMAC key of at least 32 bytes.
// An empty secret selects the development default; shorter secrets are tiled.
func DeriveKey(secret string) []byte {
	if secret == "" {
		secret = developmentSecret
	}
	b := []byte(secret)
	if len(b) >= minKeyLength {
		return b
	}
	key := make([]byte, minKeyLength)
	for i := range key {
		if len(b) == 0 {
			key[i] = byte(i % 256)
			continue
		}
		key[i] = b[i%len(b)]
	}
	return key
}

func (i *Issuer) MintAccess(subject auth.Subject, email, displayName string) (string, error) {
	return i.mint(Claims{
		UserID:      subject,
		Email:       email,
		DisplayName: displayName,
		Type:        TypeAccess,
	}, i.accessTTL)
}

func (i *Issuer) MintRefresh(subject auth.Subject) (string, error) {
	return i.mint(Claims{
		UserID: subject,
		Type:   TypeRefresh,
	}, i.refreshTTL)
}

func (i *Issuer) mint(claims Claims, ttl time.Duration) (string, error) {
	now := i.now()
	claims.RegisteredClaims = jwtlib.RegisteredClaims{
		Subject:   claims.UserID.String(),
		IssuedAt:  jwtlib.NewNumericDate(now),
		ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("token: sign %s token: %w", claims.Type, err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the token claims.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	var claims Claims
	_, err := jwtlib.ParseWithClaims(raw, &claims, func(*jwtlib.Token) (interface{}, error) {
		return i.key, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(i.now),
		jwtlib.WithExpirationRequired(),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return nil, ErrExpired
	case errors.Is(err, jwtlib.ErrTokenSignatureInvalid):
		return nil, ErrInvalidSignature
	default:
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if claims.Subject != "" && claims.Subject != claims.UserID.String() {
		return nil, fmt.Errorf("%w: subject mismatch", ErrMalformed)
	}
	return &claims, nil
}
