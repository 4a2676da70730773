package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"gateway-service/internal/auth"
)

// ExchangeParams carries provider-specific inputs to the code exchange.
// Only Naver uses State today.
type ExchangeParams struct {
	State string
}

// OAuthProvider defines the contract every external identity provider
// must implement. Implementations return identity facts only and must not
// mint session tokens or touch the token cache.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "kakao").
	Name() auth.Provider

	// AuthCodeURL returns the URL the browser is sent to for consent.
	AuthCodeURL() string

	// ExchangeCode trades an authorization code for provider tokens.
	// Failures are returned as *ExchangeError.
	ExchangeCode(ctx context.Context, code string, p ExchangeParams) (*oauth2.Token, error)

	// FetchProfile resolves an access token to a normalized identity.
	// Failures are returned as *ProfileError.
	FetchProfile(ctx context.Context, accessToken string) (*auth.Identity, error)
}

var (
	ErrExchange = errors.New("provider token exchange failed")
	ErrProfile  = errors.New("provider profile fetch failed")
)

// ExchangeError reports a failed code exchange. errors.Is(err, ErrExchange)
// holds for every ExchangeError.
type ExchangeError struct {
	Provider auth.Provider
	Message  string
	Err      error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("%s token exchange failed: %s", e.Provider, e.Message)
}

func (e *ExchangeError) Is(target error) bool { return target == ErrExchange }

func (e *ExchangeError) Unwrap() error { return e.Err }

// ProfileError reports a failed or rejected profile lookup.
type ProfileError struct {
	Provider auth.Provider
	Message  string
	Err      error
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("%s profile fetch failed: %s", e.Provider, e.Message)
}

func (e *ProfileError) Is(target error) bool { return target == ErrProfile }

func (e *ProfileError) Unwrap() error { return e.Err }

// NewHTTPClient returns the client used for all calls to one provider.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// Exchange runs the authorization_code grant against cfg using client and
// normalizes failures into *ExchangeError. Providers that answer HTTP 200
// with an in-band "error" field are reported the same way as HTTP failures.
func Exchange(
	ctx context.Context,
	client *http.Client,
	name auth.Provider,
	cfg *oauth2.Config,
	code string,
	opts ...oauth2.AuthCodeOption,
) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, client)

	tok, err := cfg.Exchange(ctx, code, opts...)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			msg := re.ErrorDescription
			if msg == "" {
				msg = re.ErrorCode
			}
			if msg == "" && re.Response != nil {
				msg = re.Response.Status
			}
			return nil, &ExchangeError{Provider: name, Message: msg, Err: err}
		}
		return nil, &ExchangeError{Provider: name, Message: err.Error(), Err: err}
	}
	return tok, nil
}

// GetJSON performs a bearer-authenticated GET and decodes the JSON body into
// out. Non-2xx answers are returned as errors carrying a body excerpt.
func GetJSON(ctx context.Context, client *http.Client, url, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: %s", resp.Status, truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// ExpiresIn reports the token lifetime in seconds as sent by the provider,
// or 0 when the provider did not say.
func ExpiresIn(tok *oauth2.Token) int64 {
	if tok == nil {
		return 0
	}
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case json.Number:
		n, _ := v.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	if !tok.Expiry.IsZero() {
		if d := time.Until(tok.Expiry); d > 0 {
			return int64(d.Seconds())
		}
	}
	return 0
}

// Scope returns the granted scope string, if any.
func Scope(tok *oauth2.Token) string {
	if tok == nil {
		return ""
	}
	s, _ := tok.Extra("scope").(string)
	return s
}

// TokenPrefix shortens a credential for logging.
func TokenPrefix(token string) string {
	return truncate(token, 20)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
