package provider

import (
	"context"

	"gateway-service/internal/auth"
	"gateway-service/internal/auth/tokencache"
	"gateway-service/internal/logger"
	"gateway-service/internal/metrics"
)

// Orchestrator drives a provider login: code exchange, profile fetch and the
// best-effort provider token cache write. Token minting stays with the caller.
type Orchestrator struct {
	registry *Registry
	cache    tokencache.Store
}

// NewOrchestrator wires providers to the token cache. cache may be nil, in
// which case provider tokens are dropped after the profile fetch.
func NewOrchestrator(registry *Registry, cache tokencache.Store) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		cache:    cache,
	}
}

func (o *Orchestrator) Providers() []auth.Provider {
	return o.registry.Names()
}

func (o *Orchestrator) AuthCodeURL(name auth.Provider) (string, error) {
	p, err := o.registry.Get(name)
	if err != nil {
		return "", err
	}
	return p.AuthCodeURL(), nil
}

// LoginWithCode exchanges code, fetches the profile and caches the provider
// token under the profile's external id.
func (o *Orchestrator) LoginWithCode(
	ctx context.Context,
	name auth.Provider,
	code string,
	params ExchangeParams,
) (*auth.Identity, error) {
	p, err := o.registry.Get(name)
	if err != nil {
		return nil, err
	}

	tok, err := p.ExchangeCode(ctx, code, params)
	if err != nil {
		observeCall(name, "exchange", err)
		return nil, err
	}
	observeCall(name, "exchange", nil)

	id, err := p.FetchProfile(ctx, tok.AccessToken)
	observeCall(name, "profile", err)
	if err != nil {
		return nil, err
	}

	if o.cache != nil {
		o.cache.Store(ctx, tokencache.Record{
			Provider:     name,
			ExternalID:   id.ExternalID,
			AccessToken:  tok.AccessToken,
			RefreshToken: tok.RefreshToken,
			TokenType:    tok.TokenType,
			Scope:        Scope(tok),
			ExpiresIn:    ExpiresIn(tok),
		})
	}

	return id, nil
}

// LoginWithAccessToken trusts a client-supplied provider access token and
// only resolves the profile. Nothing is cached.
func (o *Orchestrator) LoginWithAccessToken(
	ctx context.Context,
	name auth.Provider,
	accessToken string,
) (*auth.Identity, error) {
	p, err := o.registry.Get(name)
	if err != nil {
		return nil, err
	}

	id, err := p.FetchProfile(ctx, accessToken)
	observeCall(name, "profile", err)
	if err != nil {
		return nil, err
	}
	return id, nil
}

func observeCall(name auth.Provider, step string, err error) {
	if err == nil {
		metrics.ProviderCallsTotal.WithLabelValues(name.String(), step, "ok").Inc()
		return
	}
	metrics.ProviderCallsTotal.WithLabelValues(name.String(), step, "error").Inc()
	logger.Error("provider call failed", map[string]any{
		"provider": name.String(),
		"step":     step,
		"error":    err.Error(),
	})
}
