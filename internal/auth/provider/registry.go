package provider

import (
	"fmt"

	"gateway-service/internal/auth"
)

// Registry holds all configured OAuth providers and allows
// lookup by provider name. It performs no auth logic itself.
type Registry struct {
	providers map[auth.Provider]OAuthProvider
	order     []auth.Provider
}

// NewRegistry registers the given OAuth providers by name.
// Provider names must be unique; a later duplicate replaces the earlier one.
func NewRegistry(list ...OAuthProvider) *Registry {
	r := &Registry{providers: make(map[auth.Provider]OAuthProvider)}
	for _, p := range list {
		if _, ok := r.providers[p.Name()]; !ok {
			r.order = append(r.order, p.Name())
		}
		r.providers[p.Name()] = p
	}
	return r
}

// Get returns the OAuth provider by name or an error if not registered.
func (r *Registry) Get(name auth.Provider) (OAuthProvider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown oauth provider: %s", name)
	}
	return p, nil
}

// Names lists registered providers in registration order.
func (r *Registry) Names() []auth.Provider {
	out := make([]auth.Provider, len(r.order))
	copy(out, r.order)
	return out
}
