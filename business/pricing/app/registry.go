// Package app implements provider selection over the configured quote
// providers.
package app

import (
	"context"
	"sort"

	"github.com/crossarb/crossarb/business/pricing/domain"
	"github.com/crossarb/crossarb/internal/apperror"
)

// Adapter issues a quote request against one provider's API and maps
// the response into the canonical PriceQuote. Transport and payload
// failures come back as coded errors, never panics.
type Adapter interface {
	ProviderID() string
	Quote(ctx context.Context, req domain.QuoteRequest) (*domain.PriceQuote, error)
}

// Registry holds the configured providers and their adapters.
// Selection is pure: no state changes, no hidden randomness.
type Registry struct {
	providers []domain.ProviderConfig
	adapters  map[string]Adapter
}

// NewRegistry creates a registry over the given provider configs.
// Providers are kept sorted ascending by priority, ties broken by id so
// selection stays deterministic.
func NewRegistry(providers []domain.ProviderConfig) *Registry {
	sorted := make([]domain.ProviderConfig, len(providers))
	copy(sorted, providers)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].ID < sorted[j].ID
	})

	return &Registry{
		providers: sorted,
		adapters:  make(map[string]Adapter),
	}
}

// Register attaches an adapter implementation to its provider config.
func (r *Registry) Register(a Adapter) error {
	id := a.ProviderID()
	for _, p := range r.providers {
		if p.ID == id {
			r.adapters[id] = a
			return nil
		}
	}
	return apperror.New(apperror.CodeConfigurationError,
		apperror.WithContext(map[string]any{"provider": id}))
}

// Providers returns all configured providers in priority order.
func (r *Registry) Providers() []domain.ProviderConfig {
	out := make([]domain.ProviderConfig, len(r.providers))
	copy(out, r.providers)
	return out
}

// Eligible returns the enabled providers supporting chainID, ascending
// by priority.
func (r *Registry) Eligible(chainID int64) []domain.ProviderConfig {
	var eligible []domain.ProviderConfig
	for _, p := range r.providers {
		if p.Enabled && p.SupportsChain(chainID) {
			eligible = append(eligible, p)
		}
	}
	return eligible
}

// Select picks the provider for a chain. A preferred id wins when it is
// eligible; otherwise the first eligible provider by priority is used.
func (r *Registry) Select(chainID int64, preferredID string) (domain.ProviderConfig, error) {
	eligible := r.Eligible(chainID)
	if len(eligible) == 0 {
		return domain.ProviderConfig{}, apperror.New(apperror.CodeNoProviderAvailable,
			apperror.WithContext(map[string]any{"chain_id": chainID}))
	}

	if preferredID != "" {
		for _, p := range eligible {
			if p.ID == preferredID {
				return p, nil
			}
		}
	}

	return eligible[0], nil
}

// Adapter returns the registered adapter for a provider id.
func (r *Registry) Adapter(providerID string) (Adapter, error) {
	a, ok := r.adapters[providerID]
	if !ok {
		return nil, apperror.New(apperror.CodeNoProviderAvailable,
			apperror.WithContext(map[string]any{"provider": providerID}))
	}
	return a, nil
}
