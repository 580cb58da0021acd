package app

import (
	"context"
	"errors"
	"testing"

	"github.com/crossarb/crossarb/business/pricing/domain"
	"github.com/crossarb/crossarb/internal/apperror"
)

func chains(ids ...int64) map[int64]struct{} {
	m := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func testProviders() []domain.ProviderConfig {
	return []domain.ProviderConfig{
		{ID: "paraswap", Enabled: true, Priority: 3, SupportedChainIDs: chains(1, 137)},
		{ID: "sushiswap", Enabled: true, Priority: 1, SupportedChainIDs: chains(1, 137, 42161)},
		{ID: "oneinch", Enabled: true, Priority: 2, SupportedChainIDs: chains(1, 56)},
		{ID: "kyberswap", Enabled: false, Priority: 0, SupportedChainIDs: chains(1)},
	}
}

func TestRegistryEligible(t *testing.T) {
	r := NewRegistry(testProviders())

	t.Run("filters by chain and enabled, orders by priority", func(t *testing.T) {
		eligible := r.Eligible(1)
		if len(eligible) != 3 {
			t.Fatalf("expected 3 eligible providers, got %d", len(eligible))
		}
		want := []string{"sushiswap", "oneinch", "paraswap"}
		for i, id := range want {
			if eligible[i].ID != id {
				t.Errorf("position %d: expected %s, got %s", i, id, eligible[i].ID)
			}
		}
	})

	t.Run("disabled provider never eligible", func(t *testing.T) {
		for _, p := range r.Eligible(1) {
			if p.ID == "kyberswap" {
				t.Error("disabled provider returned as eligible")
			}
		}
	})

	t.Run("unsupported chain yields empty list", func(t *testing.T) {
		if eligible := r.Eligible(999); len(eligible) != 0 {
			t.Errorf("expected no eligible providers, got %d", len(eligible))
		}
	})
}

func TestRegistrySelect(t *testing.T) {
	r := NewRegistry(testProviders())

	t.Run("no preference returns lowest priority", func(t *testing.T) {
		p, err := r.Select(1, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ID != "sushiswap" {
			t.Errorf("expected sushiswap, got %s", p.ID)
		}
	})

	t.Run("eligible preference wins", func(t *testing.T) {
		p, err := r.Select(1, "paraswap")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ID != "paraswap" {
			t.Errorf("expected paraswap, got %s", p.ID)
		}
	})

	t.Run("ineligible preference falls back to priority order", func(t *testing.T) {
		p, err := r.Select(137, "oneinch")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ID != "sushiswap" {
			t.Errorf("expected sushiswap, got %s", p.ID)
		}
	})

	t.Run("no eligible provider fails with chain id", func(t *testing.T) {
		_, err := r.Select(999, "")
		if !apperror.IsCode(err, apperror.CodeNoProviderAvailable) {
			t.Fatalf("expected CodeNoProviderAvailable, got %v", err)
		}
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			t.Fatalf("expected *apperror.AppError, got %T", err)
		}
		if appErr.Context["chain_id"] != int64(999) {
			t.Errorf("expected chain_id in error context, got %v", appErr.Context)
		}
	})

	t.Run("selection is deterministic", func(t *testing.T) {
		providers := []domain.ProviderConfig{
			{ID: "b", Enabled: true, Priority: 2, SupportedChainIDs: chains(1)},
			{ID: "a", Enabled: true, Priority: 1, SupportedChainIDs: chains(1)},
		}
		reg := NewRegistry(providers)
		for i := 0; i < 100; i++ {
			p, err := reg.Select(1, "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.ID != "a" {
				t.Fatalf("iteration %d: expected priority-1 provider, got %s", i, p.ID)
			}
		}
	})
}

func TestRegistryAdapter(t *testing.T) {
	r := NewRegistry(testProviders())

	t.Run("register unknown provider fails", func(t *testing.T) {
		err := r.Register(stubAdapter{id: "ghost"})
		if !apperror.IsCode(err, apperror.CodeConfigurationError) {
			t.Errorf("expected CodeConfigurationError, got %v", err)
		}
	})

	t.Run("registered adapter is returned", func(t *testing.T) {
		if err := r.Register(stubAdapter{id: "sushiswap"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		a, err := r.Adapter("sushiswap")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.ProviderID() != "sushiswap" {
			t.Errorf("wrong adapter: %s", a.ProviderID())
		}
	})

	t.Run("missing adapter fails", func(t *testing.T) {
		_, err := r.Adapter("paraswap")
		if !apperror.IsCode(err, apperror.CodeNoProviderAvailable) {
			t.Errorf("expected CodeNoProviderAvailable, got %v", err)
		}
	})
}

type stubAdapter struct {
	id string
}

func (s stubAdapter) ProviderID() string { return s.id }

func (s stubAdapter) Quote(ctx context.Context, req domain.QuoteRequest) (*domain.PriceQuote, error) {
	return &domain.PriceQuote{Status: domain.QuoteSuccess, ProviderID: s.id}, nil
}
