// Package app orchestrates round-trip arbitrage quote composition.
package app

import (
	"context"

	marketdomain "github.com/crossarb/crossarb/business/market/domain"
	pricingapp "github.com/crossarb/crossarb/business/pricing/app"
	pricingdomain "github.com/crossarb/crossarb/business/pricing/domain"
)

// TokenResolver resolves logical chain names and token symbols.
type TokenResolver interface {
	ResolveChainID(ctx context.Context, name string) (int64, error)
	ResolveToken(ctx context.Context, chainName, symbol string) (marketdomain.TokenDescriptor, error)
}

// ProviderSelector picks quote providers and their adapters.
type ProviderSelector interface {
	Select(chainID int64, preferredID string) (pricingdomain.ProviderConfig, error)
	Eligible(chainID int64) []pricingdomain.ProviderConfig
	Adapter(providerID string) (pricingapp.Adapter, error)
}
