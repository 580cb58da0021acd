// Package app implements token and chain resolution over metadata feeds.
package app

import (
	"context"

	"github.com/crossarb/crossarb/business/market/domain"
)

// ChainFeed fetches the dynamic chain list from an external source.
type ChainFeed interface {
	FetchChains(ctx context.Context) ([]domain.ChainDescriptor, error)
}

// TokenFeed fetches token metadata for one chain from an external source.
type TokenFeed interface {
	FetchTokens(ctx context.Context, chainID int64) ([]domain.TokenDescriptor, error)
}
