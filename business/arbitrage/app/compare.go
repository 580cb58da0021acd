package app

import (
	"context"
	"sync"

	pricingdomain "github.com/crossarb/crossarb/business/pricing/domain"
	"github.com/crossarb/crossarb/internal/baseunit"
	"github.com/shopspring/decimal"
)

// ProviderComparison is one provider's side-by-side quote outcome.
// Quote is nil and Err set when that provider's call failed; one
// provider failing never cancels the others.
type ProviderComparison struct {
	ProviderID string
	Price      decimal.Decimal
	Quote      *pricingdomain.PriceQuote
	Err        error
}

// CompareProviders fans the same quote request out to every eligible
// provider on a chain and collects the results in priority order. Each
// call captures its own failure independently.
func (c *Composer) CompareProviders(ctx context.Context, chain, tokenIn, tokenOut, amount string) ([]ProviderComparison, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "compare_providers")
	defer span.End()

	chainID, err := c.resolver.ResolveChainID(ctx, chain)
	if err != nil {
		span.NoticeError(err)
		return nil, err
	}

	in, err := c.resolver.ResolveToken(ctx, chain, tokenIn)
	if err != nil {
		span.NoticeError(err)
		return nil, err
	}
	out, err := c.resolver.ResolveToken(ctx, chain, tokenOut)
	if err != nil {
		span.NoticeError(err)
		return nil, err
	}

	amountIn, err := baseunit.ToBaseUnits(amount, in.Decimals)
	if err != nil {
		span.NoticeError(err)
		return nil, err
	}

	req := pricingdomain.QuoteRequest{
		ChainID:          chainID,
		TokenIn:          in.Address,
		TokenOut:         out.Address,
		TokenInDecimals:  in.Decimals,
		TokenOutDecimals: out.Decimals,
		AmountIn:         amountIn,
	}

	eligible := c.registry.Eligible(chainID)
	comparisons := make([]ProviderComparison, len(eligible))

	var wg sync.WaitGroup
	for i, provider := range eligible {
		wg.Add(1)
		go func(i int, providerID string) {
			defer wg.Done()
			comparisons[i] = c.compareOne(ctx, providerID, req)
		}(i, provider.ID)
	}
	wg.Wait()

	return comparisons, nil
}

func (c *Composer) compareOne(ctx context.Context, providerID string, req pricingdomain.QuoteRequest) ProviderComparison {
	comparison := ProviderComparison{ProviderID: providerID}

	adapter, err := c.registry.Adapter(providerID)
	if err != nil {
		comparison.Err = err
		return comparison
	}

	quote, err := adapter.Quote(ctx, req)
	if err != nil {
		c.log.Warn(ctx, "comparison quote failed", "provider", providerID, "error", err)
		comparison.Err = err
		return comparison
	}

	comparison.Quote = quote
	comparison.Price = quote.SwapPrice
	return comparison
}
