package app

import (
	"context"
	"fmt"

	"github.com/crossarb/crossarb/business/arbitrage/domain"
	marketdomain "github.com/crossarb/crossarb/business/market/domain"
	pricingdomain "github.com/crossarb/crossarb/business/pricing/domain"
	"github.com/crossarb/crossarb/internal/apm"
	"github.com/crossarb/crossarb/internal/apperror"
	"github.com/crossarb/crossarb/internal/baseunit"
	"github.com/crossarb/crossarb/internal/logger"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const tracerName = "arbitrage_composer"

// Composer orchestrates a two-leg round trip: source-chain swap,
// target-chain swap, then the profit model. The two legs are strictly
// sequential because leg 2 consumes leg 1's output. No retries and no
// outer timeout; each adapter call is bounded by its provider config.
type Composer struct {
	resolver TokenResolver
	registry ProviderSelector
	log      logger.LoggerInterface
	tracer   apm.Tracer
}

// NewComposer creates a Composer.
func NewComposer(resolver TokenResolver, registry ProviderSelector, log logger.LoggerInterface) *Composer {
	return &Composer{
		resolver: resolver,
		registry: registry,
		log:      log,
		tracer:   apm.NewTracer(tracerName),
	}
}

// legDescriptors holds the four token resolutions of one composition.
type legDescriptors struct {
	sourceChainID int64
	targetChainID int64
	srcIn         marketdomain.TokenDescriptor // source token on source chain
	srcOut        marketdomain.TokenDescriptor // target token on source chain
	tgtIn         marketdomain.TokenDescriptor // target token on target chain
	tgtOut        marketdomain.TokenDescriptor // source token on target chain
}

// ComposeArbitrage runs one full round-trip composition for a strategy.
// Resolution failures and leg failures are fatal; no partial result is
// ever returned.
func (c *Composer) ComposeArbitrage(ctx context.Context, strategy domain.Strategy) (*domain.ArbitrageResult, error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "compose_arbitrage")
	defer span.End()

	span.SetAttributes(
		attribute.String("source_chain", strategy.SourceChain),
		attribute.String("target_chain", strategy.TargetChain),
		attribute.String("pair", strategy.SourceToken+"/"+strategy.TargetToken),
	)

	if err := strategy.Validate(); err != nil {
		span.NoticeError(err)
		return nil, err
	}

	descriptors, err := c.resolveAll(ctx, strategy)
	if err != nil {
		span.NoticeError(err)
		return nil, err
	}

	amountIn, err := baseunit.ToBaseUnits(strategy.Amount, descriptors.srcIn.Decimals)
	if err != nil {
		span.NoticeError(err)
		return nil, err
	}

	sourceQuote, sourceProvider, err := c.quoteLeg(ctx, legSource, strategy.PreferredProvider, pricingdomain.QuoteRequest{
		ChainID:          descriptors.sourceChainID,
		TokenIn:          descriptors.srcIn.Address,
		TokenOut:         descriptors.srcOut.Address,
		TokenInDecimals:  descriptors.srcIn.Decimals,
		TokenOutDecimals: descriptors.srcOut.Decimals,
		AmountIn:         amountIn,
		Slippage:         strategy.Slippage,
	})
	if err != nil {
		span.NoticeError(err)
		return nil, err
	}

	// Leg 1's base-unit output feeds leg 2 directly; both legs work in
	// base units, decimal conversion happens only at the edges.
	targetQuote, targetProvider, err := c.quoteLeg(ctx, legTarget, strategy.PreferredProvider, pricingdomain.QuoteRequest{
		ChainID:          descriptors.targetChainID,
		TokenIn:          descriptors.tgtIn.Address,
		TokenOut:         descriptors.tgtOut.Address,
		TokenInDecimals:  descriptors.tgtIn.Decimals,
		TokenOutDecimals: descriptors.tgtOut.Decimals,
		AmountIn:         sourceQuote.AmountOut,
		Slippage:         strategy.Slippage,
	})
	if err != nil {
		span.NoticeError(err)
		return nil, err
	}

	sourceOutput, err := baseunit.FromBaseUnits(sourceQuote.AmountOut, descriptors.srcOut.Decimals)
	if err != nil {
		span.NoticeError(err)
		return nil, err
	}
	finalOutput, err := baseunit.FromBaseUnits(targetQuote.AmountOut, descriptors.tgtOut.Decimals)
	if err != nil {
		span.NoticeError(err)
		return nil, err
	}

	initialAmount, err := decimal.NewFromString(strategy.Amount)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidAmount, apperror.WithCause(err))
	}
	finalAmount, err := decimal.NewFromString(finalOutput)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidAmount, apperror.WithCause(err))
	}

	profit, err := domain.ComputeProfit(initialAmount, finalAmount, strategy.Fees())
	if err != nil {
		span.NoticeError(err)
		return nil, err
	}

	result := &domain.ArbitrageResult{
		SourcePrice:        sourceQuote.SwapPrice,
		TargetPrice:        targetQuote.SwapPrice,
		SourceOutputAmount: sourceOutput,
		FinalOutputAmount:  finalOutput,
		GrossProfitPct:     profit.GrossPct,
		GrossProfitAmount:  profit.GrossAmount,
		NetProfitPct:       profit.NetPct,
		NetProfitAmount:    profit.NetAmount,
		TotalFees:          profit.TotalFees,
		Profitable:         profit.NetPct.GreaterThanOrEqual(strategy.MinProfitPct),
		SourcePriceImpact:  sourceQuote.PriceImpact,
		TargetPriceImpact:  targetQuote.PriceImpact,
		SourceProviderID:   sourceProvider,
		TargetProviderID:   targetProvider,
		SourceRoute:        sourceQuote.Route,
		TargetRoute:        targetQuote.Route,
	}

	c.log.Info(ctx, "arbitrage composition complete",
		"source_provider", result.SourceProviderID,
		"target_provider", result.TargetProviderID,
		"net_profit_pct", result.NetProfitPct.String(),
		"profitable", result.Profitable,
	)

	return result, nil
}

type leg string

const (
	legSource leg = "source"
	legTarget leg = "target"
)

// quoteLeg selects a provider for the leg's chain and performs the
// single quote attempt. A failed call aborts the leg; the fallback
// provider list is not iterated.
func (c *Composer) quoteLeg(ctx context.Context, l leg, preferredID string, req pricingdomain.QuoteRequest) (*pricingdomain.PriceQuote, string, error) {
	provider, err := c.registry.Select(req.ChainID, preferredID)
	if err != nil {
		return nil, "", err
	}

	adapter, err := c.registry.Adapter(provider.ID)
	if err != nil {
		return nil, "", err
	}

	quote, err := adapter.Quote(ctx, req)
	if err != nil || quote == nil {
		c.log.Warn(ctx, "leg quote failed",
			"leg", string(l), "provider", provider.ID, "chain_id", req.ChainID, "error", err)
		return nil, "", apperror.New(apperror.CodeQuoteUnavailable,
			apperror.WithMessage(fmt.Sprintf("%s leg quote failed via %s", l, provider.ID)),
			apperror.WithCause(err),
			apperror.WithContext(map[string]any{
				"leg":      string(l),
				"provider": provider.ID,
				"chain_id": req.ChainID,
			}))
	}

	return quote, provider.ID, nil
}

// resolveAll resolves both chains and all four token descriptors up
// front. Any miss is fatal for the whole composition.
func (c *Composer) resolveAll(ctx context.Context, strategy domain.Strategy) (*legDescriptors, error) {
	sourceChainID, err := c.resolver.ResolveChainID(ctx, strategy.SourceChain)
	if err != nil {
		return nil, err
	}
	targetChainID, err := c.resolver.ResolveChainID(ctx, strategy.TargetChain)
	if err != nil {
		return nil, err
	}

	srcIn, err := c.resolver.ResolveToken(ctx, strategy.SourceChain, strategy.SourceToken)
	if err != nil {
		return nil, err
	}
	srcOut, err := c.resolver.ResolveToken(ctx, strategy.SourceChain, strategy.TargetToken)
	if err != nil {
		return nil, err
	}
	tgtIn, err := c.resolver.ResolveToken(ctx, strategy.TargetChain, strategy.TargetToken)
	if err != nil {
		return nil, err
	}
	tgtOut, err := c.resolver.ResolveToken(ctx, strategy.TargetChain, strategy.SourceToken)
	if err != nil {
		return nil, err
	}

	return &legDescriptors{
		sourceChainID: sourceChainID,
		targetChainID: targetChainID,
		srcIn:         srcIn,
		srcOut:        srcOut,
		tgtIn:         tgtIn,
		tgtOut:        tgtOut,
	}, nil
}
