// Package oneinch implements the quote adapter for the 1inch
// aggregation API.
//
// The quote is two-step: the main call returns the route and output
// amount, a second reference-amount call estimates price impact. The
// secondary call is best-effort; when it fails the adapter falls back
// to a default impact estimate instead of failing the quote.
package oneinch

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/crossarb/crossarb/business/pricing/domain"
	"github.com/crossarb/crossarb/internal/apperror"
	"github.com/crossarb/crossarb/internal/circuitbreaker"
	"github.com/crossarb/crossarb/internal/httpclient"
	"github.com/crossarb/crossarb/internal/logger"
	"github.com/crossarb/crossarb/internal/ratelimit"
	"github.com/shopspring/decimal"
)

const (
	providerID = "oneinch"

	quoteEndpoint = "/swap/v6.0/%d/quote"

	defaultTimeout = 5 * time.Second

	// referenceDivisor shrinks the input for the marginal-price probe.
	referenceDivisor = 100
)

// defaultPriceImpact is assumed when the probe call fails.
var defaultPriceImpact = decimal.NewFromFloat(0.01)

// Adapter issues swap quotes against the 1inch aggregation API.
type Adapter struct {
	cfg     domain.ProviderConfig
	client  httpclient.Client
	breaker *circuitbreaker.CircuitBreaker[*domain.PriceQuote]
	limiter *ratelimit.Limiter
	log     logger.LoggerInterface
}

// New creates a 1inch adapter from the provider config.
func New(cfg domain.ProviderConfig, log logger.LoggerInterface) (*Adapter, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	headers := map[string]string{
		"Accept": "application/json",
	}
	if cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + cfg.APIKey
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName(providerID),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithHeaders(headers),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Adapter{
		cfg:     cfg,
		client:  client,
		breaker: circuitbreaker.New[*domain.PriceQuote](circuitbreaker.DefaultConfig(providerID)),
		limiter: ratelimit.New(cfg.RateLimitPerMinute),
		log:     log,
	}, nil
}

// ProviderID returns the provider id this adapter serves.
func (a *Adapter) ProviderID() string {
	return providerID
}

// quoteResponse is the 1inch quote payload.
type quoteResponse struct {
	DstAmount   string              `json:"dstAmount"`
	Gas         int64               `json:"gas"`
	Protocols   [][][]protocolRoute `json:"protocols"`
	Error       string              `json:"error"`
	Description string              `json:"description"`
}

type protocolRoute struct {
	Name             string  `json:"name"`
	Part             float64 `json:"part"`
	FromTokenAddress string  `json:"fromTokenAddress"`
	ToTokenAddress   string  `json:"toTokenAddress"`
}

// Quote fetches a swap quote plus a best-effort price-impact estimate.
func (a *Adapter) Quote(ctx context.Context, req domain.QuoteRequest) (*domain.PriceQuote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	timeout := a.cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// The wait shares the provider deadline so a saturated limiter
	// returns failure instead of hanging the leg.
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, apperror.New(apperror.CodeRateLimitExceeded, apperror.WithCause(err),
			apperror.WithContext(map[string]any{"provider": providerID}))
	}

	quote, err := a.breaker.Execute(func() (*domain.PriceQuote, error) {
		return a.fetchQuote(ctx, req)
	})
	if err != nil {
		return nil, a.classify(ctx, err)
	}

	return quote, nil
}

func (a *Adapter) fetchQuote(ctx context.Context, req domain.QuoteRequest) (*domain.PriceQuote, error) {
	result, err := a.callQuote(ctx, req.ChainID, req.TokenIn.Hex(), req.TokenOut.Hex(), req.AmountIn)
	if err != nil {
		return nil, err
	}

	route := flattenProtocols(result.Protocols)
	if len(route) == 0 {
		route = domain.SyntheticRoute(providerID, req.TokenIn.Hex(), req.TokenOut.Hex(), req.AmountIn, result.DstAmount)
	}

	quote := &domain.PriceQuote{
		Status:      domain.QuoteSuccess,
		AmountIn:    req.AmountIn,
		AmountOut:   result.DstAmount,
		GasEstimate: result.Gas,
		ProviderID:  providerID,
		Route:       route,
	}

	if err := quote.Validate(); err != nil {
		return nil, apperror.New(apperror.CodeMalformedPayload, apperror.WithCause(err),
			apperror.WithContext(map[string]any{"provider": providerID}))
	}

	price, err := domain.SwapPrice(quote.AmountIn, quote.AmountOut, req.TokenInDecimals, req.TokenOutDecimals)
	if err != nil {
		return nil, err
	}
	quote.SwapPrice = price

	quote.PriceImpact = a.estimateImpact(ctx, req, price)

	return quote, nil
}

// estimateImpact probes with a small reference amount and compares the
// marginal price against the full quote's price. Any probe failure
// falls back to defaultPriceImpact.
func (a *Adapter) estimateImpact(ctx context.Context, req domain.QuoteRequest, fullPrice decimal.Decimal) decimal.Decimal {
	refAmount := referenceAmount(req.AmountIn)
	if refAmount == "" || refAmount == req.AmountIn {
		return defaultPriceImpact
	}

	probe, err := a.callQuote(ctx, req.ChainID, req.TokenIn.Hex(), req.TokenOut.Hex(), refAmount)
	if err != nil {
		a.log.Debug(ctx, "price impact probe failed, using default estimate",
			"provider", providerID, "error", err)
		return defaultPriceImpact
	}

	marginalPrice, err := domain.SwapPrice(refAmount, probe.DstAmount, req.TokenInDecimals, req.TokenOutDecimals)
	if err != nil || marginalPrice.IsZero() {
		return defaultPriceImpact
	}

	// impact = 1 - fullPrice/marginalPrice, clamped to [0, 1]
	impact := decimal.NewFromInt(1).Sub(fullPrice.Div(marginalPrice))
	if impact.IsNegative() {
		return decimal.Zero
	}
	if impact.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return impact
}

func (a *Adapter) callQuote(ctx context.Context, chainID int64, src, dst, amount string) (*quoteResponse, error) {
	var result quoteResponse

	resp, err := a.client.NewRequest(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "quote")),
	).
		SetQueryParam("src", src).
		SetQueryParam("dst", dst).
		SetQueryParam("amount", amount).
		SetQueryParam("includeGas", "true").
		SetQueryParam("includeProtocols", "true").
		SetResult(&result).
		Get(ctx, fmt.Sprintf(quoteEndpoint, chainID))
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		if result.Description != "" {
			return nil, apperror.New(apperror.CodeQuoteUnavailable,
				apperror.WithMessage(result.Description),
				apperror.WithContext(map[string]any{"provider": providerID}))
		}
		return nil, apperror.New(apperror.CodeProviderAPIError,
			apperror.WithContext(map[string]any{
				"provider": providerID,
				"status":   resp.StatusCode,
			}))
	}

	if resp.Result() == nil || result.DstAmount == "" {
		return nil, apperror.New(apperror.CodeMalformedPayload,
			apperror.WithContext(map[string]any{"provider": providerID}))
	}

	return &result, nil
}

// classify translates failures into the adapter's coded error taxonomy.
func (a *Adapter) classify(ctx context.Context, err error) error {
	switch {
	case circuitbreaker.IsOpen(err):
		a.log.Warn(ctx, "circuit open, refusing quote", "provider", providerID)
		return apperror.New(apperror.CodeCircuitOpen,
			apperror.WithContext(map[string]any{"provider": providerID}))
	case errors.Is(err, context.DeadlineExceeded):
		a.log.Warn(ctx, "quote request timed out", "provider", providerID)
		return apperror.New(apperror.CodeProviderTimeout, apperror.WithCause(err),
			apperror.WithContext(map[string]any{"provider": providerID}))
	case apperror.IsAppError(err):
		a.log.Warn(ctx, "quote request failed", "provider", providerID, "error", err)
		return err
	default:
		a.log.Warn(ctx, "quote transport failure", "provider", providerID, "error", err)
		return apperror.New(apperror.CodeQuoteUnavailable, apperror.WithCause(err),
			apperror.WithContext(map[string]any{"provider": providerID}))
	}
}

// referenceAmount returns amountIn divided by referenceDivisor, floored
// at 1 base unit. Empty on a malformed amount.
func referenceAmount(amountIn string) string {
	n, ok := new(big.Int).SetString(amountIn, 10)
	if !ok || n.Sign() <= 0 {
		return ""
	}
	ref := new(big.Int).Div(n, big.NewInt(referenceDivisor))
	if ref.Sign() == 0 {
		ref = big.NewInt(1)
	}
	return ref.String()
}

func flattenProtocols(protocols [][][]protocolRoute) []domain.RouteStep {
	var steps []domain.RouteStep
	for _, route := range protocols {
		for _, hop := range route {
			for _, p := range hop {
				steps = append(steps, domain.RouteStep{
					DexName:         p.Name,
					PoolFeeFraction: decimal.Zero,
					TokenIn:         p.FromTokenAddress,
					TokenOut:        p.ToTokenAddress,
				})
			}
		}
	}
	return steps
}
