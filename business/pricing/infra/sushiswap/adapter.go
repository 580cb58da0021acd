// Package sushiswap implements the quote adapter for the SushiSwap
// aggregator API.
package sushiswap

import (
	"context"
	"errors"
	"fmt"
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
	providerID = "sushiswap"

	swapEndpoint = "/swap/v7/%d"

	defaultTimeout = 5 * time.Second
)

// Adapter issues swap quotes against the SushiSwap aggregator.
type Adapter struct {
	cfg     domain.ProviderConfig
	client  httpclient.Client
	breaker *circuitbreaker.CircuitBreaker[*domain.PriceQuote]
	limiter *ratelimit.Limiter
	log     logger.LoggerInterface
}

// New creates a SushiSwap adapter from the provider config.
func New(cfg domain.ProviderConfig, log logger.LoggerInterface) (*Adapter, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName(providerID),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
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

// swapResponse is the SushiSwap quote payload.
type swapResponse struct {
	Status           string     `json:"status"`
	AssumedAmountOut string     `json:"assumedAmountOut"`
	SwapPrice        float64    `json:"swapPrice"`
	PriceImpact      float64    `json:"priceImpact"`
	GasSpent         int64      `json:"gasSpent"`
	Route            []swapStep `json:"route"`
}

type swapStep struct {
	PoolName         string  `json:"poolName"`
	PoolAddress      string  `json:"poolAddress"`
	PoolFee          float64 `json:"poolFee"`
	TokenFrom        string  `json:"tokenFrom"`
	TokenTo          string  `json:"tokenTo"`
	AssumedAmountIn  string  `json:"assumedAmountIn"`
	AssumedAmountOut string  `json:"assumedAmountOut"`
}

// Quote fetches a swap quote. Transport, timeout and payload failures
// come back as coded errors; nothing is thrown past this boundary.
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
	var result swapResponse

	resp, err := a.client.NewRequest(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "swap")),
	).
		SetQueryParam("tokenIn", req.TokenIn.Hex()).
		SetQueryParam("tokenOut", req.TokenOut.Hex()).
		SetQueryParam("amount", req.AmountIn).
		SetQueryParam("maxSlippage", req.Slippage.String()).
		SetResult(&result).
		Get(ctx, fmt.Sprintf(swapEndpoint, req.ChainID))
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, apperror.New(apperror.CodeProviderAPIError,
			apperror.WithContext(map[string]any{
				"provider": providerID,
				"status":   resp.StatusCode,
			}))
	}

	if resp.Result() == nil {
		return nil, apperror.New(apperror.CodeMalformedPayload,
			apperror.WithContext(map[string]any{"provider": providerID}))
	}

	if result.Status != "Success" {
		return nil, apperror.New(apperror.CodeQuoteUnavailable,
			apperror.WithContext(map[string]any{
				"provider":        providerID,
				"provider_status": result.Status,
			}))
	}

	return a.toPriceQuote(req, result)
}

func (a *Adapter) toPriceQuote(req domain.QuoteRequest, result swapResponse) (*domain.PriceQuote, error) {
	quote := &domain.PriceQuote{
		Status:      domain.QuoteSuccess,
		SwapPrice:   decimal.NewFromFloat(result.SwapPrice),
		PriceImpact: clampImpact(decimal.NewFromFloat(result.PriceImpact)),
		AmountIn:    req.AmountIn,
		AmountOut:   result.AssumedAmountOut,
		GasEstimate: result.GasSpent,
		ProviderID:  providerID,
		Route:       make([]domain.RouteStep, 0, len(result.Route)),
	}

	for _, step := range result.Route {
		quote.Route = append(quote.Route, domain.RouteStep{
			DexName:         step.PoolName,
			PoolAddress:     step.PoolAddress,
			PoolFeeFraction: decimal.NewFromFloat(step.PoolFee),
			TokenIn:         step.TokenFrom,
			TokenOut:        step.TokenTo,
			AmountIn:        step.AssumedAmountIn,
			AmountOut:       step.AssumedAmountOut,
		})
	}
	if len(quote.Route) == 0 {
		quote.Route = domain.SyntheticRoute(providerID, req.TokenIn.Hex(), req.TokenOut.Hex(), req.AmountIn, result.AssumedAmountOut)
	}

	if err := quote.Validate(); err != nil {
		return nil, apperror.New(apperror.CodeMalformedPayload, apperror.WithCause(err),
			apperror.WithContext(map[string]any{"provider": providerID}))
	}

	return quote, nil
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

func clampImpact(d decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(one) {
		return one
	}
	return d
}
