// Package paraswap implements the quote adapter for the ParaSwap
// prices API.
package paraswap

import (
	"context"
	"errors"
	"fmt"
	"strconv"
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
	providerID = "paraswap"

	pricesEndpoint = "/prices"

	defaultTimeout = 5 * time.Second
)

// Adapter issues swap quotes against the ParaSwap prices API.
type Adapter struct {
	cfg     domain.ProviderConfig
	client  httpclient.Client
	breaker *circuitbreaker.CircuitBreaker[*domain.PriceQuote]
	limiter *ratelimit.Limiter
	log     logger.LoggerInterface
}

// New creates a ParaSwap adapter from the provider config.
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

// pricesResponse is the ParaSwap prices payload.
type pricesResponse struct {
	PriceRoute *priceRoute `json:"priceRoute"`
	Error      string      `json:"error"`
}

type priceRoute struct {
	SrcAmount  string      `json:"srcAmount"`
	DestAmount string      `json:"destAmount"`
	GasCost    string      `json:"gasCost"`
	BestRoute  []bestRoute `json:"bestRoute"`
}

type bestRoute struct {
	Percent float64 `json:"percent"`
	Swaps   []swap  `json:"swaps"`
}

type swap struct {
	SrcToken      string         `json:"srcToken"`
	DestToken     string         `json:"destToken"`
	SwapExchanges []swapExchange `json:"swapExchanges"`
}

type swapExchange struct {
	Exchange      string   `json:"exchange"`
	Percent       float64  `json:"percent"`
	SrcAmount     string   `json:"srcAmount"`
	DestAmount    string   `json:"destAmount"`
	PoolAddresses []string `json:"poolAddresses"`
}

// Quote fetches a swap quote from the prices endpoint.
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
	var result pricesResponse

	resp, err := a.client.NewRequest(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "prices")),
	).
		SetQueryParam("srcToken", req.TokenIn.Hex()).
		SetQueryParam("destToken", req.TokenOut.Hex()).
		SetQueryParam("amount", req.AmountIn).
		SetQueryParam("srcDecimals", strconv.Itoa(req.TokenInDecimals)).
		SetQueryParam("destDecimals", strconv.Itoa(req.TokenOutDecimals)).
		SetQueryParam("side", "SELL").
		SetQueryParam("network", strconv.FormatInt(req.ChainID, 10)).
		SetResult(&result).
		Get(ctx, pricesEndpoint)
	if err != nil {
		return nil, err
	}

	if result.Error != "" {
		return nil, apperror.New(apperror.CodeQuoteUnavailable,
			apperror.WithMessage(result.Error),
			apperror.WithContext(map[string]any{"provider": providerID}))
	}

	if resp.IsError() {
		return nil, apperror.New(apperror.CodeProviderAPIError,
			apperror.WithContext(map[string]any{
				"provider": providerID,
				"status":   resp.StatusCode,
			}))
	}

	if resp.Result() == nil || result.PriceRoute == nil {
		return nil, apperror.New(apperror.CodeMalformedPayload,
			apperror.WithContext(map[string]any{"provider": providerID}))
	}

	return a.toPriceQuote(req, result.PriceRoute)
}

func (a *Adapter) toPriceQuote(req domain.QuoteRequest, route *priceRoute) (*domain.PriceQuote, error) {
	gas, _ := strconv.ParseInt(route.GasCost, 10, 64)

	steps := flattenRoute(route.BestRoute)
	if len(steps) == 0 {
		steps = domain.SyntheticRoute(providerID, req.TokenIn.Hex(), req.TokenOut.Hex(), req.AmountIn, route.DestAmount)
	}

	quote := &domain.PriceQuote{
		Status:      domain.QuoteSuccess,
		AmountIn:    req.AmountIn,
		AmountOut:   route.DestAmount,
		GasEstimate: gas,
		ProviderID:  providerID,
		Route:       steps,
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
	quote.PriceImpact = decimal.Zero

	return quote, nil
}

func flattenRoute(routes []bestRoute) []domain.RouteStep {
	var steps []domain.RouteStep
	for _, r := range routes {
		for _, s := range r.Swaps {
			for _, ex := range s.SwapExchanges {
				step := domain.RouteStep{
					DexName:         ex.Exchange,
					PoolFeeFraction: decimal.Zero,
					TokenIn:         s.SrcToken,
					TokenOut:        s.DestToken,
					AmountIn:        ex.SrcAmount,
					AmountOut:       ex.DestAmount,
				}
				if len(ex.PoolAddresses) > 0 {
					step.PoolAddress = ex.PoolAddresses[0]
				}
				steps = append(steps, step)
			}
		}
	}
	return steps
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
