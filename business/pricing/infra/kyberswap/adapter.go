// Package kyberswap implements the quote adapter for the KyberSwap
// aggregator API.
package kyberswap

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
	providerID = "kyberswap"

	routesEndpoint = "/%s/api/v1/routes"

	defaultTimeout = 5 * time.Second
)

// chainSlugs maps chain ids to the path slug the API expects.
var chainSlugs = map[int64]string{
	1:     "ethereum",
	10:    "optimism",
	56:    "bsc",
	137:   "polygon",
	8453:  "base",
	42161: "arbitrum",
	43114: "avalanche",
}

// Adapter issues swap quotes against the KyberSwap aggregator.
type Adapter struct {
	cfg     domain.ProviderConfig
	client  httpclient.Client
	breaker *circuitbreaker.CircuitBreaker[*domain.PriceQuote]
	limiter *ratelimit.Limiter
	log     logger.LoggerInterface
}

// New creates a KyberSwap adapter from the provider config.
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

// routesResponse is the KyberSwap routes payload.
type routesResponse struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
	Data    struct {
		RouteSummary *routeSummary `json:"routeSummary"`
	} `json:"data"`
}

type routeSummary struct {
	AmountIn  string       `json:"amountIn"`
	AmountOut string       `json:"amountOut"`
	Gas       string       `json:"gas"`
	Route     [][]routeHop `json:"route"`
}

type routeHop struct {
	Pool       string `json:"pool"`
	Exchange   string `json:"exchange"`
	TokenIn    string `json:"tokenIn"`
	TokenOut   string `json:"tokenOut"`
	SwapAmount string `json:"swapAmount"`
	AmountOut  string `json:"amountOut"`
}

// Quote fetches a swap route quote.
func (a *Adapter) Quote(ctx context.Context, req domain.QuoteRequest) (*domain.PriceQuote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	slug, ok := chainSlugs[req.ChainID]
	if !ok {
		return nil, apperror.New(apperror.CodeQuoteUnavailable,
			apperror.WithMessage(fmt.Sprintf("no chain slug for chain %d", req.ChainID)),
			apperror.WithContext(map[string]any{"provider": providerID, "chain_id": req.ChainID}))
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
		return a.fetchQuote(ctx, slug, req)
	})
	if err != nil {
		return nil, a.classify(ctx, err)
	}

	return quote, nil
}

func (a *Adapter) fetchQuote(ctx context.Context, slug string, req domain.QuoteRequest) (*domain.PriceQuote, error) {
	var result routesResponse

	resp, err := a.client.NewRequest(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "routes")),
	).
		SetQueryParam("tokenIn", req.TokenIn.Hex()).
		SetQueryParam("tokenOut", req.TokenOut.Hex()).
		SetQueryParam("amountIn", req.AmountIn).
		SetResult(&result).
		Get(ctx, fmt.Sprintf(routesEndpoint, slug))
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

	// code 0 is success, everything else is a provider-reported error
	if result.Code != 0 {
		return nil, apperror.New(apperror.CodeQuoteUnavailable,
			apperror.WithMessage(result.Message),
			apperror.WithContext(map[string]any{
				"provider":      providerID,
				"provider_code": result.Code,
			}))
	}

	if result.Data.RouteSummary == nil {
		return nil, apperror.New(apperror.CodeMalformedPayload,
			apperror.WithContext(map[string]any{"provider": providerID}))
	}

	return a.toPriceQuote(req, result.Data.RouteSummary)
}

func (a *Adapter) toPriceQuote(req domain.QuoteRequest, summary *routeSummary) (*domain.PriceQuote, error) {
	gas, _ := strconv.ParseInt(summary.Gas, 10, 64)

	steps := flattenRoute(summary.Route)
	if len(steps) == 0 {
		steps = domain.SyntheticRoute(providerID, req.TokenIn.Hex(), req.TokenOut.Hex(), req.AmountIn, summary.AmountOut)
	}

	quote := &domain.PriceQuote{
		Status:      domain.QuoteSuccess,
		AmountIn:    req.AmountIn,
		AmountOut:   summary.AmountOut,
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

func flattenRoute(route [][]routeHop) []domain.RouteStep {
	var steps []domain.RouteStep
	for _, path := range route {
		for _, hop := range path {
			steps = append(steps, domain.RouteStep{
				DexName:         hop.Exchange,
				PoolAddress:     hop.Pool,
				PoolFeeFraction: decimal.Zero,
				TokenIn:         hop.TokenIn,
				TokenOut:        hop.TokenOut,
				AmountIn:        hop.SwapAmount,
				AmountOut:       hop.AmountOut,
			})
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
