// Package domain defines the canonical quote types shared by all
// provider adapters.
package domain

import (
	"math/big"
	"strings"

	"github.com/crossarb/crossarb/internal/apperror"
	"github.com/shopspring/decimal"
)

// QuoteStatus marks a quote as usable or not.
type QuoteStatus string

const (
	QuoteSuccess QuoteStatus = "success"
	QuoteError   QuoteStatus = "error"
)

// RouteStep is one hop inside a single provider's swap path.
// Purely descriptive; a route never crosses chains.
type RouteStep struct {
	DexName         string
	PoolAddress     string
	PoolFeeFraction decimal.Decimal
	TokenIn         string
	TokenOut        string
	AmountIn        string
	AmountOut       string
}

// PriceQuote is the provider-independent quote result.
// AmountIn and AmountOut are base-unit integer strings in the input and
// output token's native precision. Never floats, never scientific
// notation.
type PriceQuote struct {
	Status      QuoteStatus
	SwapPrice   decimal.Decimal
	PriceImpact decimal.Decimal
	AmountIn    string
	AmountOut   string
	GasEstimate int64
	ProviderID  string
	Route       []RouteStep
}

// Validate checks the base-unit amount invariant.
func (q *PriceQuote) Validate() error {
	if err := validateBaseUnits(q.AmountIn); err != nil {
		return err
	}
	return validateBaseUnits(q.AmountOut)
}

func validateBaseUnits(s string) error {
	if s == "" || strings.ContainsAny(s, "eE.") {
		return apperror.New(apperror.CodeInvalidAmount,
			apperror.WithContext(map[string]any{"amount": s}))
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 {
		return apperror.New(apperror.CodeInvalidAmount,
			apperror.WithContext(map[string]any{"amount": s}))
	}
	return nil
}

// SyntheticRoute builds the single-step route used when a provider
// returns no hop detail: one step covering the whole swap.
func SyntheticRoute(providerID, tokenIn, tokenOut, amountIn, amountOut string) []RouteStep {
	return []RouteStep{{
		DexName:         providerID,
		PoolFeeFraction: decimal.Zero,
		TokenIn:         tokenIn,
		TokenOut:        tokenOut,
		AmountIn:        amountIn,
		AmountOut:       amountOut,
	}}
}

// SwapPrice derives the human price (output per unit of input) from two
// base-unit amounts and their token precisions.
func SwapPrice(amountIn, amountOut string, inDecimals, outDecimals int) (decimal.Decimal, error) {
	in, err := decimal.NewFromString(amountIn)
	if err != nil {
		return decimal.Zero, apperror.New(apperror.CodeInvalidAmount, apperror.WithCause(err))
	}
	out, err := decimal.NewFromString(amountOut)
	if err != nil {
		return decimal.Zero, apperror.New(apperror.CodeInvalidAmount, apperror.WithCause(err))
	}
	if in.IsZero() {
		return decimal.Zero, apperror.New(apperror.CodeDivisionByZero)
	}
	return out.Shift(int32(-outDecimals)).Div(in.Shift(int32(-inDecimals))), nil
}
