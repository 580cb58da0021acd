package domain

import (
	"github.com/crossarb/crossarb/internal/apperror"
	"github.com/shopspring/decimal"
)

// Strategy is the read-only parameter bag a caller supplies for one
// arbitrage composition.
type Strategy struct {
	SourceChain string
	TargetChain string
	SourceToken string
	TargetToken string

	// Amount is the human decimal input amount in source-token units.
	Amount string

	// Slippage is a fraction, e.g. 0.005 for 0.5%.
	Slippage decimal.Decimal

	PreferredProvider string

	// FallbackProviders is accepted for forward compatibility. The
	// composer performs a single attempt per leg and does not iterate
	// this list on failure.
	FallbackProviders []string

	GasFee     decimal.Decimal
	NetworkFee decimal.Decimal
	BridgeFee  decimal.Decimal
	DexFee     decimal.Decimal

	// MinProfitPct marks the result profitable only at or above this
	// net percentage.
	MinProfitPct decimal.Decimal
}

// Fees returns the strategy's fee schedule with defaults applied.
func (s Strategy) Fees() FeeSchedule {
	return FeeSchedule{
		Gas:        s.GasFee,
		Network:    s.NetworkFee,
		BridgeRate: s.BridgeFee,
		DexRate:    s.DexFee,
	}.WithDefaults()
}

// Validate checks the strategy is complete enough to compose.
func (s Strategy) Validate() error {
	missing := func(field string) error {
		return apperror.New(apperror.CodeRequiredField,
			apperror.WithContext(map[string]any{"field": field}))
	}

	switch {
	case s.SourceChain == "":
		return missing("sourceChain")
	case s.TargetChain == "":
		return missing("targetChain")
	case s.SourceToken == "":
		return missing("sourceToken")
	case s.TargetToken == "":
		return missing("targetToken")
	case s.Amount == "":
		return missing("amount")
	}

	amount, err := decimal.NewFromString(s.Amount)
	if err != nil {
		return apperror.New(apperror.CodeInvalidAmount, apperror.WithCause(err),
			apperror.WithContext(map[string]any{"amount": s.Amount}))
	}
	if !amount.IsPositive() {
		return apperror.New(apperror.CodeInvalidAmount,
			apperror.WithContext(map[string]any{"amount": s.Amount}))
	}

	if s.Slippage.IsNegative() || s.Slippage.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext(map[string]any{"slippage": s.Slippage.String()}))
	}

	return nil
}
