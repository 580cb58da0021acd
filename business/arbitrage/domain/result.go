package domain

import (
	pricing "github.com/crossarb/crossarb/business/pricing/domain"
	"github.com/shopspring/decimal"
)

// ArbitrageResult is the outcome of one full round-trip composition.
// Constructed fresh per query and never mutated afterwards.
type ArbitrageResult struct {
	SourcePrice decimal.Decimal
	TargetPrice decimal.Decimal

	// SourceOutputAmount and FinalOutputAmount are human decimal
	// strings in the target and source token's units respectively.
	SourceOutputAmount string
	FinalOutputAmount  string

	GrossProfitPct    decimal.Decimal
	GrossProfitAmount decimal.Decimal
	NetProfitPct      decimal.Decimal
	NetProfitAmount   decimal.Decimal
	TotalFees         decimal.Decimal

	// Profitable reports whether net profit met the strategy's
	// MinProfitPct threshold.
	Profitable bool

	// Observed price impacts per leg; recorded, not enforced against
	// the strategy's slippage tolerance.
	SourcePriceImpact decimal.Decimal
	TargetPriceImpact decimal.Decimal

	SourceProviderID string
	TargetProviderID string
	SourceRoute      []pricing.RouteStep
	TargetRoute      []pricing.RouteStep
}
