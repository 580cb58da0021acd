// Package domain holds the arbitrage round-trip types and the profit
// model.
package domain

import (
	"github.com/crossarb/crossarb/internal/apperror"
	"github.com/shopspring/decimal"
)

// Nominal fee defaults applied when a strategy leaves a field unset.
// A real swap always incurs some cost, so unset means nominal, never
// zero.
var (
	DefaultGasFee     = decimal.NewFromFloat(0.01)
	DefaultNetworkFee = decimal.NewFromFloat(0.005)
	DefaultBridgeRate = decimal.NewFromFloat(0.003)
	DefaultDexRate    = decimal.NewFromFloat(0.003)
)

// FeeSchedule models the costs of one round trip. Gas and Network are
// flat amounts in source-token units; BridgeRate and DexRate are
// fractions of the initial amount.
type FeeSchedule struct {
	Gas        decimal.Decimal
	Network    decimal.Decimal
	BridgeRate decimal.Decimal
	DexRate    decimal.Decimal
}

// WithDefaults returns the schedule with every zero field replaced by
// its nominal default.
func (f FeeSchedule) WithDefaults() FeeSchedule {
	if f.Gas.IsZero() {
		f.Gas = DefaultGasFee
	}
	if f.Network.IsZero() {
		f.Network = DefaultNetworkFee
	}
	if f.BridgeRate.IsZero() {
		f.BridgeRate = DefaultBridgeRate
	}
	if f.DexRate.IsZero() {
		f.DexRate = DefaultDexRate
	}
	return f
}

// Total returns the absolute fee cost for a given initial amount.
func (f FeeSchedule) Total(initialAmount decimal.Decimal) decimal.Decimal {
	return f.Gas.
		Add(f.Network).
		Add(f.BridgeRate.Mul(initialAmount)).
		Add(f.DexRate.Mul(initialAmount))
}

// ProfitResult holds the gross and net round-trip profit figures.
type ProfitResult struct {
	GrossAmount decimal.Decimal
	GrossPct    decimal.Decimal
	NetAmount   decimal.Decimal
	NetPct      decimal.Decimal
	TotalFees   decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// ComputeProfit derives gross and net profit from the round trip's
// initial and final amounts. Pure computation; a zero initial amount
// is a distinct DivisionByZero failure, never a silent NaN.
func ComputeProfit(initialAmount, finalAmount decimal.Decimal, fees FeeSchedule) (ProfitResult, error) {
	if initialAmount.IsZero() {
		return ProfitResult{}, apperror.New(apperror.CodeDivisionByZero,
			apperror.WithContext(map[string]any{"initial_amount": initialAmount.String()}))
	}

	gross := finalAmount.Sub(initialAmount)
	totalFees := fees.Total(initialAmount)
	net := gross.Sub(totalFees)

	return ProfitResult{
		GrossAmount: gross,
		GrossPct:    gross.Div(initialAmount).Mul(hundred),
		NetAmount:   net,
		NetPct:      net.Div(initialAmount).Mul(hundred),
		TotalFees:   totalFees,
	}, nil
}
