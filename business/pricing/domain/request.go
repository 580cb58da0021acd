package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// QuoteRequest is the canonical adapter input for a single-chain swap
// quote. AmountIn is a base-unit integer string in the input token's
// precision; the decimals travel with the request so adapters can
// derive a human swap price.
type QuoteRequest struct {
	ChainID          int64
	TokenIn          common.Address
	TokenOut         common.Address
	TokenInDecimals  int
	TokenOutDecimals int
	AmountIn         string
	Slippage         decimal.Decimal
}

// Validate checks the base-unit amount invariant on the input amount.
func (r QuoteRequest) Validate() error {
	return validateBaseUnits(r.AmountIn)
}
