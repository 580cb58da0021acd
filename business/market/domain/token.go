package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// TokenDescriptor describes a token on a specific chain.
// Decimals is the critical field: every amount tied to this token must
// carry it before any base-unit conversion.
type TokenDescriptor struct {
	ChainID  int64
	Address  common.Address
	Symbol   string
	Name     string
	Decimals int
}

// DefaultDecimals returns the assumed precision for a symbol when the
// metadata feeds carry no explicit value. Most ERC-20 tokens use 18;
// the major stablecoins use 6. Last-resort only.
func DefaultDecimals(symbol string) int {
	switch strings.ToUpper(symbol) {
	case "USDC", "USDT":
		return 6
	default:
		return 18
	}
}

// staticTokens is the fallback token map, keyed by chain id then
// upper-cased symbol. Addresses are the canonical deployments.
var staticTokens = map[int64]map[string]TokenDescriptor{
	1: {
		"USDC": {ChainID: 1, Address: common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), Symbol: "USDC", Name: "USD Coin", Decimals: 6},
		"USDT": {ChainID: 1, Address: common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"), Symbol: "USDT", Name: "Tether USD", Decimals: 6},
		"WETH": {ChainID: 1, Address: common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"), Symbol: "WETH", Name: "Wrapped Ether", Decimals: 18},
		"DAI":  {ChainID: 1, Address: common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"), Symbol: "DAI", Name: "Dai Stablecoin", Decimals: 18},
		"WBTC": {ChainID: 1, Address: common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"), Symbol: "WBTC", Name: "Wrapped BTC", Decimals: 8},
	},
	137: {
		"USDC": {ChainID: 137, Address: common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"), Symbol: "USDC", Name: "USD Coin (PoS)", Decimals: 6},
		"USDT": {ChainID: 137, Address: common.HexToAddress("0xc2132D05D31c914a87C6611C10748AEb04B58e8F"), Symbol: "USDT", Name: "Tether USD (PoS)", Decimals: 6},
		"WETH": {ChainID: 137, Address: common.HexToAddress("0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619"), Symbol: "WETH", Name: "Wrapped Ether (PoS)", Decimals: 18},
	},
	42161: {
		"USDC": {ChainID: 42161, Address: common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831"), Symbol: "USDC", Name: "USD Coin", Decimals: 6},
		"WETH": {ChainID: 42161, Address: common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"), Symbol: "WETH", Name: "Wrapped Ether", Decimals: 18},
	},
}

// StaticToken returns the static fallback entry for a symbol on a chain.
func StaticToken(chainID int64, symbol string) (TokenDescriptor, bool) {
	tokens, ok := staticTokens[chainID]
	if !ok {
		return TokenDescriptor{}, false
	}
	t, ok := tokens[strings.ToUpper(symbol)]
	return t, ok
}
