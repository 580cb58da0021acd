// Package domain defines chain and token metadata types.
package domain

import "strings"

// ChainDescriptor identifies a chain by logical name.
// Immutable once resolved.
type ChainDescriptor struct {
	LogicalName  string
	ChainID      int64
	NativeSymbol string
}

// staticChains is the fallback table consulted when the dynamic
// chain list has no entry for a name.
var staticChains = map[string]ChainDescriptor{
	"ethereum":  {LogicalName: "ethereum", ChainID: 1, NativeSymbol: "ETH"},
	"polygon":   {LogicalName: "polygon", ChainID: 137, NativeSymbol: "MATIC"},
	"bsc":       {LogicalName: "bsc", ChainID: 56, NativeSymbol: "BNB"},
	"arbitrum":  {LogicalName: "arbitrum", ChainID: 42161, NativeSymbol: "ETH"},
	"optimism":  {LogicalName: "optimism", ChainID: 10, NativeSymbol: "ETH"},
	"avalanche": {LogicalName: "avalanche", ChainID: 43114, NativeSymbol: "AVAX"},
	"base":      {LogicalName: "base", ChainID: 8453, NativeSymbol: "ETH"},
}

// StaticChain returns the static fallback entry for a logical chain name.
func StaticChain(name string) (ChainDescriptor, bool) {
	c, ok := staticChains[strings.ToLower(name)]
	return c, ok
}
