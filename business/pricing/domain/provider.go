package domain

import "time"

// ProviderConfig describes one configured quote provider.
// Lower priority means more preferred.
type ProviderConfig struct {
	ID                 string
	Enabled            bool
	Priority           int
	SupportedChainIDs  map[int64]struct{}
	BaseURL            string
	Timeout            time.Duration
	RateLimitPerMinute int
	APIKey             string
}

// SupportsChain reports whether the provider serves the given chain.
func (p ProviderConfig) SupportsChain(chainID int64) bool {
	_, ok := p.SupportedChainIDs[chainID]
	return ok
}
