// Package feed implements the chain and token metadata feeds over HTTP.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/crossarb/crossarb/business/market/domain"
	"github.com/crossarb/crossarb/internal/apperror"
	"github.com/hashicorp/go-retryablehttp"
)

// ChainListFeed fetches chain metadata from a chainlist-style JSON feed.
type ChainListFeed struct {
	client *retryablehttp.Client
	url    string
}

// NewChainListFeed creates a feed against the given chain list URL.
func NewChainListFeed(url string, timeout time.Duration, retries int) *ChainListFeed {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.HTTPClient.Timeout = timeout
	client.Logger = nil

	return &ChainListFeed{
		client: client,
		url:    url,
	}
}

type chainListEntry struct {
	Name           string `json:"name"`
	ShortName      string `json:"shortName"`
	ChainID        int64  `json:"chainId"`
	NativeCurrency struct {
		Symbol string `json:"symbol"`
	} `json:"nativeCurrency"`
}

// FetchChains downloads the chain list and maps each entry to a
// ChainDescriptor, one per known alias of the chain.
func (f *ChainListFeed) FetchChains(ctx context.Context) ([]domain.ChainDescriptor, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", f.url, nil)
	if err != nil {
		return nil, apperror.New(apperror.CodeFeedUnavailable, apperror.WithCause(err))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperror.New(apperror.CodeFeedUnavailable, apperror.WithCause(err),
			apperror.WithContext(map[string]any{"url": f.url}))
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, apperror.New(apperror.CodeFeedUnavailable,
			apperror.WithMessage(fmt.Sprintf("chain feed returned status %d", resp.StatusCode)))
	}

	var entries []chainListEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, apperror.New(apperror.CodeMalformedPayload, apperror.WithCause(err))
	}

	chains := make([]domain.ChainDescriptor, 0, len(entries)*2)
	for _, e := range entries {
		if e.ChainID == 0 {
			continue
		}
		for _, alias := range chainAliases(e) {
			chains = append(chains, domain.ChainDescriptor{
				LogicalName:  alias,
				ChainID:      e.ChainID,
				NativeSymbol: e.NativeCurrency.Symbol,
			})
		}
	}

	return chains, nil
}

// chainAliases derives the logical names an entry is reachable under.
// "Ethereum Mainnet" resolves as both "ethereum" and its short name.
func chainAliases(e chainListEntry) []string {
	seen := make(map[string]bool, 2)
	var aliases []string

	add := func(name string) {
		name = strings.ToLower(strings.TrimSpace(name))
		name = strings.TrimSuffix(name, " mainnet")
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		aliases = append(aliases, name)
	}

	add(e.Name)
	add(e.ShortName)

	return aliases
}
