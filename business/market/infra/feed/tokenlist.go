package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/crossarb/crossarb/business/market/domain"
	"github.com/crossarb/crossarb/internal/apperror"
	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-retryablehttp"
)

// TokenListFeed fetches token metadata from a Uniswap-style token list.
type TokenListFeed struct {
	client *retryablehttp.Client
	url    string
}

// NewTokenListFeed creates a feed against the given token list URL.
func NewTokenListFeed(url string, timeout time.Duration, retries int) *TokenListFeed {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.HTTPClient.Timeout = timeout
	client.Logger = nil

	return &TokenListFeed{
		client: client,
		url:    url,
	}
}

type tokenList struct {
	Tokens []tokenListEntry `json:"tokens"`
}

type tokenListEntry struct {
	ChainID  int64  `json:"chainId"`
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
}

// FetchTokens downloads the token list and returns the entries for the
// requested chain. Entries with an invalid address are skipped.
func (f *TokenListFeed) FetchTokens(ctx context.Context, chainID int64) ([]domain.TokenDescriptor, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", f.url, nil)
	if err != nil {
		return nil, apperror.New(apperror.CodeFeedUnavailable, apperror.WithCause(err))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperror.New(apperror.CodeFeedUnavailable, apperror.WithCause(err),
			apperror.WithContext(map[string]any{"url": f.url, "chain_id": chainID}))
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, apperror.New(apperror.CodeFeedUnavailable,
			apperror.WithMessage(fmt.Sprintf("token feed returned status %d", resp.StatusCode)))
	}

	var list tokenList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, apperror.New(apperror.CodeMalformedPayload, apperror.WithCause(err))
	}

	tokens := make([]domain.TokenDescriptor, 0, len(list.Tokens))
	for _, t := range list.Tokens {
		if t.ChainID != chainID || !common.IsHexAddress(t.Address) {
			continue
		}
		tokens = append(tokens, domain.TokenDescriptor{
			ChainID:  t.ChainID,
			Address:  common.HexToAddress(t.Address),
			Symbol:   t.Symbol,
			Name:     t.Name,
			Decimals: t.Decimals,
		})
	}

	return tokens, nil
}
