package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/crossarb/crossarb/business/market/domain"
	"github.com/crossarb/crossarb/internal/apperror"
	"github.com/crossarb/crossarb/internal/logger"
)

const defaultCacheTTL = 5 * time.Minute

// Resolver maps logical chain names and token symbols to canonical
// chain ids and token descriptors. Dynamic feed data is cached with a
// TTL and consulted before the static fallback tables. A feed failure
// is logged and falls through to the static tables.
type Resolver struct {
	chainFeed ChainFeed
	tokenFeed TokenFeed
	log       logger.LoggerInterface
	ttl       time.Duration
	now       func() time.Time

	mu            sync.RWMutex
	chains        map[string]domain.ChainDescriptor
	chainsFetched time.Time
	tokens        map[int64]map[string]domain.TokenDescriptor
	tokensFetched map[int64]time.Time
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCacheTTL overrides the default metadata cache TTL.
func WithCacheTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.ttl = ttl
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		r.now = now
	}
}

// NewResolver creates a Resolver backed by the given feeds.
func NewResolver(chainFeed ChainFeed, tokenFeed TokenFeed, log logger.LoggerInterface, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		chainFeed:     chainFeed,
		tokenFeed:     tokenFeed,
		log:           log,
		ttl:           defaultCacheTTL,
		now:           time.Now,
		chains:        make(map[string]domain.ChainDescriptor),
		tokens:        make(map[int64]map[string]domain.TokenDescriptor),
		tokensFetched: make(map[int64]time.Time),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddChain registers a chain descriptor in the dynamic table at runtime.
// It takes precedence over both the feed and the static fallback.
func (r *Resolver) AddChain(c domain.ChainDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chains[strings.ToLower(c.LogicalName)] = c
}

// ResolveChainID maps a logical chain name to its chain id.
// Dynamic table first, static fallback second.
func (r *Resolver) ResolveChainID(ctx context.Context, name string) (int64, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return 0, apperror.New(apperror.CodeChainNotFound,
			apperror.WithContext(map[string]any{"chain": name}))
	}

	r.refreshChains(ctx)

	r.mu.RLock()
	c, ok := r.chains[key]
	r.mu.RUnlock()
	if ok {
		return c.ChainID, nil
	}

	if c, ok := domain.StaticChain(key); ok {
		return c.ChainID, nil
	}

	return 0, apperror.New(apperror.CodeChainNotFound,
		apperror.WithContext(map[string]any{"chain": name}))
}

// ResolveToken maps a chain name and token symbol to a full descriptor.
// The per-chain token cache is consulted before the static fallback map.
// A static entry without explicit decimals gets DefaultDecimals.
func (r *Resolver) ResolveToken(ctx context.Context, chainName, symbol string) (domain.TokenDescriptor, error) {
	chainID, err := r.ResolveChainID(ctx, chainName)
	if err != nil {
		return domain.TokenDescriptor{}, err
	}

	key := strings.ToUpper(strings.TrimSpace(symbol))
	if key == "" {
		return domain.TokenDescriptor{}, apperror.New(apperror.CodeTokenNotFound,
			apperror.WithContext(map[string]any{"chain": chainName, "symbol": symbol}))
	}

	r.refreshTokens(ctx, chainID)

	r.mu.RLock()
	t, ok := r.tokens[chainID][key]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}

	if t, ok := domain.StaticToken(chainID, key); ok {
		if t.Decimals == 0 {
			t.Decimals = domain.DefaultDecimals(key)
		}
		return t, nil
	}

	return domain.TokenDescriptor{}, apperror.New(apperror.CodeTokenNotFound,
		apperror.WithContext(map[string]any{"chain": chainName, "symbol": symbol, "chain_id": chainID}))
}

// Invalidate drops all cached feed data. The next resolution refetches.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chains = make(map[string]domain.ChainDescriptor)
	r.chainsFetched = time.Time{}
	r.tokens = make(map[int64]map[string]domain.TokenDescriptor)
	r.tokensFetched = make(map[int64]time.Time)
}

// Refresh forces an immediate refetch of the chain list and of every
// chain's token list currently in the cache.
func (r *Resolver) Refresh(ctx context.Context) {
	r.mu.Lock()
	r.chainsFetched = time.Time{}
	chainIDs := make([]int64, 0, len(r.tokensFetched))
	for id := range r.tokensFetched {
		r.tokensFetched[id] = time.Time{}
		chainIDs = append(chainIDs, id)
	}
	r.mu.Unlock()

	r.refreshChains(ctx)
	for _, id := range chainIDs {
		r.refreshTokens(ctx, id)
	}
}

// FeedHealthy reports whether the dynamic chain feed has produced data
// recently. Resolution still works off the static tables when it has
// not, so this is a degradation signal, not a failure.
func (r *Resolver) FeedHealthy() (bool, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.chainFeed == nil {
		return true, "static tables only"
	}
	if r.chainsFetched.IsZero() {
		return false, "chain feed never fetched"
	}
	if age := r.now().Sub(r.chainsFetched); age > 2*r.ttl {
		return false, "chain feed data stale"
	}
	return true, ""
}

func (r *Resolver) refreshChains(ctx context.Context) {
	if r.chainFeed == nil {
		return
	}

	r.mu.RLock()
	fresh := !r.chainsFetched.IsZero() && r.now().Sub(r.chainsFetched) < r.ttl
	r.mu.RUnlock()
	if fresh {
		return
	}

	chains, err := r.chainFeed.FetchChains(ctx)
	if err != nil {
		r.log.Warn(ctx, "chain feed fetch failed, using cached and static data", "error", err)
		return
	}

	r.mu.Lock()
	for _, c := range chains {
		r.chains[strings.ToLower(c.LogicalName)] = c
	}
	r.chainsFetched = r.now()
	r.mu.Unlock()
}

func (r *Resolver) refreshTokens(ctx context.Context, chainID int64) {
	if r.tokenFeed == nil {
		return
	}

	r.mu.RLock()
	fetched, ok := r.tokensFetched[chainID]
	fresh := ok && !fetched.IsZero() && r.now().Sub(fetched) < r.ttl
	r.mu.RUnlock()
	if fresh {
		return
	}

	tokens, err := r.tokenFeed.FetchTokens(ctx, chainID)
	if err != nil {
		r.log.Warn(ctx, "token feed fetch failed, using cached and static data",
			"chain_id", chainID, "error", err)
		return
	}

	bySymbol := make(map[string]domain.TokenDescriptor, len(tokens))
	for _, t := range tokens {
		bySymbol[strings.ToUpper(t.Symbol)] = t
	}

	r.mu.Lock()
	r.tokens[chainID] = bySymbol
	r.tokensFetched[chainID] = r.now()
	r.mu.Unlock()
}
