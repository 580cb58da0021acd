package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crossarb/crossarb/business/market/domain"
	"github.com/crossarb/crossarb/internal/apperror"
	"github.com/ethereum/go-ethereum/common"
)

// mockLogger implements logger.LoggerInterface for testing.
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

type stubChainFeed struct {
	chains []domain.ChainDescriptor
	err    error
	calls  int
}

func (f *stubChainFeed) FetchChains(ctx context.Context) ([]domain.ChainDescriptor, error) {
	f.calls++
	return f.chains, f.err
}

type stubTokenFeed struct {
	tokens map[int64][]domain.TokenDescriptor
	err    error
	calls  int
}

func (f *stubTokenFeed) FetchTokens(ctx context.Context, chainID int64) ([]domain.TokenDescriptor, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tokens[chainID], nil
}

func TestResolveChainID(t *testing.T) {
	ctx := context.Background()

	t.Run("dynamic feed entry wins over static table", func(t *testing.T) {
		feed := &stubChainFeed{chains: []domain.ChainDescriptor{
			{LogicalName: "ethereum", ChainID: 99, NativeSymbol: "ETH"},
		}}
		r := NewResolver(feed, nil, &mockLogger{})

		id, err := r.ResolveChainID(ctx, "ethereum")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != 99 {
			t.Errorf("expected dynamic chain id 99, got %d", id)
		}
	})

	t.Run("static fallback when feed lacks the chain", func(t *testing.T) {
		r := NewResolver(&stubChainFeed{}, nil, &mockLogger{})

		id, err := r.ResolveChainID(ctx, "polygon")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != 137 {
			t.Errorf("expected 137, got %d", id)
		}
	})

	t.Run("static fallback when feed errors", func(t *testing.T) {
		feed := &stubChainFeed{err: errors.New("connection refused")}
		r := NewResolver(feed, nil, &mockLogger{})

		id, err := r.ResolveChainID(ctx, "ethereum")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != 1 {
			t.Errorf("expected 1, got %d", id)
		}
	})

	t.Run("case insensitive name", func(t *testing.T) {
		r := NewResolver(nil, nil, &mockLogger{})

		id, err := r.ResolveChainID(ctx, "Ethereum")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != 1 {
			t.Errorf("expected 1, got %d", id)
		}
	})

	t.Run("unknown chain fails with ChainNotFound", func(t *testing.T) {
		r := NewResolver(nil, nil, &mockLogger{})

		_, err := r.ResolveChainID(ctx, "atlantis")
		if !apperror.IsCode(err, apperror.CodeChainNotFound) {
			t.Errorf("expected CodeChainNotFound, got %v", err)
		}
	})

	t.Run("runtime AddChain takes precedence", func(t *testing.T) {
		r := NewResolver(nil, nil, &mockLogger{})
		r.AddChain(domain.ChainDescriptor{LogicalName: "devnet", ChainID: 31337, NativeSymbol: "ETH"})

		id, err := r.ResolveChainID(ctx, "devnet")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != 31337 {
			t.Errorf("expected 31337, got %d", id)
		}
	})
}

func TestResolveToken(t *testing.T) {
	ctx := context.Background()

	feedToken := domain.TokenDescriptor{
		ChainID:  1,
		Address:  common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Symbol:   "FOO",
		Name:     "Foo Token",
		Decimals: 12,
	}

	t.Run("feed entry resolved case insensitively", func(t *testing.T) {
		feed := &stubTokenFeed{tokens: map[int64][]domain.TokenDescriptor{1: {feedToken}}}
		r := NewResolver(nil, feed, &mockLogger{})

		got, err := r.ResolveToken(ctx, "ethereum", "foo")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Decimals != 12 || got.Address != feedToken.Address {
			t.Errorf("unexpected descriptor: %+v", got)
		}
	})

	t.Run("static fallback carries well-known decimals", func(t *testing.T) {
		r := NewResolver(nil, &stubTokenFeed{}, &mockLogger{})

		got, err := r.ResolveToken(ctx, "ethereum", "usdc")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Decimals != 6 {
			t.Errorf("expected 6 decimals for USDC, got %d", got.Decimals)
		}
	})

	t.Run("feed error falls through to static map", func(t *testing.T) {
		feed := &stubTokenFeed{err: errors.New("timeout")}
		r := NewResolver(nil, feed, &mockLogger{})

		got, err := r.ResolveToken(ctx, "ethereum", "WETH")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Decimals != 18 {
			t.Errorf("expected 18 decimals for WETH, got %d", got.Decimals)
		}
	})

	t.Run("missing token fails with TokenNotFound", func(t *testing.T) {
		r := NewResolver(nil, &stubTokenFeed{}, &mockLogger{})

		_, err := r.ResolveToken(ctx, "ethereum", "NOPE")
		if !apperror.IsCode(err, apperror.CodeTokenNotFound) {
			t.Errorf("expected CodeTokenNotFound, got %v", err)
		}
	})

	t.Run("missing chain fails before token lookup", func(t *testing.T) {
		r := NewResolver(nil, &stubTokenFeed{}, &mockLogger{})

		_, err := r.ResolveToken(ctx, "atlantis", "USDC")
		if !apperror.IsCode(err, apperror.CodeChainNotFound) {
			t.Errorf("expected CodeChainNotFound, got %v", err)
		}
	})
}

func TestResolverCache(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh cache skips refetch", func(t *testing.T) {
		feed := &stubChainFeed{chains: []domain.ChainDescriptor{
			{LogicalName: "ethereum", ChainID: 1, NativeSymbol: "ETH"},
		}}
		r := NewResolver(feed, nil, &mockLogger{})

		for i := 0; i < 3; i++ {
			if _, err := r.ResolveChainID(ctx, "ethereum"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if feed.calls != 1 {
			t.Errorf("expected 1 feed call, got %d", feed.calls)
		}
	})

	t.Run("expired TTL triggers refetch", func(t *testing.T) {
		now := time.Now()
		feed := &stubChainFeed{chains: []domain.ChainDescriptor{
			{LogicalName: "ethereum", ChainID: 1, NativeSymbol: "ETH"},
		}}
		r := NewResolver(feed, nil, &mockLogger{},
			WithCacheTTL(time.Minute),
			WithClock(func() time.Time { return now }),
		)

		r.ResolveChainID(ctx, "ethereum")
		now = now.Add(2 * time.Minute)
		r.ResolveChainID(ctx, "ethereum")

		if feed.calls != 2 {
			t.Errorf("expected 2 feed calls, got %d", feed.calls)
		}
	})

	t.Run("invalidate drops cached data", func(t *testing.T) {
		feed := &stubChainFeed{chains: []domain.ChainDescriptor{
			{LogicalName: "ethereum", ChainID: 1, NativeSymbol: "ETH"},
		}}
		r := NewResolver(feed, nil, &mockLogger{})

		r.ResolveChainID(ctx, "ethereum")
		r.Invalidate()
		r.ResolveChainID(ctx, "ethereum")

		if feed.calls != 2 {
			t.Errorf("expected 2 feed calls, got %d", feed.calls)
		}
	})

	t.Run("refresh refetches chains and cached token lists", func(t *testing.T) {
		chainFeed := &stubChainFeed{chains: []domain.ChainDescriptor{
			{LogicalName: "ethereum", ChainID: 1, NativeSymbol: "ETH"},
		}}
		tokenFeed := &stubTokenFeed{tokens: map[int64][]domain.TokenDescriptor{1: {{
			ChainID: 1, Symbol: "FOO", Decimals: 18,
		}}}}
		r := NewResolver(chainFeed, tokenFeed, &mockLogger{})

		r.ResolveToken(ctx, "ethereum", "FOO")
		r.Refresh(ctx)

		if chainFeed.calls != 2 {
			t.Errorf("expected 2 chain feed calls, got %d", chainFeed.calls)
		}
		if tokenFeed.calls != 2 {
			t.Errorf("expected 2 token feed calls, got %d", tokenFeed.calls)
		}
	})
}
