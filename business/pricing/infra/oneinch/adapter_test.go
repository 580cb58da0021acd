package oneinch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crossarb/crossarb/business/pricing/domain"
	"github.com/crossarb/crossarb/internal/apperror"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
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

func testRequest() domain.QuoteRequest {
	return domain.QuoteRequest{
		ChainID:          1,
		TokenIn:          common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
		TokenOut:         common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
		TokenInDecimals:  6,
		TokenOutDecimals: 18,
		AmountIn:         "1000000000",
		Slippage:         decimal.NewFromFloat(0.005),
	}
}

func newTestAdapter(t *testing.T, baseURL string) *Adapter {
	t.Helper()
	a, err := New(domain.ProviderConfig{
		ID:                 providerID,
		Enabled:            true,
		Priority:           2,
		BaseURL:            baseURL,
		Timeout:            2 * time.Second,
		RateLimitPerMinute: 600,
		APIKey:             "test-api-key-123",
	}, &mockLogger{})
	if err != nil {
		t.Fatalf("failed to create adapter: %v", err)
	}
	return a
}

func TestQuote(t *testing.T) {
	t.Run("maps quote and derives price impact from probe", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer test-api-key-123" {
				t.Errorf("expected bearer auth header, got %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Query().Get("amount") {
			case "1000000000":
				// full amount: realized price 0.38 out per in
				w.Write([]byte(`{"dstAmount": "380000000000000000000", "gas": 180000,
					"protocols": [[[{"name": "UNISWAP_V3", "part": 100,
						"fromTokenAddress": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
						"toTokenAddress": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"}]]]}`))
			case "10000000":
				// probe amount: marginal price 0.4 out per in
				w.Write([]byte(`{"dstAmount": "4000000000000000000", "gas": 180000}`))
			default:
				t.Errorf("unexpected amount %s", r.URL.Query().Get("amount"))
				w.WriteHeader(http.StatusBadRequest)
			}
		}))
		defer server.Close()

		a := newTestAdapter(t, server.URL)
		quote, err := a.Quote(context.Background(), testRequest())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if quote.AmountOut != "380000000000000000000" {
			t.Errorf("unexpected amountOut: %s", quote.AmountOut)
		}
		if !quote.SwapPrice.Equal(decimal.NewFromFloat(0.38)) {
			t.Errorf("expected swap price 0.38, got %s", quote.SwapPrice)
		}
		// impact = 1 - 0.38/0.4 = 0.05
		if !quote.PriceImpact.Equal(decimal.NewFromFloat(0.05)) {
			t.Errorf("expected price impact 0.05, got %s", quote.PriceImpact)
		}
		if len(quote.Route) != 1 || quote.Route[0].DexName != "UNISWAP_V3" {
			t.Errorf("unexpected route: %+v", quote.Route)
		}
	})

	t.Run("probe failure falls back to default impact", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if r.URL.Query().Get("amount") == "1000000000" {
				w.Write([]byte(`{"dstAmount": "380000000000000000000", "gas": 180000}`))
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		a := newTestAdapter(t, server.URL)
		quote, err := a.Quote(context.Background(), testRequest())
		if err != nil {
			t.Fatalf("probe failure must not fail the quote: %v", err)
		}
		if !quote.PriceImpact.Equal(defaultPriceImpact) {
			t.Errorf("expected default impact %s, got %s", defaultPriceImpact, quote.PriceImpact)
		}
		// no protocols in the payload collapses to a single whole-swap step
		if len(quote.Route) != 1 || quote.Route[0].DexName != providerID {
			t.Errorf("expected synthetic route, got %+v", quote.Route)
		}
		if quote.Route[0].AmountOut != "380000000000000000000" {
			t.Errorf("synthetic step amountOut = %s", quote.Route[0].AmountOut)
		}
	})

	t.Run("provider-reported error surfaces its description", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "Bad Request", "description": "insufficient liquidity", "statusCode": 400}`))
		}))
		defer server.Close()

		a := newTestAdapter(t, server.URL)
		_, err := a.Quote(context.Background(), testRequest())
		if !apperror.IsCode(err, apperror.CodeQuoteUnavailable) {
			t.Fatalf("expected CodeQuoteUnavailable, got %v", err)
		}
	})

	t.Run("missing dstAmount is malformed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"gas": 180000}`))
		}))
		defer server.Close()

		a := newTestAdapter(t, server.URL)
		_, err := a.Quote(context.Background(), testRequest())
		if !apperror.IsCode(err, apperror.CodeMalformedPayload) {
			t.Errorf("expected CodeMalformedPayload, got %v", err)
		}
	})
}

func TestReferenceAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1000000000", "10000000"},
		{"50", "1"},
		{"1", "1"},
		{"abc", ""},
		{"0", ""},
	}

	for _, tt := range tests {
		if got := referenceAmount(tt.in); got != tt.want {
			t.Errorf("referenceAmount(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
