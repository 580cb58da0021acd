package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for explicit missing config file")
	}

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.App.Name != "crossarb" {
		t.Errorf("App.Name = %q, want crossarb", cfg.App.Name)
	}
	if cfg.Market.CacheTTL != 5*time.Minute {
		t.Errorf("Market.CacheTTL = %v, want 5m", cfg.Market.CacheTTL)
	}
	if len(cfg.Providers) != 4 {
		t.Fatalf("len(Providers) = %d, want 4", len(cfg.Providers))
	}
	if cfg.Providers[0].Name != "sushiswap" || cfg.Providers[0].Priority != 1 {
		t.Errorf("first provider = %s/%d, want sushiswap/1",
			cfg.Providers[0].Name, cfg.Providers[0].Priority)
	}
	if cfg.Fees.Gas != 0.01 || cfg.Fees.Network != 0.005 {
		t.Errorf("flat fee defaults = %v/%v, want 0.01/0.005", cfg.Fees.Gas, cfg.Fees.Network)
	}
	if cfg.Telemetry.Enabled {
		t.Error("telemetry should be disabled by default")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CROSSARB_LOG_LEVEL", "debug")
	t.Setenv("CROSSARB_FEE_GAS", "0.02")
	t.Setenv("CROSSARB_CHAIN_FEED_URL", "https://feeds.example.com/chains.json")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.App.LogLevel != "debug" {
		t.Errorf("App.LogLevel = %q, want debug", cfg.App.LogLevel)
	}
	if cfg.Fees.Gas != 0.02 {
		t.Errorf("Fees.Gas = %v, want 0.02", cfg.Fees.Gas)
	}
	if cfg.Market.ChainFeedURL != "https://feeds.example.com/chains.json" {
		t.Errorf("Market.ChainFeedURL = %q", cfg.Market.ChainFeedURL)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
app:
  name: crossarb-test
  log_level: warn
fees:
  bridge_rate: 0.004
providers:
  - name: sushiswap
    base_url: https://api.sushi.com
    priority: 1
    enabled: true
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.App.Name != "crossarb-test" {
		t.Errorf("App.Name = %q, want crossarb-test", cfg.App.Name)
	}
	if cfg.Fees.BridgeRate != 0.004 {
		t.Errorf("Fees.BridgeRate = %v, want 0.004", cfg.Fees.BridgeRate)
	}
	if len(cfg.Providers) != 1 {
		t.Errorf("len(Providers) = %d, want 1 (file replaces defaults)", len(cfg.Providers))
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Market: MarketConfig{
				ChainFeedURL: "https://chainid.network/chains.json",
				TokenFeedURL: "https://tokens.coingecko.com/uniswap/all.json",
				CacheTTL:     time.Minute,
			},
			Providers: []ProviderConfig{
				{Name: "sushiswap", BaseURL: "https://api.sushi.com"},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing chain feed", func(c *Config) { c.Market.ChainFeedURL = "" }, true},
		{"zero cache ttl", func(c *Config) { c.Market.CacheTTL = 0 }, true},
		{"no providers", func(c *Config) { c.Providers = nil }, true},
		{"duplicate provider", func(c *Config) {
			c.Providers = append(c.Providers, ProviderConfig{Name: "sushiswap", BaseURL: "https://example.com"})
		}, true},
		{"provider without base url", func(c *Config) { c.Providers[0].BaseURL = "" }, true},
		{"bridge rate out of range", func(c *Config) { c.Fees.BridgeRate = 1.0 }, true},
		{"negative dex rate", func(c *Config) { c.Fees.DexRate = -0.1 }, true},
		{"truncated api key", func(c *Config) { c.Providers[0].APIKey = "abc" }, true},
		{"valid api key", func(c *Config) { c.Providers[0].APIKey = "abcdefgh1234" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
