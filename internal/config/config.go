// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig        `mapstructure:"app"`
	Market    MarketConfig     `mapstructure:"market"`
	Providers []ProviderConfig `mapstructure:"providers"`
	Fees      FeesConfig       `mapstructure:"fees"`
	Telemetry TelemetryConfig  `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	HealthPort  int    `mapstructure:"health_port"`
}

// MarketConfig holds token and chain metadata feed configuration.
type MarketConfig struct {
	ChainFeedURL string        `mapstructure:"chain_feed_url"`
	TokenFeedURL string        `mapstructure:"token_feed_url"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	FeedTimeout  time.Duration `mapstructure:"feed_timeout"`
	FeedRetries  int           `mapstructure:"feed_retries"`
}

// ProviderConfig holds per-provider quote API configuration.
type ProviderConfig struct {
	Name            string        `mapstructure:"name"`
	BaseURL         string        `mapstructure:"base_url"`
	Priority        int           `mapstructure:"priority"`
	Enabled         bool          `mapstructure:"enabled"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RateLimitPerMin int           `mapstructure:"rate_limit_per_min"`
	Chains          []string      `mapstructure:"chains"`
	APIKey          string        `mapstructure:"api_key"`
}

// FeesConfig holds fee schedule and profitability thresholds.
type FeesConfig struct {
	Gas          float64 `mapstructure:"gas"`
	Network      float64 `mapstructure:"network"`
	BridgeRate   float64 `mapstructure:"bridge_rate"`
	DexRate      float64 `mapstructure:"dex_rate"`
	MinProfitPct float64 `mapstructure:"min_profit_pct"`
}

// GasDecimal returns the flat gas fee as decimal.Decimal.
func (c *FeesConfig) GasDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Gas)
}

// NetworkDecimal returns the flat network fee as decimal.Decimal.
func (c *FeesConfig) NetworkDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Network)
}

// BridgeRateDecimal returns the bridge fee rate as decimal.Decimal.
func (c *FeesConfig) BridgeRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.BridgeRate)
}

// DexRateDecimal returns the DEX fee rate as decimal.Decimal.
func (c *FeesConfig) DexRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.DexRate)
}

// MinProfitPctDecimal returns the minimum profit threshold as decimal.Decimal.
func (c *FeesConfig) MinProfitPctDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinProfitPct)
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("CROSSARB")
	v.AutomaticEnv()

	// Bind env vars to config keys
	bindEnvVars(v)

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "CROSSARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "CROSSARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "CROSSARB_LOG_LEVEL", "LOG_LEVEL")
	v.BindEnv("app.health_port", "CROSSARB_HEALTH_PORT")

	// Market feeds
	v.BindEnv("market.chain_feed_url", "CROSSARB_CHAIN_FEED_URL")
	v.BindEnv("market.token_feed_url", "CROSSARB_TOKEN_FEED_URL")
	v.BindEnv("market.cache_ttl", "CROSSARB_CACHE_TTL")

	// Fees
	v.BindEnv("fees.gas", "CROSSARB_FEE_GAS")
	v.BindEnv("fees.network", "CROSSARB_FEE_NETWORK")
	v.BindEnv("fees.bridge_rate", "CROSSARB_FEE_BRIDGE_RATE")
	v.BindEnv("fees.dex_rate", "CROSSARB_FEE_DEX_RATE")
	v.BindEnv("fees.min_profit_pct", "CROSSARB_MIN_PROFIT_PCT")

	// Telemetry
	v.BindEnv("telemetry.enabled", "CROSSARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "CROSSARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.trace_provider", "CROSSARB_TRACE_PROVIDER")
	v.BindEnv("telemetry.otlp_endpoint", "CROSSARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "crossarb")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.health_port", 8081)

	// Market defaults
	v.SetDefault("market.chain_feed_url", "https://chainid.network/chains.json")
	v.SetDefault("market.token_feed_url", "https://tokens.coingecko.com/uniswap/all.json")
	v.SetDefault("market.cache_ttl", "5m")
	v.SetDefault("market.feed_timeout", "10s")
	v.SetDefault("market.feed_retries", 3)

	// Provider defaults
	v.SetDefault("providers", []map[string]any{
		{"name": "sushiswap", "base_url": "https://api.sushi.com", "priority": 1, "enabled": true, "timeout": "5s", "rate_limit_per_min": 120, "chains": []string{"ethereum", "polygon", "arbitrum"}},
		{"name": "oneinch", "base_url": "https://api.1inch.dev", "priority": 2, "enabled": true, "timeout": "5s", "rate_limit_per_min": 60, "chains": []string{"ethereum", "polygon", "bsc"}},
		{"name": "paraswap", "base_url": "https://apiv5.paraswap.io", "priority": 3, "enabled": true, "timeout": "5s", "rate_limit_per_min": 60, "chains": []string{"ethereum", "polygon"}},
		{"name": "kyberswap", "base_url": "https://aggregator-api.kyberswap.com", "priority": 4, "enabled": true, "timeout": "5s", "rate_limit_per_min": 60, "chains": []string{"ethereum", "arbitrum"}},
	})

	// Fee defaults
	v.SetDefault("fees.gas", 0.01)
	v.SetDefault("fees.network", 0.005)
	v.SetDefault("fees.bridge_rate", 0.003)
	v.SetDefault("fees.dex_rate", 0.003)
	v.SetDefault("fees.min_profit_pct", 0)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "crossarb")
	v.SetDefault("telemetry.trace_provider", "EMPTY_PROVIDER")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Market.ChainFeedURL == "" {
		return fmt.Errorf("market.chain_feed_url is required")
	}
	if c.Market.TokenFeedURL == "" {
		return fmt.Errorf("market.token_feed_url is required")
	}
	if c.Market.CacheTTL <= 0 {
		return fmt.Errorf("market.cache_ttl must be positive")
	}
	if len(c.Providers) == 0 {
		return fmt.Errorf("providers cannot be empty")
	}
	seen := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("provider name is required")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate provider: %s", p.Name)
		}
		seen[p.Name] = true
		if p.BaseURL == "" {
			return fmt.Errorf("provider %s: base_url is required", p.Name)
		}
	}
	if c.Fees.Gas < 0 || c.Fees.Network < 0 {
		return fmt.Errorf("flat fees cannot be negative")
	}
	if c.Fees.BridgeRate < 0 || c.Fees.BridgeRate >= 1 {
		return fmt.Errorf("fees.bridge_rate must be in [0, 1)")
	}
	if c.Fees.DexRate < 0 || c.Fees.DexRate >= 1 {
		return fmt.Errorf("fees.dex_rate must be in [0, 1)")
	}
	for _, p := range c.Providers {
		if p.APIKey != "" && len(p.APIKey) < 8 {
			return fmt.Errorf("provider %s: api_key looks truncated", p.Name)
		}
	}
	return nil
}
