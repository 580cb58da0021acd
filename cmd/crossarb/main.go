// Package main is the entry point for the cross-chain arbitrage quote
// engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	arbitrageapp "github.com/crossarb/crossarb/business/arbitrage/app"
	arbitragedomain "github.com/crossarb/crossarb/business/arbitrage/domain"
	"github.com/crossarb/crossarb/business/arbitrage/infra/console"
	marketapp "github.com/crossarb/crossarb/business/market/app"
	marketdomain "github.com/crossarb/crossarb/business/market/domain"
	"github.com/crossarb/crossarb/business/market/infra/feed"
	pricingapp "github.com/crossarb/crossarb/business/pricing/app"
	pricingdomain "github.com/crossarb/crossarb/business/pricing/domain"
	"github.com/crossarb/crossarb/business/pricing/infra/kyberswap"
	"github.com/crossarb/crossarb/business/pricing/infra/oneinch"
	"github.com/crossarb/crossarb/business/pricing/infra/paraswap"
	"github.com/crossarb/crossarb/business/pricing/infra/sushiswap"
	"github.com/crossarb/crossarb/internal/apm"
	"github.com/crossarb/crossarb/internal/config"
	"github.com/crossarb/crossarb/internal/health"
	"github.com/crossarb/crossarb/internal/logger"
	"github.com/crossarb/crossarb/internal/metrics"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type cliFlags struct {
	configPath string
	mode       string

	sourceChain string
	targetChain string
	sourceToken string
	targetToken string
	amount      string
	slippage    float64
	provider    string
	minProfit   float64
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	var flags cliFlags
	flag.StringVar(&flags.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&flags.mode, "mode", "compose", "Run mode: compose or compare")
	flag.StringVar(&flags.sourceChain, "source-chain", "ethereum", "Source chain name")
	flag.StringVar(&flags.targetChain, "target-chain", "polygon", "Target chain name")
	flag.StringVar(&flags.sourceToken, "source-token", "USDC", "Source token symbol")
	flag.StringVar(&flags.targetToken, "target-token", "WETH", "Target token symbol")
	flag.StringVar(&flags.amount, "amount", "100", "Input amount in source-token units")
	flag.Float64Var(&flags.slippage, "slippage", 0.005, "Slippage tolerance as a fraction")
	flag.StringVar(&flags.provider, "provider", "", "Preferred provider id")
	flag.Float64Var(&flags.minProfit, "min-profit-pct", 0, "Minimum net profit percentage")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("crossarb %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	if err := run(ctx, flags); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, flags cliFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}
	log := logger.New(os.Stderr, logLevel, cfg.App.Name, nil)

	log.Info(ctx, "starting cross-chain arbitrage quote engine",
		"version", version,
		"environment", cfg.App.Environment,
	)

	// Observability
	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}
		if cfg.Telemetry.OTLPHeaders != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_HEADERS", cfg.Telemetry.OTLPHeaders)
		}

		traceProvider = apm.NewTraceProvider(log,
			apm.WithProvider(apm.Provider(cfg.Telemetry.TraceProvider), log))
		log.Info(ctx, "tracing initialized", "provider", cfg.Telemetry.TraceProvider)

		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.NewPrometheusConfig()),
		)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	// Metadata feeds and resolver
	chainFeed := feed.NewChainListFeed(cfg.Market.ChainFeedURL, cfg.Market.FeedTimeout, cfg.Market.FeedRetries)
	tokenFeed := feed.NewTokenListFeed(cfg.Market.TokenFeedURL, cfg.Market.FeedTimeout, cfg.Market.FeedRetries)
	resolver := marketapp.NewResolver(chainFeed, tokenFeed, log,
		marketapp.WithCacheTTL(cfg.Market.CacheTTL))

	// Provider registry and adapters
	registry, err := buildRegistry(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build provider registry: %w", err)
	}

	// Health endpoints
	healthServer := health.NewServer(cfg.App.HealthPort, version)
	healthServer.RegisterCheck("metadata_feed", func(ctx context.Context) (bool, string) {
		return resolver.FeedHealthy()
	})
	healthServer.RegisterCheck("providers", func(ctx context.Context) (bool, string) {
		if len(registry.Providers()) == 0 {
			return false, "no providers configured"
		}
		return true, ""
	})
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", cfg.App.HealthPort)
	}
	defer healthServer.Stop(ctx)

	composer := arbitrageapp.NewComposer(resolver, registry, log)
	reporter := console.NewReporter(os.Stdout)

	switch flags.mode {
	case "compose":
		return runCompose(ctx, composer, reporter, cfg, flags)
	case "compare":
		return runCompare(ctx, composer, reporter, flags)
	default:
		return fmt.Errorf("unknown mode %q (want compose or compare)", flags.mode)
	}
}

func runCompose(ctx context.Context, composer *arbitrageapp.Composer, reporter *console.Reporter, cfg *config.Config, flags cliFlags) error {
	strategy := arbitragedomain.Strategy{
		SourceChain:       flags.sourceChain,
		TargetChain:       flags.targetChain,
		SourceToken:       flags.sourceToken,
		TargetToken:       flags.targetToken,
		Amount:            flags.amount,
		Slippage:          decimal.NewFromFloat(flags.slippage),
		PreferredProvider: flags.provider,
		GasFee:            cfg.Fees.GasDecimal(),
		NetworkFee:        cfg.Fees.NetworkDecimal(),
		BridgeFee:         cfg.Fees.BridgeRateDecimal(),
		DexFee:            cfg.Fees.DexRateDecimal(),
		MinProfitPct:      decimal.NewFromFloat(flags.minProfit),
	}
	if strategy.MinProfitPct.IsZero() {
		strategy.MinProfitPct = cfg.Fees.MinProfitPctDecimal()
	}

	result, err := composer.ComposeArbitrage(ctx, strategy)
	if err != nil {
		return err
	}

	reporter.RenderResult(strategy, result)
	return nil
}

func runCompare(ctx context.Context, composer *arbitrageapp.Composer, reporter *console.Reporter, flags cliFlags) error {
	comparisons, err := composer.CompareProviders(ctx,
		flags.sourceChain, flags.sourceToken, flags.targetToken, flags.amount)
	if err != nil {
		return err
	}

	reporter.RenderComparison(flags.sourceChain, flags.sourceToken, flags.targetToken, comparisons)
	return nil
}

// buildRegistry maps provider configs to their adapters. Chains are
// pre-resolved from the static table so the registry stays pure.
func buildRegistry(cfg *config.Config, log logger.LoggerInterface) (*pricingapp.Registry, error) {
	providers := make([]pricingdomain.ProviderConfig, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		providers = append(providers, pricingdomain.ProviderConfig{
			ID:                 p.Name,
			Enabled:            p.Enabled,
			Priority:           p.Priority,
			SupportedChainIDs:  chainIDSet(p.Chains),
			BaseURL:            p.BaseURL,
			Timeout:            p.Timeout,
			RateLimitPerMinute: p.RateLimitPerMin,
			APIKey:             p.APIKey,
		})
	}

	registry := pricingapp.NewRegistry(providers)

	for _, p := range registry.Providers() {
		adapter, err := newAdapter(p, log)
		if err != nil {
			return nil, err
		}
		if adapter == nil {
			log.Warn(context.Background(), "no adapter for provider, skipping", "provider", p.ID)
			continue
		}
		if err := registry.Register(adapter); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

func newAdapter(p pricingdomain.ProviderConfig, log logger.LoggerInterface) (pricingapp.Adapter, error) {
	switch p.ID {
	case "sushiswap":
		return sushiswap.New(p, log)
	case "oneinch":
		return oneinch.New(p, log)
	case "paraswap":
		return paraswap.New(p, log)
	case "kyberswap":
		return kyberswap.New(p, log)
	default:
		return nil, nil
	}
}

func chainIDSet(names []string) map[int64]struct{} {
	ids := make(map[int64]struct{}, len(names))
	for _, name := range names {
		if c, ok := marketdomain.StaticChain(name); ok {
			ids[c.ChainID] = struct{}{}
		}
	}
	return ids
}
