package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"StockLens/internal/analyzer"
	"StockLens/internal/cache"
	"StockLens/internal/collector"
	"StockLens/internal/config"
	"StockLens/internal/logger"
	"StockLens/internal/metrics"
	"StockLens/internal/strategy"
)

const janitorInterval = 5 * time.Minute

// app is the wired component graph shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
	analyzer *analyzer.Analyzer
	closers  []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close component", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildApp loads configuration and wires the fetch and analysis path.
func buildApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: log, metrics: metrics.New()}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}
	store := a.newStore(ctx)

	col := collector.NewCollector(fetcher, collector.Options{
		Store:    store,
		CacheTTL: cfg.Cache.TTL,
		Workers:  cfg.Scan.Workers,
		Logger:   log,
		Metrics:  a.metrics,
	})
	a.analyzer = analyzer.New(col, strategyParams(cfg), a.metrics, log)

	log.Info("stocklens configured",
		zap.String("provider", fetcher.Name()),
		zap.Int("sma_window", cfg.Indicators.SMAWindow),
		zap.Int("rsi_period", cfg.Indicators.RSIPeriod),
		zap.String("rsi_method", cfg.Indicators.RSIMethod))
	return a, nil
}

// newFetcher selects the price provider named in the config.
func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	ds := cfg.DataSource
	switch ds.Provider {
	case "yahoo":
		return collector.NewYahooFetcher(ds.Proxy, ds.Timeout), nil
	case "alphavantage":
		return collector.NewAlphaVantageFetcher(ds.APIKey, ds.Proxy, ds.Timeout), nil
	case "polygon":
		f, err := collector.NewPolygonFetcher(ds.APIKey)
		if err != nil {
			return nil, err
		}
		return f, nil
	case "mock":
		return &collector.MockFetcher{Price: 100}, nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", ds.Provider)
	}
}

// newStore prefers Redis when configured and falls back to memory if it is
// unreachable.
func (a *app) newStore(ctx context.Context) cache.Store {
	c := a.cfg.Cache
	if c.RedisAddr != "" {
		rs, err := cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		}, a.logger)
		if err == nil {
			a.closers = append(a.closers, rs.Close)
			return rs
		}
		a.logger.Warn("redis cache unavailable, using memory", zap.Error(err))
	}
	ms := cache.NewMemoryStore()
	ms.StartJanitor(ctx, janitorInterval)
	return ms
}

func strategyParams(cfg *config.Config) strategy.Params {
	ind := cfg.Indicators
	return strategy.Params{
		SMAWindow: ind.SMAWindow,
		RSIPeriod: ind.RSIPeriod,
		RSIMethod: ind.RSIMethod,
		BBWindow:  ind.BBWindow,
		BBK:       ind.BBK,
		Thresholds: strategy.Thresholds{
			Oversold:   ind.Oversold,
			Overbought: ind.Overbought,
		},
	}
}
