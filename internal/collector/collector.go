package collector

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"StockLens/internal/cache"
	"StockLens/internal/metrics"
	"StockLens/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  map[string][]model.OHLCV
	Errs  map[string]error
	End   time.Time

	mu    sync.Mutex
	calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, period Period) ([]model.OHLCV, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		return bars, nil
	}
	end := m.End
	if end.IsZero() {
		end = time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	}
	return generateMockBars(m.Price, period.TradingDays(), end), nil
}

// Calls reports how many fetches reached the mock.
func (m *MockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// generateMockBars draws a gentle sine around basePrice so both RSI zones occur.
func generateMockBars(basePrice float64, count int, end time.Time) []model.OHLCV {
	if basePrice <= 0 {
		basePrice = 100
	}
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + 0.05*math.Sin(float64(i)/8))
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Result is the outcome of fetching one ticker.
type Result struct {
	Symbol string
	Series *model.PriceSeries
	Err    error
}

// Options tunes a Collector.
type Options struct {
	Store    cache.Store
	CacheTTL time.Duration
	Workers  int
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
}

// Collector orchestrates cached, concurrent data fetching.
type Collector struct {
	fetcher Fetcher
	store   cache.Store
	ttl     time.Duration
	workers int
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, opts Options) *Collector {
	c := &Collector{
		fetcher: fetcher,
		store:   opts.Store,
		ttl:     opts.CacheTTL,
		workers: opts.Workers,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	if c.store == nil {
		c.store = cache.NewMemoryStore()
	}
	if c.ttl <= 0 {
		c.ttl = 15 * time.Minute
	}
	if c.workers <= 0 {
		c.workers = 4
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Source names the underlying provider.
func (c *Collector) Source() string { return c.fetcher.Name() }

// FetchSeries returns the daily series for one symbol, from cache when fresh.
func (c *Collector) FetchSeries(ctx context.Context, symbol string, period Period) (*model.PriceSeries, error) {
	key := cache.Key(c.fetcher.Name(), symbol, string(period))
	if bars, ok := c.store.Get(ctx, key); ok {
		c.metrics.ObserveCacheHit()
		return &model.PriceSeries{Symbol: symbol, Period: string(period), Bars: bars, FetchedAt: time.Now()}, nil
	}

	bars, err := c.fetcher.FetchDailyBars(ctx, symbol, period)
	c.metrics.ObserveFetch(c.fetcher.Name(), err)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("fetch %s: %w", symbol, ErrNoData)
	}
	c.store.Set(ctx, key, bars, c.ttl)

	c.logger.Debug("fetched daily bars",
		zap.String("provider", c.fetcher.Name()),
		zap.String("symbol", symbol),
		zap.String("period", string(period)),
		zap.Int("count", len(bars)))
	return &model.PriceSeries{Symbol: symbol, Period: string(period), Bars: bars, FetchedAt: time.Now()}, nil
}

// Collect fetches every ticker with a bounded number of workers. Results keep
// the input order and one ticker's failure never affects the others.
func (c *Collector) Collect(ctx context.Context, tickers []string, period Period) []Result {
	results := make([]Result, len(tickers))
	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup

	for i, symbol := range tickers {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = Result{Symbol: symbol, Err: ctx.Err()}
				return
			}
			series, err := c.FetchSeries(ctx, symbol, period)
			if err != nil {
				c.logger.Warn("collect failed", zap.String("symbol", symbol), zap.Error(err))
			}
			results[i] = Result{Symbol: symbol, Series: series, Err: err}
		}(i, symbol)
	}
	wg.Wait()
	return results
}
