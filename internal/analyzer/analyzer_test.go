package analyzer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/collector"
	"StockLens/internal/metrics"
	"StockLens/internal/model"
	"StockLens/internal/strategy"
)

func trendBars(n int, step float64) []model.OHLCV {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, n)
	for i := range bars {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Close: 100 + step*float64(i)}
	}
	return bars
}

func newTestAnalyzer(mock *collector.MockFetcher) *Analyzer {
	col := collector.NewCollector(mock, collector.Options{Workers: 2})
	return New(col, strategy.DefaultParams(), metrics.New(), nil)
}

func TestAnalyzeAll(t *testing.T) {
	mock := &collector.MockFetcher{
		Bars: map[string][]model.OHLCV{
			"UP":   trendBars(40, 1),
			"DOWN": trendBars(40, -1),
			"NEW":  trendBars(5, 1),
		},
		Errs: map[string]error{"BAD": fmt.Errorf("mock: %w", collector.ErrNoData)},
	}
	a := newTestAnalyzer(mock)

	report := a.AnalyzeAll(context.Background(), []string{"UP", "BAD", "DOWN", "NEW"}, collector.Period3Mo)

	require.Len(t, report.Analyses, 3)
	assert.Equal(t, "UP", report.Analyses[0].Symbol)
	assert.Equal(t, model.SignalSell, report.Analyses[0].Recommendation)
	assert.Equal(t, model.SignalBuy, report.Analyses[1].Recommendation)
	assert.Equal(t, model.SignalHold, report.Analyses[2].Recommendation)
	assert.Equal(t, "3mo", report.Analyses[2].Period)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, "BAD", report.Failures[0].Symbol)
	assert.ErrorIs(t, report.Failures[0].Err(), collector.ErrNoData)
	assert.Equal(t, []string{"BAD"}, report.FailedSymbols())

	assert.Equal(t, model.Summary{Buy: 1, Sell: 1, Hold: 1}, report.Summary)
}

func TestAnalyzeOne(t *testing.T) {
	a := newTestAnalyzer(&collector.MockFetcher{Price: 50})

	got, err := a.AnalyzeOne(context.Background(), "AAPL", collector.Period1Mo)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, 22, got.Prices.Len())
	assert.True(t, got.LatestSMA.IsSome())

	_, err = newTestAnalyzer(&collector.MockFetcher{
		Errs: map[string]error{"X": collector.ErrNoData},
	}).AnalyzeOne(context.Background(), "X", collector.Period1Mo)
	assert.ErrorIs(t, err, collector.ErrNoData)
}
