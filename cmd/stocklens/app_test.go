package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/analyzer"
	"StockLens/internal/collector"
	"StockLens/internal/config"
	"StockLens/internal/model"
	"StockLens/internal/strategy"
)

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	return cfg
}

func TestNewFetcher(t *testing.T) {
	tests := []struct {
		provider string
		apiKey   string
		want     string
		wantErr  bool
	}{
		{provider: "yahoo", want: "yahoo"},
		{provider: "alphavantage", apiKey: "k", want: "alphavantage"},
		{provider: "polygon", apiKey: "k", want: "polygon"},
		{provider: "polygon", wantErr: true},
		{provider: "mock", want: "mock"},
		{provider: "bloomberg", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.provider+"/"+tt.apiKey, func(t *testing.T) {
			cfg := defaultConfig(t)
			cfg.DataSource.Provider = tt.provider
			cfg.DataSource.APIKey = tt.apiKey

			f, err := newFetcher(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Name())
		})
	}
}

func TestStrategyParams_Defaults(t *testing.T) {
	assert.Equal(t, strategy.DefaultParams(), strategyParams(defaultConfig(t)))
}

func TestResolveTickers(t *testing.T) {
	watchlist := []string{"AAPL", "GOOGL"}

	got, warning, err := resolveTickers([]string{"msft", " nvda", "MSFT"}, watchlist, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"MSFT", "NVDA"}, got)
	assert.Empty(t, warning)

	got, _, err = resolveTickers(nil, watchlist, 10)
	require.NoError(t, err)
	assert.Equal(t, watchlist, got)

	got, warning, err = resolveTickers([]string{"A", "B", "C"}, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, got)
	assert.Equal(t, "maximum 2 tickers allowed", warning)

	_, _, err = resolveTickers([]string{" "}, nil, 10)
	assert.Error(t, err)
}

func TestPrintReport(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, 40)
	for i := range bars {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Close: 100 - float64(i)}
	}
	mock := &collector.MockFetcher{
		Bars: map[string][]model.OHLCV{"DOWN": bars},
		Errs: map[string]error{"BAD": collector.ErrNoData},
	}
	an := analyzer.New(collector.NewCollector(mock, collector.Options{}), strategy.DefaultParams(), nil, nil)
	report := an.AnalyzeAll(context.Background(), []string{"DOWN", "BAD"}, collector.Period3Mo)

	var buf bytes.Buffer
	printReport(&buf, report)
	out := buf.String()

	assert.Contains(t, out, "Recommendations (3mo)")
	assert.Contains(t, out, "DOWN: BUY (Close: 61.00, SMA: 70.50, RSI: 0.00)")
	assert.Contains(t, out, "BAD: ")
	assert.Contains(t, out, "BUY 1 | SELL 0 | HOLD 0")
}

func TestNewApp_Commands(t *testing.T) {
	cmd := newApp()
	names := make([]string, 0, len(cmd.Commands))
	for _, c := range cmd.Commands {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"serve", "analyze", "export"}, names)
}
