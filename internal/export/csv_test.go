package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/model"
	"StockLens/internal/strategy"
)

func risingSeries(symbol string, n int) *model.PriceSeries {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, n)
	for i := range bars {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Close: 100 + float64(i)*0.5}
	}
	return &model.PriceSeries{Symbol: symbol, Period: "1mo", Bars: bars}
}

func TestWriteCSV(t *testing.T) {
	a := strategy.Analyze(risingSeries("AAPL", 21), strategy.DefaultParams())

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, a))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 22)
	assert.Equal(t, "Date,Close,SMA20,RSI", lines[0])
	assert.Equal(t, "2025-01-01,100,,", lines[1], "warm-up cells are empty")
	assert.Equal(t, "2025-01-15,107,,100", lines[15], "RSI defined from index 14")
	assert.Equal(t, "2025-01-20,109.5,104.75,100", lines[20])
	assert.Equal(t, "2025-01-21,110,105.25,100", lines[21])
}

func TestWriteCSV_Empty(t *testing.T) {
	a := strategy.Analyze(&model.PriceSeries{Symbol: "NONE"}, strategy.DefaultParams())

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, a))
	assert.Equal(t, "Date,Close,SMA20,RSI\n", buf.String())
}

func TestWriteDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	analyses := []*model.Analysis{
		strategy.Analyze(risingSeries("AAPL", 5), strategy.DefaultParams()),
		strategy.Analyze(risingSeries("MSFT", 5), strategy.DefaultParams()),
	}

	paths, err := WriteDir(dir, analyses)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "AAPL_data.csv"), paths[0])

	raw, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "Date,Close,SMA20,RSI\n2025-01-01,100,,\n"))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "TSLA_data.csv", FileName("TSLA"))
}
