package calculator

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/model"
)

func series(closes ...float64) *model.PriceSeries {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:  start.AddDate(0, 0, i),
			Open:  c,
			High:  c + 0.5,
			Low:   c - 0.5,
			Close: c,
		}
	}
	return &model.PriceSeries{Symbol: "TEST", Bars: bars}
}

func ramp(n int, start, step float64) *model.PriceSeries {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + float64(i)*step
	}
	return series(closes...)
}

func randomWalk(r *rand.Rand, n int) *model.PriceSeries {
	closes := make([]float64, n)
	p := 100.0
	for i := range closes {
		p += r.NormFloat64() * 2
		if p < 1 {
			p = 1
		}
		closes[i] = p
	}
	return series(closes...)
}

func TestComputeSMA_ShorterThanWindowIsUndefined(t *testing.T) {
	for n := 0; n < 20; n++ {
		out := ComputeSMA(ramp(n, 10, 1), 20)
		assert.Equal(t, n, out.Len())
		assert.Zero(t, out.Defined(), "n=%d", n)
	}
}

func TestComputeSMA_WarmupAndAlignment(t *testing.T) {
	prices := ramp(30, 10, 1)
	out := ComputeSMA(prices, 20)

	require.Equal(t, 30, out.Len())
	assert.Equal(t, 11, out.Defined())
	for i, p := range out.Points {
		assert.Equal(t, prices.Bars[i].Time, p.Time)
		assert.Equal(t, i >= 19, p.Value.IsSome(), "index %d", i)
	}
}

func TestComputeSMA_LastEqualsMeanOfWindow(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	prices := randomWalk(r, 120)
	out := ComputeSMA(prices, 20)

	closes := prices.Closes()
	sum := 0.0
	for _, c := range closes[len(closes)-20:] {
		sum += c
	}
	assert.InDelta(t, sum/20, out.Latest().Unwrap(), 1e-9)
}

func TestComputeSMA_Period3(t *testing.T) {
	out := ComputeSMA(series(100, 102, 104, 103, 105), 3)
	want := []float64{102, 103, 104}
	for i, w := range want {
		assert.InDelta(t, w, out.At(i+2).Unwrap(), 1e-9)
	}
	assert.True(t, out.At(1).IsNone())
}

func TestComputeSMA_NonPositiveWindow(t *testing.T) {
	assert.Zero(t, ComputeSMA(ramp(10, 1, 1), 0).Defined())
	assert.Zero(t, ComputeSMA(ramp(10, 1, 1), -3).Defined())
}

func TestComputeRSI_ShortSeriesIsUndefined(t *testing.T) {
	for n := 0; n <= 14; n++ {
		out := ComputeRSI(ramp(n, 10, 1), 14)
		assert.Equal(t, n, out.Len())
		assert.Zero(t, out.Defined(), "n=%d", n)
	}
}

func TestComputeRSI_ReferenceScenario(t *testing.T) {
	prices := series(44, 44.25, 44.5, 43.75, 44.5, 44.9, 45.0, 45.5, 45.0, 44.75, 44.5, 44.25, 44.0, 44.25, 44.5)
	out := ComputeRSI(prices, 14)

	require.Equal(t, 15, out.Len())
	assert.Equal(t, 1, out.Defined())
	// gains 2.75, losses 2.25 over 14 changes -> RS = 11/9 -> RSI = 55
	assert.InDelta(t, 55.0, out.At(14).Unwrap(), 1e-6)
}

func TestComputeRSI_WarmupBoundary(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	out := ComputeRSI(randomWalk(r, 40), 14)
	for i, p := range out.Points {
		assert.Equal(t, i >= 14, p.Value.IsSome(), "index %d", i)
	}
}

func TestComputeRSI_Monotonic(t *testing.T) {
	up := ComputeRSI(ramp(40, 10, 0.5), 14)
	assert.InDelta(t, 100.0, up.Latest().Unwrap(), 1e-9)

	down := ComputeRSI(ramp(40, 100, -0.5), 14)
	assert.InDelta(t, 0.0, down.Latest().Unwrap(), 1e-9)
}

func TestComputeRSI_FlatSeriesSaturates(t *testing.T) {
	out := ComputeRSI(series(5, 5, 5, 5, 5, 5), 3)
	assert.Equal(t, 100.0, out.Latest().Unwrap())
}

func TestComputeRSI_BoundedForRandomInputs(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		n := 15 + r.Intn(200)
		period := 2 + r.Intn(20)
		for _, compute := range []func(*model.PriceSeries, int) model.IndicatorSeries{ComputeRSI, ComputeCutlerRSI} {
			out := compute(randomWalk(r, n), period)
			for _, p := range out.Points {
				if p.Value.IsNone() {
					continue
				}
				v := p.Value.Unwrap()
				require.False(t, math.IsNaN(v))
				require.GreaterOrEqual(t, v, 0.0)
				require.LessOrEqual(t, v, 100.0)
			}
		}
	}
}

func TestCompute_Idempotent(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	prices := randomWalk(r, 150)

	sma1, sma2 := ComputeSMA(prices, 20), ComputeSMA(prices, 20)
	rsi1, rsi2 := ComputeRSI(prices, 14), ComputeRSI(prices, 14)
	for i := range prices.Bars {
		assert.Equal(t, math.Float64bits(sma1.At(i).TakeOr(math.NaN())), math.Float64bits(sma2.At(i).TakeOr(math.NaN())))
		assert.Equal(t, math.Float64bits(rsi1.At(i).TakeOr(math.NaN())), math.Float64bits(rsi2.At(i).TakeOr(math.NaN())))
	}
}

func TestComputeCutlerRSI_AgreesWithWilderAtSeed(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	prices := randomWalk(r, 60)
	wilder := ComputeRSI(prices, 14)
	cutler := ComputeCutlerRSI(prices, 14)

	assert.InDelta(t, wilder.At(14).Unwrap(), cutler.At(14).Unwrap(), 1e-9)
	assert.Equal(t, wilder.Defined(), cutler.Defined())
}

func TestComputeBollinger(t *testing.T) {
	// window 3 over 1,2,3: mean 2, sample sd 1
	bands := ComputeBollinger(series(1, 2, 3, 4), 3, 2)

	assert.True(t, bands.Upper.At(1).IsNone())
	assert.InDelta(t, 2.0, bands.Mid.At(2).Unwrap(), 1e-9)
	assert.InDelta(t, 4.0, bands.Upper.At(2).Unwrap(), 1e-9)
	assert.InDelta(t, 0.0, bands.Lower.At(2).Unwrap(), 1e-9)
	assert.InDelta(t, 5.0, bands.Upper.At(3).Unwrap(), 1e-9)
}

func TestComputeBollinger_DegenerateWindow(t *testing.T) {
	bands := ComputeBollinger(series(1, 2, 3), 1, 2)
	assert.Zero(t, bands.Mid.Defined())
	assert.Zero(t, bands.Upper.Defined())
}

func TestPeriodRange(t *testing.T) {
	high, low, err := PeriodRange(series(10, 12, 8, 11).Bars)
	require.NoError(t, err)
	assert.Equal(t, 12.5, high)
	assert.Equal(t, 7.5, low)

	_, _, err = PeriodRange(nil)
	assert.Error(t, err)
}

func TestRangePosition(t *testing.T) {
	pos, err := RangePosition(15, 20, 10)
	require.NoError(t, err)
	assert.Equal(t, 0.5, pos)

	pos, _ = RangePosition(25, 20, 10)
	assert.Equal(t, 1.0, pos)

	pos, _ = RangePosition(10, 10, 10)
	assert.Equal(t, 0.5, pos)

	_, err = RangePosition(1, 1, 2)
	assert.Error(t, err)
}
