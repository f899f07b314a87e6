package calculator

import (
	"fmt"
	"math"

	"github.com/moznion/go-optional"

	"StockLens/internal/model"
)

// Bands holds the three Bollinger lines.
type Bands struct {
	Upper model.IndicatorSeries
	Mid   model.IndicatorSeries
	Lower model.IndicatorSeries
}

// ComputeBollinger computes Mid = SMA(window) and Upper/Lower = Mid ± k·σ, where σ
// is the sample standard deviation (n-1) of the same window. Warm-up follows
// the SMA; window < 2 leaves all three lines undefined.
func ComputeBollinger(prices *model.PriceSeries, window int, k float64) Bands {
	bands := Bands{
		Upper: undefinedSeries(fmt.Sprintf("BB%d_Upper", window), prices),
		Mid:   ComputeSMA(prices, window),
		Lower: undefinedSeries(fmt.Sprintf("BB%d_Lower", window), prices),
	}
	bands.Mid.Name = fmt.Sprintf("BB%d_Mid", window)
	if window < 2 {
		bands.Mid = undefinedSeries(bands.Mid.Name, prices)
		return bands
	}

	for i, p := range bands.Mid.Points {
		if p.Value.IsNone() {
			continue
		}
		mid := p.Value.Unwrap()
		sd := sampleStdDev(prices.Bars[i-window+1:i+1], mid)
		bands.Upper.Points[i].Value = optional.Some(mid + k*sd)
		bands.Lower.Points[i].Value = optional.Some(mid - k*sd)
	}
	return bands
}

func sampleStdDev(bars []model.OHLCV, mean float64) float64 {
	var ss float64
	for _, b := range bars {
		d := b.Close - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(bars)-1))
}
