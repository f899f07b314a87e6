package calculator

import (
	"fmt"

	"github.com/moznion/go-optional"

	"StockLens/internal/model"
)

// ComputeSMA computes the simple moving average over window closes.
// Entry i is defined only once i >= window-1; a series shorter than the
// window (or empty) comes back entirely undefined.
func ComputeSMA(prices *model.PriceSeries, window int) model.IndicatorSeries {
	out := undefinedSeries(fmt.Sprintf("SMA%d", window), prices)
	if window <= 0 || len(prices.Bars) < window {
		return out
	}
	for i := window - 1; i < len(prices.Bars); i++ {
		out.Points[i].Value = optional.Some(mean(prices.Bars[i-window+1 : i+1]))
	}
	return out
}

func mean(bars []model.OHLCV) float64 {
	sum := 0.0
	for _, b := range bars {
		sum += b.Close
	}
	return sum / float64(len(bars))
}
