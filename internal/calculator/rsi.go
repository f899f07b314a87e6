package calculator

import (
	"fmt"

	"github.com/moznion/go-optional"

	"StockLens/internal/model"
)

// ComputeRSI computes the Wilder-smoothed RSI over the given period.
// The first value lands on index period, seeded by the simple mean of the first
// period gains and losses; later values use (avg*(period-1)+x)/period.
// With period or fewer bars the whole series is undefined.
func ComputeRSI(prices *model.PriceSeries, period int) model.IndicatorSeries {
	out := undefinedSeries(fmt.Sprintf("RSI%d", period), prices)
	if period <= 0 || len(prices.Bars) <= period {
		return out
	}
	closes := prices.Closes()

	// Initial average gain/loss over the first `period` changes
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out.Points[period].Value = optional.Some(rsiFromAverages(avgGain, avgLoss))

	// Wilder smoothing for remaining bars
	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out.Points[i].Value = optional.Some(rsiFromAverages(avgGain, avgLoss))
	}
	return out
}

// ComputeCutlerRSI computes RSI from a rolling simple mean of the last period
// gains and losses instead of Wilder smoothing. Warm-up and the zero-loss
// convention match ComputeRSI, and the two agree at index period.
func ComputeCutlerRSI(prices *model.PriceSeries, period int) model.IndicatorSeries {
	out := undefinedSeries(fmt.Sprintf("RSI%d", period), prices)
	if period <= 0 || len(prices.Bars) <= period {
		return out
	}
	closes := prices.Closes()

	for i := period; i < len(closes); i++ {
		var sumGain, sumLoss float64
		for j := i - period + 1; j <= i; j++ {
			gain, loss := splitChange(closes[j] - closes[j-1])
			sumGain += gain
			sumLoss += loss
		}
		out.Points[i].Value = optional.Some(rsiFromAverages(sumGain/float64(period), sumLoss/float64(period)))
	}
	return out
}

func splitChange(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

// rsiFromAverages maps average gain/loss to [0, 100]. Zero average loss
// saturates to 100.
func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	rsi := 100.0 - 100.0/(1.0+rs)
	if rsi < 0 {
		return 0
	}
	if rsi > 100 {
		return 100
	}
	return rsi
}
