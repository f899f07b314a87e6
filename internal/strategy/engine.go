package strategy

import (
	"github.com/moznion/go-optional"

	"StockLens/internal/calculator"
	"StockLens/internal/model"
)

// RSI smoothing methods.
const (
	RSIMethodWilder = "wilder"
	RSIMethodCutler = "cutler"
)

// Thresholds are the RSI zone boundaries.
type Thresholds struct {
	Oversold   float64
	Overbought float64
}

// DefaultThresholds is the conventional 30/70 split.
var DefaultThresholds = Thresholds{Oversold: 30, Overbought: 70}

// Params controls indicator windows and signal thresholds.
type Params struct {
	SMAWindow  int
	RSIPeriod  int
	RSIMethod  string
	BBWindow   int
	BBK        float64
	Thresholds Thresholds
}

// DefaultParams returns SMA20, Wilder RSI14, Bollinger(20, 2) and 30/70 thresholds.
func DefaultParams() Params {
	return Params{
		SMAWindow:  20,
		RSIPeriod:  14,
		RSIMethod:  RSIMethodWilder,
		BBWindow:   20,
		BBK:        2,
		Thresholds: DefaultThresholds,
	}
}

// DeriveSignal maps the latest RSI to a recommendation with 30/70 thresholds.
func DeriveSignal(latest optional.Option[float64]) model.Signal {
	return DefaultThresholds.Signal(latest)
}

// Signal maps the latest RSI to a recommendation. Checks run in order:
// undefined -> HOLD, below Oversold -> BUY, above Overbought -> SELL, else HOLD.
func (t Thresholds) Signal(latest optional.Option[float64]) model.Signal {
	if latest.IsNone() {
		return model.SignalHold
	}
	rsi := latest.Unwrap()
	switch {
	case rsi < t.Oversold:
		return model.SignalBuy
	case rsi > t.Overbought:
		return model.SignalSell
	default:
		return model.SignalHold
	}
}

// Zone classifies the latest RSI.
func (t Thresholds) Zone(latest optional.Option[float64]) model.Zone {
	if latest.IsNone() {
		return model.ZoneUnknown
	}
	rsi := latest.Unwrap()
	switch {
	case rsi > t.Overbought:
		return model.ZoneOverbought
	case rsi < t.Oversold:
		return model.ZoneOversold
	default:
		return model.ZoneNeutral
	}
}

// SMATrend is Bullish when the close is above its SMA.
func SMATrend(close float64, sma optional.Option[float64]) model.Trend {
	if sma.IsNone() {
		return model.TrendUnknown
	}
	if close > sma.Unwrap() {
		return model.TrendBullish
	}
	return model.TrendBearish
}

// Analyze computes all indicators for one series and derives the recommendation.
func Analyze(prices *model.PriceSeries, p Params) *model.Analysis {
	rsi := calculator.ComputeRSI
	if p.RSIMethod == RSIMethodCutler {
		rsi = calculator.ComputeCutlerRSI
	}
	bands := calculator.ComputeBollinger(prices, p.BBWindow, p.BBK)

	a := &model.Analysis{
		Symbol:  prices.Symbol,
		Period:  prices.Period,
		Prices:  *prices,
		SMA:     calculator.ComputeSMA(prices, p.SMAWindow),
		RSI:     rsi(prices, p.RSIPeriod),
		BBUpper: bands.Upper,
		BBMid:   bands.Mid,
		BBLower: bands.Lower,
	}
	a.LatestSMA = a.SMA.Latest()
	a.LatestRSI = a.RSI.Latest()

	if last, ok := prices.Latest(); ok {
		a.LatestClose = last.Close
	}
	a.SMASignal = SMATrend(a.LatestClose, a.LatestSMA)
	a.RSISignal = p.Thresholds.Zone(a.LatestRSI)
	a.Recommendation = p.Thresholds.Signal(a.LatestRSI)

	if high, low, err := calculator.PeriodRange(prices.Bars); err == nil {
		a.PeriodHigh, a.PeriodLow = high, low
		if pos, err := calculator.RangePosition(a.LatestClose, high, low); err == nil {
			a.RangePosition = pos
		}
	}
	return a
}

// Summarize counts recommendations.
func Summarize(analyses []*model.Analysis) model.Summary {
	var s model.Summary
	for _, a := range analyses {
		s.Add(a.Recommendation)
	}
	return s
}
