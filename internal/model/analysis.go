package model

import (
	"fmt"
	"time"

	"github.com/moznion/go-optional"
)

// Analysis is the full indicator result for one ticker.
type Analysis struct {
	Symbol string      `json:"symbol"`
	Period string      `json:"period"`
	Prices PriceSeries `json:"prices"`

	SMA     IndicatorSeries `json:"sma"`
	RSI     IndicatorSeries `json:"rsi"`
	BBUpper IndicatorSeries `json:"bb_upper"`
	BBMid   IndicatorSeries `json:"bb_mid"`
	BBLower IndicatorSeries `json:"bb_lower"`

	LatestClose    float64                  `json:"latest_close"`
	LatestSMA      optional.Option[float64] `json:"latest_sma"`
	LatestRSI      optional.Option[float64] `json:"latest_rsi"`
	SMASignal      Trend                    `json:"sma_signal"`
	RSISignal      Zone                     `json:"rsi_signal"`
	Recommendation Signal                   `json:"recommendation"`

	PeriodHigh    float64 `json:"period_high"`
	PeriodLow     float64 `json:"period_low"`
	RangePosition float64 `json:"range_position"` // 0.0 ~ 1.0
}

// Row is one export/table line: a bar's close with its aligned indicators.
type Row struct {
	Time  time.Time                `json:"time"`
	Close float64                  `json:"close"`
	SMA   optional.Option[float64] `json:"sma"`
	RSI   optional.Option[float64] `json:"rsi"`
}

// Rows returns one Row per bar.
func (a *Analysis) Rows() []Row {
	rows := make([]Row, len(a.Prices.Bars))
	for i, b := range a.Prices.Bars {
		rows[i] = Row{
			Time:  b.Time,
			Close: b.Close,
			SMA:   a.SMA.At(i),
			RSI:   a.RSI.At(i),
		}
	}
	return rows
}

// Tail returns the last n rows (fewer if the series is shorter).
func (a *Analysis) Tail(n int) []Row {
	rows := a.Rows()
	if n < len(rows) {
		rows = rows[len(rows)-n:]
	}
	return rows
}

// Line renders the one-line recommendation, e.g.
// "AAPL: BUY (Close: 150.00, SMA: 148.20, RSI: 27.31)".
func (a *Analysis) Line() string {
	return fmt.Sprintf("%s: %s (Close: %.2f, SMA: %s, RSI: %s)",
		a.Symbol, a.Recommendation, a.LatestClose, FormatValue(a.LatestSMA), FormatValue(a.LatestRSI))
}

// FormatValue prints a defined value with two decimals, "n/a" otherwise.
func FormatValue(v optional.Option[float64]) string {
	if v.IsNone() {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v.Unwrap())
}
