package model

// Signal is the categorical recommendation derived from the latest RSI.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// Trend compares the latest close against its SMA.
type Trend string

const (
	TrendBullish Trend = "Bullish"
	TrendBearish Trend = "Bearish"
	TrendUnknown Trend = "Unknown"
)

// Zone classifies the latest RSI against the oversold/overbought thresholds.
type Zone string

const (
	ZoneOverbought Zone = "Overbought"
	ZoneOversold   Zone = "Oversold"
	ZoneNeutral    Zone = "Neutral"
	ZoneUnknown    Zone = "Unknown"
)

// Summary counts recommendations across a set of tickers.
type Summary struct {
	Buy  int `json:"buy"`
	Sell int `json:"sell"`
	Hold int `json:"hold"`
}

// Add counts one recommendation.
func (s *Summary) Add(sig Signal) {
	switch sig {
	case SignalBuy:
		s.Buy++
	case SignalSell:
		s.Sell++
	default:
		s.Hold++
	}
}
