package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockLens/internal/model"
)

var (
	// ErrNoData is returned when the provider has no bars for the symbol.
	ErrNoData = errors.New("no data returned")
	// ErrUnknownPeriod is returned for a period outside 1mo/3mo/6mo/1y.
	ErrUnknownPeriod = errors.New("unknown period")
)

// Fetcher defines the interface for fetching daily market data.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, period Period) ([]model.OHLCV, error)
	Name() string
}

// Period is a lookback window, expressed the way chart APIs name ranges.
type Period string

const (
	Period1Mo Period = "1mo"
	Period3Mo Period = "3mo"
	Period6Mo Period = "6mo"
	Period1Y  Period = "1y"

	DefaultPeriod = Period6Mo
)

// Periods lists the supported periods, shortest first.
var Periods = []Period{Period1Mo, Period3Mo, Period6Mo, Period1Y}

// ParsePeriod validates s; an empty string yields DefaultPeriod.
func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return DefaultPeriod, nil
	}
	for _, p := range Periods {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
}

// TradingDays approximates the number of sessions in the period.
func (p Period) TradingDays() int {
	switch p {
	case Period1Mo:
		return 22
	case Period3Mo:
		return 66
	case Period1Y:
		return 252
	default:
		return 126
	}
}

// Start returns the calendar start of the period ending at now.
func (p Period) Start(now time.Time) time.Time {
	switch p {
	case Period1Mo:
		return now.AddDate(0, -1, 0)
	case Period3Mo:
		return now.AddDate(0, -3, 0)
	case Period1Y:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, -6, 0)
	}
}

// trimToPeriod keeps only bars on or after the period start.
func trimToPeriod(bars []model.OHLCV, period Period, now time.Time) []model.OHLCV {
	start := period.Start(now)
	for i, b := range bars {
		if !b.Time.Before(start) {
			return bars[i:]
		}
	}
	return nil
}
