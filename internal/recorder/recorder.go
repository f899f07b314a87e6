package recorder

import (
	"context"
	"time"

	"github.com/moznion/go-optional"

	"StockLens/internal/model"
)

// Snapshot is one ticker's indicator state captured by a scan.
type Snapshot struct {
	ScanID         string                   `json:"scan_id"`
	Timestamp      time.Time                `json:"timestamp"`
	Symbol         string                   `json:"symbol"`
	Period         string                   `json:"period"`
	Close          float64                  `json:"close"`
	SMA            optional.Option[float64] `json:"sma"`
	RSI            optional.Option[float64] `json:"rsi"`
	BBUpper        optional.Option[float64] `json:"bb_upper"`
	BBLower        optional.Option[float64] `json:"bb_lower"`
	SMASignal      model.Trend              `json:"sma_signal"`
	RSISignal      model.Zone               `json:"rsi_signal"`
	Recommendation model.Signal             `json:"recommendation"`
}

// NewSnapshot captures the latest values of a.
func NewSnapshot(scanID string, a *model.Analysis, ts time.Time) *Snapshot {
	return &Snapshot{
		ScanID:         scanID,
		Timestamp:      ts,
		Symbol:         a.Symbol,
		Period:         a.Period,
		Close:          a.LatestClose,
		SMA:            a.LatestSMA,
		RSI:            a.LatestRSI,
		BBUpper:        a.BBUpper.Latest(),
		BBLower:        a.BBLower.Latest(),
		SMASignal:      a.SMASignal,
		RSISignal:      a.RSISignal,
		Recommendation: a.Recommendation,
	}
}

// Recorder persists scan history.
type Recorder interface {
	RecordSnapshot(snap *Snapshot) error
	// Recent returns up to limit snapshots for symbol, newest first.
	Recent(ctx context.Context, symbol string, limit int) ([]Snapshot, error)
	Close() error
}
