package dashboard

import (
	"github.com/moznion/go-optional"

	"StockLens/internal/analyzer"
	"StockLens/internal/model"
	"StockLens/internal/recorder"
)

// ErrorResponse represents an error response sent to the client
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status string `json:"status"`
}

// TickersResponse lists the selectable tickers.
type TickersResponse struct {
	Tickers []string `json:"tickers"`
	Warning string   `json:"warning,omitempty"`
}

// OverviewRow is one line of the overview table.
type OverviewRow struct {
	Ticker         string                   `json:"ticker"`
	Close          float64                  `json:"close"`
	SMA20          optional.Option[float64] `json:"sma20"`
	RSI            optional.Option[float64] `json:"rsi"`
	SMASignal      model.Trend              `json:"sma_signal"`
	RSISignal      model.Zone               `json:"rsi_signal"`
	Recommendation model.Signal             `json:"recommendation"`
}

// AnalysisResponse is the multi-ticker overview.
type AnalysisResponse struct {
	Period          string             `json:"period"`
	Tickers         []string           `json:"tickers"`
	Warning         string             `json:"warning,omitempty"`
	Rows            []OverviewRow      `json:"rows"`
	Recommendations []string           `json:"recommendations"`
	Errors          []analyzer.Failure `json:"errors"`
	Summary         model.Summary      `json:"summary"`
}

// StockResponse is the full analysis of one ticker with its recent rows.
type StockResponse struct {
	*model.Analysis
	Line string      `json:"line"`
	Tail []model.Row `json:"tail"`
}

// HistoryResponse lists recorded scan snapshots for a ticker.
type HistoryResponse struct {
	Symbol    string              `json:"symbol"`
	Snapshots []recorder.Snapshot `json:"snapshots"`
}

func newAnalysisResponse(tickers []string, warning string, report *analyzer.Report) AnalysisResponse {
	resp := AnalysisResponse{
		Period:          string(report.Period),
		Tickers:         tickers,
		Warning:         warning,
		Rows:            make([]OverviewRow, 0, len(report.Analyses)),
		Recommendations: make([]string, 0, len(report.Analyses)),
		Errors:          report.Failures,
		Summary:         report.Summary,
	}
	if resp.Errors == nil {
		resp.Errors = []analyzer.Failure{}
	}
	for _, a := range report.Analyses {
		resp.Rows = append(resp.Rows, OverviewRow{
			Ticker:         a.Symbol,
			Close:          a.LatestClose,
			SMA20:          a.LatestSMA,
			RSI:            a.LatestRSI,
			SMASignal:      a.SMASignal,
			RSISignal:      a.RSISignal,
			Recommendation: a.Recommendation,
		})
		resp.Recommendations = append(resp.Recommendations, a.Line())
	}
	return resp
}
