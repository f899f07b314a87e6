// Package analyzer joins data collection with indicator evaluation.
package analyzer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"StockLens/internal/collector"
	"StockLens/internal/metrics"
	"StockLens/internal/model"
	"StockLens/internal/strategy"
)

// Failure records a ticker that could not be analyzed.
type Failure struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
	err    error
}

// Err returns the underlying error.
func (f Failure) Err() error { return f.err }

// Report is the outcome of analyzing a ticker list.
type Report struct {
	Period   collector.Period  `json:"period"`
	Analyses []*model.Analysis `json:"-"`
	Failures []Failure         `json:"errors"`
	Summary  model.Summary     `json:"summary"`
}

// FailedSymbols lists the failed tickers in request order.
func (r *Report) FailedSymbols() []string {
	out := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		out[i] = f.Symbol
	}
	return out
}

// Analyzer fetches price history and evaluates it with fixed Params.
type Analyzer struct {
	collector *collector.Collector
	params    strategy.Params
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// New creates an Analyzer. metrics and logger may be nil.
func New(col *collector.Collector, params strategy.Params, m *metrics.Metrics, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{collector: col, params: params, metrics: m, logger: logger}
}

// Params returns the indicator parameters in use.
func (a *Analyzer) Params() strategy.Params { return a.params }

// AnalyzeOne fetches and evaluates a single ticker.
func (a *Analyzer) AnalyzeOne(ctx context.Context, symbol string, period collector.Period) (*model.Analysis, error) {
	series, err := a.collector.FetchSeries(ctx, symbol, period)
	if err != nil {
		return nil, err
	}
	return a.evaluate(series), nil
}

// AnalyzeAll evaluates every ticker. Failed tickers are reported without
// affecting the rest; both lists keep the request order.
func (a *Analyzer) AnalyzeAll(ctx context.Context, tickers []string, period collector.Period) *Report {
	report := &Report{Period: period}
	for _, res := range a.collector.Collect(ctx, tickers, period) {
		if res.Err != nil {
			report.Failures = append(report.Failures, Failure{Symbol: res.Symbol, Error: res.Err.Error(), err: res.Err})
			continue
		}
		report.Analyses = append(report.Analyses, a.evaluate(res.Series))
	}
	report.Summary = strategy.Summarize(report.Analyses)
	a.logger.Info("analysis complete",
		zap.Int("tickers", len(tickers)),
		zap.Int("failed", len(report.Failures)),
		zap.String("period", string(period)))
	return report
}

func (a *Analyzer) evaluate(series *model.PriceSeries) *model.Analysis {
	start := time.Now()
	result := strategy.Analyze(series, a.params)
	a.metrics.ObserveAnalysis(result.Recommendation, time.Since(start))
	return result
}
