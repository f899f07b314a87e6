package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"StockLens/internal/collector"
	"StockLens/internal/export"
	"StockLens/internal/model"
	"StockLens/internal/recorder"
	"StockLens/internal/universe"
)

const (
	tailRows            = 5
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

var errNoTickers = errors.New("select or enter at least one ticker")

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSONResponse(w, HealthResponse{Status: "ok"})
}

func (s *Server) handleTickers(w http.ResponseWriter, r *http.Request) {
	if s.universe == nil {
		s.sendJSONResponse(w, TickersResponse{Tickers: universe.Fallback})
		return
	}
	tickers, warning := s.universe.SP500(r.Context())
	s.sendJSONResponse(w, TickersResponse{Tickers: tickers, Warning: warning})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period, err := collector.ParsePeriod(q.Get("period"))
	if err != nil {
		s.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	tickers, warning := universe.Merge(universe.SplitList(q.Get("tickers")), universe.SplitList(q.Get("selected")), s.maxTickers)
	if len(tickers) == 0 {
		s.sendErrorResponse(w, errNoTickers.Error(), http.StatusBadRequest)
		return
	}

	report := s.analyzer.AnalyzeAll(r.Context(), tickers, period)
	s.sendJSONResponse(w, newAnalysisResponse(tickers, warning, report))
}

// loadAnalysis resolves the symbol and period of a per-stock request. It
// writes the error response itself and returns nil on failure.
func (s *Server) loadAnalysis(w http.ResponseWriter, r *http.Request) *model.Analysis {
	symbol := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["symbol"]))
	period, err := collector.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		s.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	a, err := s.analyzer.AnalyzeOne(r.Context(), symbol, period)
	if err != nil {
		s.logger.Warn("analysis failed", zap.String("symbol", symbol), zap.Error(err))
		s.sendErrorResponse(w, err.Error(), statusFor(err))
		return nil
	}
	return a
}

func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	a := s.loadAnalysis(w, r)
	if a == nil {
		return
	}
	s.sendJSONResponse(w, StockResponse{Analysis: a, Line: a.Line(), Tail: a.Tail(tailRows)})
}

func (s *Server) handleCSV(w http.ResponseWriter, r *http.Request) {
	a := s.loadAnalysis(w, r)
	if a == nil {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, a); err != nil {
		s.sendErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(a.Symbol)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	a := s.loadAnalysis(w, r)
	if a == nil {
		return
	}
	var buf bytes.Buffer
	if err := renderChartPage(&buf, a, s.analyzer.Params().Thresholds.Oversold, s.analyzer.Params().Thresholds.Overbought); err != nil {
		s.sendErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period, err := collector.ParsePeriod(q.Get("period"))
	if err != nil {
		s.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	tickers, _ := universe.Merge(universe.SplitList(q.Get("tickers")), universe.SplitList(q.Get("selected")), s.maxTickers)
	if len(tickers) == 0 {
		s.sendErrorResponse(w, errNoTickers.Error(), http.StatusBadRequest)
		return
	}

	report := s.analyzer.AnalyzeAll(r.Context(), tickers, period)
	var buf bytes.Buffer
	if err := renderOverviewPage(&buf, report.Analyses, string(period)); err != nil {
		s.sendErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["symbol"]))
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			s.sendErrorResponse(w, fmt.Sprintf("limit must be between 1 and %d", maxHistoryLimit), http.StatusBadRequest)
			return
		}
		limit = n
	}
	snaps, err := s.recorder.Recent(r.Context(), symbol, limit)
	if err != nil {
		s.logger.Error("load history", zap.String("symbol", symbol), zap.Error(err))
		s.sendErrorResponse(w, "could not load history", http.StatusInternalServerError)
		return
	}
	resp := HistoryResponse{Symbol: symbol, Snapshots: snaps}
	if resp.Snapshots == nil {
		resp.Snapshots = []recorder.Snapshot{}
	}
	s.sendJSONResponse(w, resp)
}

// statusFor maps a fetch error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, collector.ErrUnknownPeriod):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// sendJSONResponse sends a JSON response to the client
func (s *Server) sendJSONResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode json response", zap.Error(err))
	}
}

// sendErrorResponse sends an error response to the client
func (s *Server) sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		s.logger.Error("encode error response", zap.Error(err))
	}
}
