package dashboard

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"StockLens/internal/collector"
	"StockLens/internal/universe"
)

const (
	defaultStreamInterval = time.Minute
	minStreamInterval     = 5 * time.Second
	writeWait             = 10 * time.Second
)

// handleSignalStream upgrades to a websocket and pushes the overview for the
// requested tickers immediately and then every interval until the client leaves.
func (s *Server) handleSignalStream(w http.ResponseWriter, r *http.Request) {
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
	interval := defaultStreamInterval
	if v := q.Get("interval"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < minStreamInterval {
			s.sendErrorResponse(w, "interval must be a duration of at least 5s", http.StatusBadRequest)
			return
		}
		interval = d
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Reads are only for close frames; a read error ends the stream.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ctx := r.Context()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		report := s.analyzer.AnalyzeAll(ctx, tickers, period)
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(newAnalysisResponse(tickers, warning, report)); err != nil {
			s.logger.Debug("signal stream write failed", zap.Error(err))
			return
		}

		select {
		case <-closed:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
