// Package dashboard serves the stock indicator dashboard over HTTP.
package dashboard

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"StockLens/internal/analyzer"
	"StockLens/internal/metrics"
	"StockLens/internal/recorder"
	"StockLens/internal/universe"
)

// Deps are the components the dashboard reads from.
type Deps struct {
	Analyzer   *analyzer.Analyzer
	Universe   *universe.Provider
	Recorder   recorder.Recorder
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
	MaxTickers int
}

// Server handles dashboard requests.
type Server struct {
	analyzer   *analyzer.Analyzer
	universe   *universe.Provider
	recorder   recorder.Recorder
	metrics    *metrics.Metrics
	logger     *zap.Logger
	maxTickers int
	upgrader   websocket.Upgrader
}

// NewServer creates a new Server.
func NewServer(d Deps) *Server {
	s := &Server{
		analyzer:   d.Analyzer,
		universe:   d.Universe,
		recorder:   d.Recorder,
		metrics:    d.Metrics,
		logger:     d.Logger,
		maxTickers: d.MaxTickers,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.recorder == nil {
		s.recorder = recorder.NewNoopRecorder()
	}
	if s.maxTickers <= 0 {
		s.maxTickers = universe.DefaultMaxTickers
	}
	return s
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(s.observe)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/tickers", s.handleTickers).Methods(http.MethodGet)
	api.HandleFunc("/analysis", s.handleAnalysis).Methods(http.MethodGet)
	api.HandleFunc("/stocks/{symbol}", s.handleStock).Methods(http.MethodGet)
	api.HandleFunc("/stocks/{symbol}/csv", s.handleCSV).Methods(http.MethodGet)
	api.HandleFunc("/stocks/{symbol}/history", s.handleHistory).Methods(http.MethodGet)

	router.HandleFunc("/overview", s.handleOverview).Methods(http.MethodGet)
	router.HandleFunc("/stocks/{symbol}/chart", s.handleChart).Methods(http.MethodGet)
	router.HandleFunc("/ws/signals", s.handleSignalStream)
	router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.sendErrorResponse(w, "not found", http.StatusNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.sendErrorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	})
	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// Hijack lets the websocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// observe counts requests by route template and status code.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		s.metrics.ObserveRequest(route, rec.status)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}
