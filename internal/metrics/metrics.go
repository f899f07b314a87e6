// Package metrics holds the Prometheus instruments for the dashboard.
// All methods are safe on a nil *Metrics so components can run without them.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"StockLens/internal/model"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	registry *prometheus.Registry

	FetchTotal       *prometheus.CounterVec // labels: provider, result
	CacheHits        prometheus.Counter
	SignalsTotal     *prometheus.CounterVec // labels: signal
	AnalysisDuration prometheus.Histogram
	HTTPRequests     *prometheus.CounterVec // labels: route, code
}

// New registers and returns all metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocklens_fetch_total",
			Help: "Price history fetches by provider and result",
		}, []string{"provider", "result"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocklens_cache_hits_total",
			Help: "Price history requests served from cache",
		}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocklens_signals_total",
			Help: "Recommendations produced by signal",
		}, []string{"signal"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stocklens_analysis_duration_seconds",
			Help:    "Indicator computation latency per ticker",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocklens_http_requests_total",
			Help: "Dashboard HTTP requests by route and status code",
		}, []string{"route", "code"}),
	}

	m.registry.MustRegister(
		m.FetchTotal,
		m.CacheHits,
		m.SignalsTotal,
		m.AnalysisDuration,
		m.HTTPRequests,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveFetch(provider string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.FetchTotal.WithLabelValues(provider, result).Inc()
}

func (m *Metrics) ObserveCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) ObserveAnalysis(sig model.Signal, d time.Duration) {
	if m == nil {
		return
	}
	m.SignalsTotal.WithLabelValues(string(sig)).Inc()
	m.AnalysisDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveRequest(route string, code int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
