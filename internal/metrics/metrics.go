package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects oracle, market context and decision metrics.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	oracleRequests  *prometheus.CounterVec
	oracleCache     *prometheus.CounterVec
	oracleLatency   *prometheus.HistogramVec
	contextSignals  *prometheus.CounterVec
	recommendations *prometheus.CounterVec
	rebalances      *prometheus.CounterVec
}

// New creates a Recorder backed by its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		oracleRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dlmm",
				Subsystem: "oracle",
				Name:      "requests_total",
				Help:      "Oracle HTTP requests by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		oracleCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dlmm",
				Subsystem: "oracle",
				Name:      "cache_total",
				Help:      "Oracle cache lookups by kind and result",
			},
			[]string{"kind", "result"},
		),
		oracleLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "dlmm",
				Subsystem: "oracle",
				Name:      "request_duration_seconds",
				Help:      "Duration of oracle HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		contextSignals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dlmm",
				Subsystem: "context",
				Name:      "signals_total",
				Help:      "Market context signal fetches by signal and outcome",
			},
			[]string{"signal", "outcome"},
		),
		recommendations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dlmm",
				Name:      "recommendations_total",
				Help:      "Range recommendations produced by strategy",
			},
			[]string{"strategy"},
		),
		rebalances: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dlmm",
				Name:      "rebalance_analyses_total",
				Help:      "Rebalance analyses produced by priority",
			},
			[]string{"priority"},
		),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// OracleRequest records one oracle HTTP request.
func (r *Recorder) OracleRequest(source, outcome string, seconds float64) {
	if r == nil {
		return
	}
	r.oracleRequests.WithLabelValues(source, outcome).Inc()
	r.oracleLatency.WithLabelValues(source).Observe(seconds)
}

// OracleCache records a cache hit or miss.
func (r *Recorder) OracleCache(kind string, hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.oracleCache.WithLabelValues(kind, result).Inc()
}

// ContextSignal records whether a market context signal was available.
func (r *Recorder) ContextSignal(signal string, ok bool) {
	if r == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "degraded"
	}
	r.contextSignals.WithLabelValues(signal, outcome).Inc()
}

// Recommendation records a produced range recommendation.
func (r *Recorder) Recommendation(strategy string) {
	if r == nil {
		return
	}
	r.recommendations.WithLabelValues(strategy).Inc()
}

// RebalanceAnalysis records a produced rebalance analysis.
func (r *Recorder) RebalanceAnalysis(priority string) {
	if r == nil {
		return
	}
	r.rebalances.WithLabelValues(priority).Inc()
}
