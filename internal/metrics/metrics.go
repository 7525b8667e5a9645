// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the dashboard.
type Metrics struct {
	Requests      *prometheus.CounterVec   // labels: route, outcome
	FetchDur      *prometheus.HistogramVec // labels: source
	FetchErrors   *prometheus.CounterVec   // labels: source
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
	DirectorySize prometheus.Gauge
	Exports       prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates the dashboard metrics and registers them with reg.
// A nil reg uses a fresh private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_requests_total",
			Help: "Dashboard requests by route and outcome",
		}, []string{"route", "outcome"}),
		FetchDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_fetch_duration_seconds",
			Help:    "Price series fetch latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_fetch_errors_total",
			Help: "Failed price series fetches",
		}, []string{"source"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_price_cache_hits_total",
			Help: "Price series served from Redis",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_price_cache_misses_total",
			Help: "Price series not found in Redis",
		}),
		DirectorySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_directory_companies",
			Help: "Companies in the cached listing snapshot",
		}),
		Exports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_exports_total",
			Help: "Spreadsheet downloads served",
		}),
		gatherer: reg,
	}
	reg.MustRegister(
		m.Requests, m.FetchDur, m.FetchErrors,
		m.CacheHits, m.CacheMisses, m.DirectorySize, m.Exports,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
