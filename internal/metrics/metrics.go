// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every scanner collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	FetchTotal          *prometheus.CounterVec // labels: source, status
	FetchDur            *prometheus.HistogramVec
	CacheRequestsTotal  *prometheus.CounterVec // labels: result=hit|miss|error
	IndicatorComputeDur prometheus.Histogram
	ScansTotal          *prometheus.CounterVec // labels: tier
	AlertsTotal         *prometheus.CounterVec // labels: status
}

// NewMetrics creates collectors registered on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scanner_fetch_total",
			Help: "Upstream market data requests by source and outcome",
		}, []string{"source", "status"}),
		FetchDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scanner_fetch_duration_seconds",
			Help:    "Upstream market data request latency including retries",
			Buckets: prometheus.ExponentialBuckets(0.02, 2, 10),
		}, []string{"source"}),
		CacheRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scanner_cache_requests_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		IndicatorComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scanner_indicator_compute_duration_seconds",
			Help:    "Time to compute one indicator report",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		ScansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scanner_scans_total",
			Help: "Completed symbol scans by signal tier",
		}, []string{"tier"}),
		AlertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scanner_alerts_total",
			Help: "Alert deliveries by outcome",
		}, []string{"status"}),
	}

	m.registry.MustRegister(
		m.FetchTotal,
		m.FetchDur,
		m.CacheRequestsTotal,
		m.IndicatorComputeDur,
		m.ScansTotal,
		m.AlertsTotal,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveFetch(source, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(source, status).Inc()
	m.FetchDur.WithLabelValues(source).Observe(d.Seconds())
}

func (m *Metrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.CacheRequestsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveCompute(d time.Duration) {
	if m == nil {
		return
	}
	m.IndicatorComputeDur.Observe(d.Seconds())
}

func (m *Metrics) ObserveScan(tier string) {
	if m == nil {
		return
	}
	m.ScansTotal.WithLabelValues(tier).Inc()
}

func (m *Metrics) ObserveAlert(status string) {
	if m == nil {
		return
	}
	m.AlertsTotal.WithLabelValues(status).Inc()
}
