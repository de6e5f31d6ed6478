package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry     *prometheus.Registry
	cleanRuns    *prometheus.CounterVec
	cleanRows    *prometheus.CounterVec
	advisories   *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New registers all collectors plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cleanRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agriassist_clean_runs_total",
			Help: "Dataset cleaning runs by kind and outcome.",
		}, []string{"kind", "outcome"}),
		cleanRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agriassist_clean_rows_total",
			Help: "Rows seen by the cleaner, by kind and stage (loaded, kept).",
		}, []string{"kind", "stage"}),
		advisories: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agriassist_advisories_total",
			Help: "Advisory messages generated, by category.",
		}, []string{"category"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agriassist_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agriassist_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		m.cleanRuns, m.cleanRows, m.advisories, m.httpRequests, m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// CleanRun counts one cleaning run.
func (m *Metrics) CleanRun(kind, outcome string) {
	m.cleanRuns.WithLabelValues(kind, outcome).Inc()
}

// CleanRows adds n rows for the given stage.
func (m *Metrics) CleanRows(kind, stage string, n int) {
	m.cleanRows.WithLabelValues(kind, stage).Add(float64(n))
}

// Advisories adds n generated messages for category.
func (m *Metrics) Advisories(category string, n int) {
	m.advisories.WithLabelValues(category).Add(float64(n))
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, seconds float64) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(seconds)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
