// Package metrics holds the Prometheus collectors for scrapes and API
// requests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scrape results used as label values.
const (
	ResultSuccess = "success"
	ResultEmpty   = "empty"
	ResultFailure = "failure"
)

// Metrics uses its own registry so instances never collide, which keeps
// tests independent. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	ScrapesTotal          *prometheus.CounterVec
	ScrapeDurationSeconds *prometheus.HistogramVec
	SectionsTotal         prometheus.Counter
	CodeExamplesTotal     prometheus.Counter

	RequestsTotal          *prometheus.CounterVec
	RequestDurationSeconds *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		ScrapesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swiftbook_scrapes_total",
				Help: "Total number of page scrapes by result.",
			},
			[]string{"result"},
		),
		ScrapeDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "swiftbook_scrape_duration_seconds",
				Help:    "Duration of page scrapes in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 9), // 250ms to ~1m
			},
			[]string{"result"},
		),
		SectionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "swiftbook_sections_total",
				Help: "Total number of sections extracted.",
			},
		),
		CodeExamplesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "swiftbook_code_examples_total",
				Help: "Total number of code examples extracted.",
			},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swiftbook_http_requests_total",
				Help: "Total number of API requests.",
			},
			[]string{"method", "path", "status"},
		),
		RequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "swiftbook_http_request_duration_seconds",
				Help:    "Duration of API requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}

	reg.MustRegister(
		m.ScrapesTotal,
		m.ScrapeDurationSeconds,
		m.SectionsTotal,
		m.CodeExamplesTotal,
		m.RequestsTotal,
		m.RequestDurationSeconds,
	)
	return m
}

// ObserveScrape records one scrape attempt.
func (m *Metrics) ObserveScrape(result string, d time.Duration, sections, examples int) {
	if m == nil {
		return
	}
	m.ScrapesTotal.WithLabelValues(result).Inc()
	m.ScrapeDurationSeconds.WithLabelValues(result).Observe(d.Seconds())
	m.SectionsTotal.Add(float64(sections))
	m.CodeExamplesTotal.Add(float64(examples))
}

// ObserveRequest records one API request.
func (m *Metrics) ObserveRequest(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDurationSeconds.WithLabelValues(method, path, status).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
