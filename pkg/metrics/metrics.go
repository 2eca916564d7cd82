package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Parse outcomes used as the "outcome" label.
const (
	OutcomeSuccess      = "success"
	OutcomeNoText       = "no_text"
	OutcomeExtractError = "extract_error"
	OutcomeError        = "error"
)

// Metrics holds the service collectors on a private registry so tests can build
// as many instances as they like.
type Metrics struct {
	registry        *prometheus.Registry
	parseRequests   *prometheus.CounterVec
	fieldMatches    *prometheus.CounterVec
	extractDuration prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		parseRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statement_parse_requests_total",
			Help: "Statement parse attempts by outcome.",
		}, []string{"outcome"}),
		fieldMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statement_field_matches_total",
			Help: "Fields found in parsed statements.",
		}, []string{"field"}),
		extractDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "statement_extract_duration_seconds",
			Help:    "Time spent extracting text from uploaded PDFs.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		m.parseRequests,
		m.fieldMatches,
		m.extractDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveParse(outcome string) {
	m.parseRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveField(field string) {
	m.fieldMatches.WithLabelValues(field).Inc()
}

func (m *Metrics) ObserveExtractSeconds(seconds float64) {
	m.extractDuration.Observe(seconds)
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
