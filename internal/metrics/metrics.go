// Package metrics defines the Prometheus collectors for checker activity and
// exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Token outcomes used as the "result" label.
const (
	ResultKnown        = "known"
	ResultFilterReject = "filter_reject"
	ResultMisspelled   = "misspelled"
)

// Metrics holds the collectors on a registry private to one checker, so
// several checkers in a process (tests included) never collide.
type Metrics struct {
	Registry *prometheus.Registry

	TokensTotal     *prometheus.CounterVec
	CandidatesCount prometheus.Histogram
	QueryLatency    prometheus.Histogram
	IndexLoadsTotal *prometheus.CounterVec
	IndexSize       *prometheus.GaugeVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		TokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordcheck_tokens_total",
				Help: "Checked tokens by result (known, filter_reject, misspelled).",
			},
			[]string{"result"},
		),
		CandidatesCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wordcheck_candidates_count",
				Help:    "Number of candidates returned for a misspelled token.",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
			},
		),
		QueryLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wordcheck_range_query_seconds",
				Help:    "BK-tree range query latency in seconds.",
				Buckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
		),
		IndexLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordcheck_index_loads_total",
				Help: "Index acquisitions by index (tree, filter) and source (file, rebuild).",
			},
			[]string{"index", "source"},
		),
		IndexSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wordcheck_index_size",
				Help: "Words stored in the tree, bits set in the filter.",
			},
			[]string{"index"},
		),
	}

	m.Registry.MustRegister(
		m.TokensTotal,
		m.CandidatesCount,
		m.QueryLatency,
		m.IndexLoadsTotal,
		m.IndexSize,
	)

	return m
}

// Handler returns the scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
