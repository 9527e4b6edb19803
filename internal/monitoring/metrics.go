// Package monitoring exposes Prometheus metrics for map refreshes and LLM
// queries, and a status snapshot of the loaded dataset.
package monitoring

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

// Query outcomes.
const (
	OutcomeAnswered = "answered"
	OutcomeEmpty    = "empty"
	OutcomeError    = "error"
)

// Metrics holds the counters and histograms for the request paths. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	MapRefreshes      *prometheus.CounterVec   // labels: source
	RecomputeDuration *prometheus.HistogramVec // labels: source
	NoValueSelections *prometheus.CounterVec   // labels: source
	Queries           *prometheus.CounterVec   // labels: outcome
	QueryDuration     prometheus.Histogram
	RegionsLoaded     *prometheus.GaugeVec // labels: table

	clock clockwork.Clock
}

func newMetrics(clock clockwork.Clock) *Metrics {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Metrics{
		MapRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homecap",
			Name:      "map_refreshes_total",
			Help:      "Map refreshes by data source.",
		}, []string{"source"}),
		RecomputeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "homecap",
			Name:      "recompute_duration_seconds",
			Help:      "Duration of a choropleth recompute and feature annotation.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"source"}),
		NoValueSelections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homecap",
			Name:      "no_value_selections_total",
			Help:      "Year and source selections with no region data.",
		}, []string{"source"}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homecap",
			Name:      "queries_total",
			Help:      "Natural-language queries by outcome.",
		}, []string{"outcome"}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "homecap",
			Name:      "query_duration_seconds",
			Help:      "Duration of the LLM completion call.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		RegionsLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "homecap",
			Name:      "regions_loaded",
			Help:      "Regions per processed table.",
		}, []string{"table"}),
		clock: clock,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics(clock clockwork.Clock) *Metrics {
	m := newMetrics(clock)
	prometheus.MustRegister(
		m.MapRefreshes,
		m.RecomputeDuration,
		m.NoValueSelections,
		m.Queries,
		m.QueryDuration,
		m.RegionsLoaded,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build many.
func NewMetricsForTesting(clock clockwork.Clock) *Metrics {
	return newMetrics(clock)
}

// Now returns the current time from the metrics clock.
func (m *Metrics) Now() time.Time {
	if m == nil {
		return time.Now()
	}
	return m.clock.Now()
}

// ObserveRefresh records one map refresh that started at start.
func (m *Metrics) ObserveRefresh(source string, start time.Time) {
	if m == nil {
		return
	}
	m.MapRefreshes.WithLabelValues(source).Inc()
	m.RecomputeDuration.WithLabelValues(source).Observe(m.clock.Since(start).Seconds())
}

// ObserveNoValues records a selection that had nothing to classify.
func (m *Metrics) ObserveNoValues(source string) {
	if m == nil {
		return
	}
	m.NoValueSelections.WithLabelValues(source).Inc()
}

// ObserveQuery records one query outcome. Only answered and errored queries
// reached the LLM, so only those observe a duration.
func (m *Metrics) ObserveQuery(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Queries.WithLabelValues(outcome).Inc()
	if outcome != OutcomeEmpty {
		m.QueryDuration.Observe(m.clock.Since(start).Seconds())
	}
}

// SetRegions records the region count of a processed table.
func (m *Metrics) SetRegions(table string, n int) {
	if m == nil {
		return
	}
	m.RegionsLoaded.WithLabelValues(table).Set(float64(n))
}
