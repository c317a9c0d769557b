// Package metrics holds the Prometheus instruments for lookups and rebuilds.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/corey/lor/internal/domain/lookup"
)

// Metrics holds every instrument the daemon exports.
type Metrics struct {
	LookupsTotal      *prometheus.CounterVec
	LookupSeconds     *prometheus.HistogramVec
	AutocompleteTotal prometheus.Counter
	AutocompleteHits  prometheus.Histogram
	RebuildsTotal     *prometheus.CounterVec
	RebuildSeconds    prometheus.Histogram
	IndexKeys         prometheus.Gauge
	AmbiguousSets     prometheus.Gauge
	FallbackSuffixes  prometheus.Gauge
}

var _ lookup.Observer = (*Metrics)(nil)

// New registers the instruments with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lor_lookups_total",
				Help: "Lookups by outcome",
			},
			[]string{"outcome"},
		),
		LookupSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lor_lookup_seconds",
				Help:    "Lookup latency by outcome",
				Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
			},
			[]string{"outcome"},
		),
		AutocompleteTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "lor_autocomplete_total",
				Help: "Autocomplete requests",
			},
		),
		AutocompleteHits: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lor_autocomplete_results",
				Help:    "Candidates returned per autocomplete request before capping",
				Buckets: []float64{0, 1, 5, 10, 50, 100, 500},
			},
		),
		RebuildsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lor_rebuilds_total",
				Help: "Index rebuilds by status",
			},
			[]string{"status"},
		),
		RebuildSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lor_rebuild_seconds",
				Help:    "Index rebuild latency",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
		),
		IndexKeys: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "lor_index_keys",
				Help: "Keys in the served index",
			},
		),
		AmbiguousSets: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "lor_ambiguous_sets",
				Help: "Ambiguous result sets in the served index",
			},
		),
		FallbackSuffixes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "lor_fallback_suffixes",
				Help: "Candidates that fell back to an entity-id suffix in the last rebuild",
			},
		),
	}
}

// ObserveLookup implements lookup.Observer.
func (m *Metrics) ObserveLookup(outcome lookup.Outcome, elapsed time.Duration) {
	m.LookupsTotal.WithLabelValues(string(outcome)).Inc()
	m.LookupSeconds.WithLabelValues(string(outcome)).Observe(elapsed.Seconds())
}

// ObserveAutocomplete implements lookup.Observer.
func (m *Metrics) ObserveAutocomplete(results int, _ time.Duration) {
	m.AutocompleteTotal.Inc()
	m.AutocompleteHits.Observe(float64(results))
}

// RebuildSucceeded records a published snapshot.
func (m *Metrics) RebuildSucceeded(elapsed time.Duration, keys, sets, fallbacks int) {
	m.RebuildsTotal.WithLabelValues("ok").Inc()
	m.RebuildSeconds.Observe(elapsed.Seconds())
	m.IndexKeys.Set(float64(keys))
	m.AmbiguousSets.Set(float64(sets))
	m.FallbackSuffixes.Set(float64(fallbacks))
}

// RebuildFailed records a rebuild that left the served snapshot in place.
func (m *Metrics) RebuildFailed(elapsed time.Duration) {
	m.RebuildsTotal.WithLabelValues("error").Inc()
	m.RebuildSeconds.Observe(elapsed.Seconds())
}

// SnapshotLoaded sets the index gauges for a snapshot read back from disk.
func (m *Metrics) SnapshotLoaded(keys, sets, fallbacks int) {
	m.IndexKeys.Set(float64(keys))
	m.AmbiguousSets.Set(float64(sets))
	m.FallbackSuffixes.Set(float64(fallbacks))
}
