// Package metrics exposes Prometheus collectors for the recommender.
//
// All methods are safe on a nil *Metrics, so instrumentation can stay in
// place when metrics are disabled.
package metrics

import (
	"time"

	"github.com/poiesic/coursematch/core"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "coursematch"

// Query kinds.
const (
	KindSearch  = "search"
	KindSimilar = "similar"
)

// Metrics holds the recommender's Prometheus collectors.
type Metrics struct {
	queriesTotal    *prometheus.CounterVec
	queryDuration   *prometheus.HistogramVec
	queryResults    *prometheus.HistogramVec
	rebuildsTotal   *prometheus.CounterVec
	rebuildDuration prometheus.Histogram
	corpusSize      prometheus.Gauge
	vocabularySize  prometheus.Gauge
	cacheFresh      prometheus.Gauge
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered, which is convenient in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of queries by kind and outcome",
		}, []string{"kind", "result"}),

		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Query duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"kind"}),

		queryResults: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_results",
			Help:      "Number of results returned per query",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		}, []string{"kind"}),

		rebuildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rebuilds_total",
			Help:      "Total number of vector space rebuilds by origin of the published space",
		}, []string{"origin", "status"}),

		rebuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rebuild_duration_seconds",
			Help:      "Vector space rebuild duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		corpusSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_size",
			Help:      "Number of courses in the published vector space",
		}),

		vocabularySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vocabulary_size",
			Help:      "Number of terms in the published vector space",
		}),

		cacheFresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_fresh",
			Help:      "1 if the persisted vector space matches the published one",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.queriesTotal,
			m.queryDuration,
			m.queryResults,
			m.rebuildsTotal,
			m.rebuildDuration,
			m.corpusSize,
			m.vocabularySize,
			m.cacheFresh,
		)
	}
	return m
}

// ObserveQuery records one search or similarity query.
func (m *Metrics) ObserveQuery(kind string, elapsed time.Duration, results int, err error) {
	if m == nil {
		return
	}
	result := "ok"
	switch {
	case err != nil:
		result = "error"
	case results == 0:
		result = "empty"
	}
	m.queriesTotal.WithLabelValues(kind, result).Inc()
	m.queryDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	if err == nil {
		m.queryResults.WithLabelValues(kind).Observe(float64(results))
	}
}

// ObserveRebuild records one rebuild and, on success, the resulting status.
func (m *Metrics) ObserveRebuild(elapsed time.Duration, status core.Status, err error) {
	if m == nil {
		return
	}
	m.rebuildDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.rebuildsTotal.WithLabelValues("none", "error").Inc()
		return
	}
	m.rebuildsTotal.WithLabelValues(status.Origin, "ok").Inc()
	m.SetStatus(status)
}

// SetStatus updates the gauges describing the published space.
func (m *Metrics) SetStatus(status core.Status) {
	if m == nil {
		return
	}
	m.corpusSize.Set(float64(status.CorpusSize))
	m.vocabularySize.Set(float64(status.VocabularySize))
	if status.CacheFresh {
		m.cacheFresh.Set(1)
	} else {
		m.cacheFresh.Set(0)
	}
}
