// Package metrics defines the Prometheus collectors for index builds,
// retrieval calls and encoder traffic.
package metrics

import (
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "goldenretriever"

// Retrieval Prometheus metrics.
var (
	BuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Index construction duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"strategy"},
	)

	DocumentsIndexed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_indexed_total",
			Help:      "Total documents indexed",
		},
		[]string{"strategy"},
	)

	RetrieveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieve_duration_seconds",
			Help:      "Duration of one retrieve call (a whole query batch) in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"strategy"},
	)

	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total queries answered",
		},
		[]string{"strategy", "status"},
	)

	ResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_total",
			Help:      "Total results returned",
		},
		[]string{"strategy"},
	)

	EncodeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encode_requests_total",
			Help:      "Total encoder batch requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_cache_total",
			Help:      "Query embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// Registry returns the process-wide registry holding every collector above.
// Collectors work unregistered too; registration only matters for exposition.
func Registry() *prometheus.Registry {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			BuildDuration,
			DocumentsIndexed,
			RetrieveDuration,
			QueriesTotal,
			ResultsTotal,
			EncodeRequestsTotal,
			EmbeddingCacheTotal,
		)
	})
	return registry
}

// WriteText writes every metric family in the Prometheus text exposition format.
func WriteText(w io.Writer) error {
	families, err := Registry().Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
