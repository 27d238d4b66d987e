package metrics

import "github.com/prometheus/client_golang/prometheus"

// Indexing and retrieval Prometheus metrics.
var (
	IndexBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_builds_total",
			Help:      "Index builds by outcome",
		},
		[]string{"status"},
	)

	IndexBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_build_duration_seconds",
			Help:      "Wall time of successful index builds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	IndexPassagesOverBudgetTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "indexer_passages_over_budget_total",
			Help:      "Passages whose estimated tokens exceed the model context window",
		},
	)

	IndexSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_passages",
			Help:      "Passages in the loaded index",
		},
	)

	IndexReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_reloads_total",
			Help:      "Index loads by outcome",
		},
		[]string{"status"},
	)

	RetrievalDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "End-to-end retrieval latency, query embedding included",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	RetrievalResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_results",
			Help:      "Passages returned per retrieval",
			Buckets:   []float64{0, 1, 3, 5, 10, 20, 50, 100},
		},
	)

	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_requests_total",
			Help:      "Chat completions by outcome",
		},
		[]string{"model", "status"},
	)
)

func ragCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		IndexBuildsTotal,
		IndexBuildDuration,
		IndexPassagesOverBudgetTotal,
		IndexSize,
		IndexReloadsTotal,
		RetrievalDuration,
		RetrievalResults,
		GenerationRequestsTotal,
	}
}
