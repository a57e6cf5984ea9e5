package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query pipeline Prometheus metrics.
var (
	ParseTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_total",
			Help:      "Parsed queries by source (cache, pattern, model, fallback, empty)",
		},
		[]string{"source"},
	)

	ParseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Query parse duration in seconds by source",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"source"},
	)

	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Query cache lookups by tier and result",
		},
		[]string{"tier", "result"}, // result: "hit" / "miss"
	)

	SearchResultsTotal = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_total_matches",
			Help:      "Number of users matching a search before pagination",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers query pipeline metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(ParseTotal)
	prometheus.MustRegister(ParseDuration)
	prometheus.MustRegister(CacheLookupsTotal)
	prometheus.MustRegister(SearchResultsTotal)
	searchMetricsRegistered = true
}
