package rates

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rateLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "expense_tracker",
			Subsystem: "rates",
			Name:      "lookups_total",
			Help:      "Rate lookups by outcome (identity, fresh, fetched, stale, miss)",
		},
		[]string{"outcome"},
	)

	fetchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "expense_tracker",
			Subsystem: "rates",
			Name:      "fetch_attempts_total",
			Help:      "Requests sent to the rate feed by dataset kind and result",
		},
		[]string{"dataset", "result"},
	)

	fetchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "expense_tracker",
			Subsystem: "rates",
			Name:      "fetch_failures_total",
			Help:      "Rate fetches that failed after all attempts",
		},
	)
)

func datasetKind(dataset string) string {
	if dataset == LatestDataset {
		return LatestDataset
	}
	return "historical"
}
