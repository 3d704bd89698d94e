package categorization

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var categorizations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "expense_tracker",
		Subsystem: "categorization",
		Name:      "results_total",
		Help:      "Categorization results by source (cache_hit, model, fallback)",
	},
	[]string{"source"},
)
