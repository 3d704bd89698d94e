package expenses

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "expense_tracker",
		Subsystem: "categorization_queue",
		Name:      "depth",
		Help:      "Categorization jobs waiting for a worker",
	})

	queueJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "expense_tracker",
			Subsystem: "categorization_queue",
			Name:      "jobs_total",
			Help:      "Categorization jobs by result (done, failed, rejected)",
		},
		[]string{"result"},
	)

	jobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "expense_tracker",
		Subsystem: "categorization_queue",
		Name:      "job_duration_seconds",
		Help:      "Time spent categorizing one expense in the background",
		Buckets:   prometheus.DefBuckets,
	})
)
