package users

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	migrationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "expense_tracker",
			Subsystem: "currency_migration",
			Name:      "runs_total",
			Help:      "Currency migrations by result",
		},
		[]string{"result"}, // complete, partial, failed
	)

	migratedExpenses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "expense_tracker",
			Subsystem: "currency_migration",
			Name:      "expenses_total",
			Help:      "Expenses visited by currency migrations",
		},
		[]string{"outcome"}, // restored, converted, failed
	)
)
