package resilience

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

const metricsNamespace = "expense_tracker"

var (
	breakerStateGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state (0=closed, 0.5=half-open, 1=open)",
	}, []string{"breaker"})

	breakerCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "circuit_breaker_calls_total",
		Help:      "Calls routed through a circuit breaker by outcome",
	}, []string{"breaker", "outcome"})

	breakerStateTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "circuit_breaker_state_changes_total",
		Help:      "Circuit breaker state transitions",
	}, []string{"breaker", "from", "to"})

	breakerIDCounter uint64
)

var breakerStateValues = map[gobreaker.State]float64{
	gobreaker.StateClosed:   0,
	gobreaker.StateHalfOpen: 0.5,
	gobreaker.StateOpen:     1,
}

func nextBreakerName(base string) string {
	if base != "" {
		return base
	}
	id := atomic.AddUint64(&breakerIDCounter, 1)
	return "breaker-" + strconv.FormatUint(id, 10)
}

func recordBreakerState(name string, state gobreaker.State) {
	value, ok := breakerStateValues[state]
	if !ok {
		value = -1
	}
	breakerStateGauge.WithLabelValues(name).Set(value)
}

func recordBreakerStateChange(name string, from, to gobreaker.State) {
	breakerStateTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
	recordBreakerState(name, to)
}

func recordBreakerRequest(name string) {
	breakerCalls.WithLabelValues(name, "attempted").Inc()
}

func recordBreakerFailure(name string) {
	breakerCalls.WithLabelValues(name, "failed").Inc()
}

func recordBreakerFallback(name string) {
	breakerCalls.WithLabelValues(name, "rejected").Inc()
}
