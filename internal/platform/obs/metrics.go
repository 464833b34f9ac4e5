package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Cycle outcomes used as the "outcome" label of CyclesTotal.
const (
	OutcomeNear                = "near"
	OutcomeNotNear             = "not_near"
	OutcomePermissionDenied    = "permission_denied"
	OutcomePositionUnavailable = "position_unavailable"
	OutcomeFetchFailed         = "fetch_failed"
)

var (
	// CyclesTotal counts completed proximity cycles by outcome
	CyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nearby",
			Name:      "cycles_total",
			Help:      "Total number of proximity evaluation cycles by outcome",
		},
		[]string{"outcome"},
	)

	// TicksSkipped counts ticks dropped because the previous cycle was still running
	TicksSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "nearby",
			Name:      "ticks_skipped_total",
			Help:      "Total number of ticks skipped while a cycle was in flight",
		},
	)

	CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "nearby",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of proximity evaluation cycles",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2, 5, 10},
		},
	)

	// Transitions counts verdict changes ("enter" or "exit")
	Transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nearby",
			Name:      "verdict_transitions_total",
			Help:      "Total number of verdict transitions",
		},
		[]string{"event"},
	)

	// RemoteRequests counts calls to the remote song service by endpoint and status class
	RemoteRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nearby",
			Name:      "remote_requests_total",
			Help:      "Total number of requests sent to the remote song service",
		},
		[]string{"endpoint", "status"},
	)

	once sync.Once
)

// InitMetrics registers all metrics with the default Prometheus registry.
// Safe to call more than once.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.MustRegister(
			CyclesTotal,
			TicksSkipped,
			CycleDuration,
			Transitions,
			RemoteRequests,
		)
	})
}
