// Prometheus instrumentation for the engine's business events. HTTP traffic
// metrics live in the middleware package; the counters here track what the
// engine actually does: detections, created commitments, sweep transitions,
// and notification outcomes. Label cardinality is fixed and small.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// detectionsTotal counts classifier verdicts by outcome type
	// ("time", "action", "vague", "none").
	detectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commitment_detections_total",
			Help: "Total classifier verdicts by detection type.",
		},
		[]string{"type"},
	)

	// createdTotal counts commitments actually persisted (idempotent
	// replays excluded), by origin ("inline", "reconcile", "manual").
	createdTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commitments_created_total",
			Help: "Total commitments created, by origin.",
		},
		[]string{"origin"},
	)

	// sweepTransitionsTotal counts status transitions applied by sweeps.
	sweepTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commitment_sweep_transitions_total",
			Help: "Status transitions applied by sweep passes.",
		},
		[]string{"transition"}, // "overdue", "escalated"
	)

	// notificationsTotal counts escalation notification attempts.
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commitment_notifications_total",
			Help: "Escalation notification attempts by result.",
		},
		[]string{"result"}, // "sent", "failed"
	)
)

func init() {
	prometheus.MustRegister(detectionsTotal, createdTotal, sweepTransitionsTotal, notificationsTotal)
}
