package depositservice

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeCredited        = "credited"
	outcomePending         = "pending"
	outcomeRejected        = "rejected"
	outcomeProcessorFailed = "processor_failed"
	outcomeCreditFailed    = "credit_failed"
	outcomeFailed          = "failed"
	outcomeReview          = "needs_review"
	outcomeStillOpen       = "still_open"
)

// Metrics counts deposit outcomes.
type Metrics struct {
	deposits  *prometheus.CounterVec
	reconcile *prometheus.CounterVec
}

// NewMetrics registers the deposit counters with reg.
// A nil registry keeps the counters unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		deposits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deposits_total",
			Help: "Deposits processed, by outcome.",
		}, []string{"outcome"}),
		reconcile: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deposit_reconcile_total",
			Help: "Deposits visited by the reconciler, by outcome.",
		}, []string{"outcome"}),
	}
}
