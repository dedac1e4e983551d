package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ridesync",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	reconcileOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ridesync",
			Name:      "reconcile_outcomes_total",
			Help:      "Booking reconciliations by branch taken.",
		},
		[]string{"outcome"},
	)

	pushSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ridesync",
			Name:      "push_sends_total",
			Help:      "Per-device push delivery attempts by result.",
		},
		[]string{"result"},
	)

	sweepCleaned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ridesync",
			Name:      "sweep_cleaned_bookings_total",
			Help:      "Expired scheduled bookings archived by the sweep.",
		},
	)
)

// Reconciliation outcome labels.
const (
	OutcomeCancelled             = "cancelled"
	OutcomeActivated             = "activated"
	OutcomeConfirmationRequested = "confirmation_requested"
	OutcomeNotConfirmed          = "not_confirmed"
	OutcomeJobDeleted            = "job_deleted"
	OutcomeNotFound              = "not_found"
)

// Push result labels.
const (
	PushSent         = "sent"
	PushFailed       = "failed"
	PushInvalidToken = "invalid_token"
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, reconcileOutcomes, pushSends, sweepCleaned)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncReconcile records the branch a reconciliation took.
func IncReconcile(outcome string) {
	reconcileOutcomes.WithLabelValues(outcome).Inc()
}

// IncPush records one per-device delivery attempt.
func IncPush(result string) {
	pushSends.WithLabelValues(result).Inc()
}

// AddSweepCleaned records how many bookings a sweep run archived.
func AddSweepCleaned(n int) {
	sweepCleaned.Add(float64(n))
}
