package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tokensPurchased = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dining_tokens_purchased_total",
		Help: "Count of meal tokens purchased, by meal type",
	}, []string{"meal_type"})

	cancellationsRequested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dining_cancellations_requested_total",
		Help: "Count of cancellation requests submitted",
	})

	cancellationsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dining_cancellations_resolved_total",
		Help: "Count of cancellation decisions, by outcome",
	}, []string{"status"})

	refundsCredited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dining_refunds_credited_taka",
		Help: "Total refund amount credited back to students",
	})

	paymentsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dining_payments_completed_total",
		Help: "Count of balance top-ups recorded",
	})
)

// TokenPurchased records one purchase.
func TokenPurchased(mealType string) {
	tokensPurchased.WithLabelValues(mealType).Inc()
}

// CancellationRequested records one submitted request.
func CancellationRequested() {
	cancellationsRequested.Inc()
}

// CancellationResolved records a decision and, on approval, the refund paid.
func CancellationResolved(status string, refund float64) {
	cancellationsResolved.WithLabelValues(status).Inc()
	if status == "approved" {
		refundsCredited.Add(refund)
	}
}

// PaymentCompleted records one top-up.
func PaymentCompleted() {
	paymentsCompleted.Inc()
}
