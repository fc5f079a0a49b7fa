package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reservations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_reservations_total",
			Help: "Ticket reservation attempts per event",
		},
		[]string{"event_id", "status"},
	)

	capacityRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "booking_capacity_remaining",
			Help: "Remaining ticket capacity per event",
		},
		[]string{"event_id"},
	)

	statusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_status_transitions_total",
			Help: "Booking status transitions",
		},
		[]string{"status"},
	)

	reconciliations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_reconciliations_total",
			Help: "Payment outcomes consumed by the reconciler",
		},
		[]string{"outcome"},
	)
)

func ReservationGranted(eventID string) {
	reservations.WithLabelValues(eventID, "granted").Inc()
}

func ReservationRejected(eventID string) {
	reservations.WithLabelValues(eventID, "rejected").Inc()
}

func SetRemainingCapacity(eventID string, remaining int) {
	capacityRemaining.WithLabelValues(eventID).Set(float64(remaining))
}

func StatusTransition(status string) {
	statusTransitions.WithLabelValues(status).Inc()
}

func Reconciliation(outcome string) {
	reconciliations.WithLabelValues(outcome).Inc()
}
