package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "facilitybook"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status class.",
		},
		[]string{"route", "code"},
	)

	bookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Accepted booking requests by initial status.",
		},
		[]string{"status"},
	)

	validationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_rejections_total",
			Help:      "Booking requests refused by the validator, by error kind.",
		},
		[]string{"kind"},
	)

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Booking status transitions by target status.",
		},
		[]string{"to"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notifications by outcome (delivered, dropped).",
		},
		[]string{"outcome"},
	)

	syncFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_failures_total",
			Help:      "Failed persistence or mirror sync attempts by sink.",
		},
		[]string{"sink"},
	)

	reports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Report generation attempts by result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, validationFailures, transitions, notifications, syncFailures, reports)
	})
}

func IncHTTP(route, code string) {
	httpRequests.WithLabelValues(route, code).Inc()
}

func IncBookingCreated(status string) {
	bookingsCreated.WithLabelValues(status).Inc()
}

func IncValidationFailure(kind string) {
	validationFailures.WithLabelValues(kind).Inc()
}

func IncTransition(to string) {
	transitions.WithLabelValues(to).Inc()
}

// IncNotification records a delivered or dropped notice.
func IncNotification(delivered bool) {
	outcome := "dropped"
	if delivered {
		outcome = "delivered"
	}
	notifications.WithLabelValues(outcome).Inc()
}

func IncSyncFailure(sink string) {
	syncFailures.WithLabelValues(sink).Inc()
}

func IncReport(result string) {
	reports.WithLabelValues(result).Inc()
}
