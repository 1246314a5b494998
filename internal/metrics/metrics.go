package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pawscheduler",
			Name:      "booking_created_total",
			Help:      "Count of appointments created by source.",
		},
		[]string{"source"},
	)

	overrides = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pawscheduler",
			Name:      "booking_override_total",
			Help:      "Count of bookings confirmed past a slot conflict.",
		},
	)

	remindersSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pawscheduler",
			Name:      "reminders_sent_total",
			Help:      "Count of reminder dispatch attempts by outcome.",
		},
		[]string{"outcome"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pawscheduler",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, overrides, remindersSent, httpRequests)
	})
}

func IncBookingCreated(source string) {
	bookingCreated.WithLabelValues(source).Inc()
}

func IncOverride() {
	overrides.Inc()
}

func IncReminder(outcome string) {
	remindersSent.WithLabelValues(outcome).Inc()
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
