package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agenda_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agenda_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	contactOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agenda_contact_operations_total",
		Help: "Contact operations by kind and outcome",
	}, []string{"operation", "outcome"})

	authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agenda_auth_attempts_total",
		Help: "Registrations and logins by outcome",
	}, []string{"kind", "outcome"})

	loginThrottled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agenda_login_throttled_total",
		Help: "Login attempts rejected by the rate limiter",
	})

	eventSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agenda_event_subscribers",
		Help: "Open live event connections",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveContactOperation counts a contact operation with its outcome label
// (ok, or the kind of refusal).
func ObserveContactOperation(operation, outcome string) {
	contactOperations.WithLabelValues(operation, outcome).Inc()
}

// ObserveAuth counts a registration or login attempt.
func ObserveAuth(kind, outcome string) {
	authAttempts.WithLabelValues(kind, outcome).Inc()
}

func ObserveLoginThrottled() {
	loginThrottled.Inc()
}

func SubscriberConnected()    { eventSubscribers.Inc() }
func SubscriberDisconnected() { eventSubscribers.Dec() }
