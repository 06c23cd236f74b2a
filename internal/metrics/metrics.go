package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PersonioRequestsTotal tracks outbound calls to the Personio API.
	PersonioRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personio_api_requests_total",
			Help: "Total number of Personio API requests made (by endpoint, method, and status).",
		},
		[]string{"endpoint", "method", "status"},
	)

	// PersonioRequestDuration measures the duration of outbound Personio calls.
	PersonioRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "personio_api_request_duration_seconds",
			Help:    "Duration of Personio API requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"endpoint", "method"},
	)

	// TokenExchangesTotal counts credential-to-token exchanges by outcome.
	TokenExchangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personio_token_exchanges_total",
			Help: "Number of client credential exchanges against the auth endpoint.",
		},
		[]string{"outcome"},
	)

	// TokenRotationsTotal counts tokens replaced from a response Authorization header.
	TokenRotationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "personio_token_rotations_total",
			Help: "Number of bearer tokens rotated by the server.",
		},
	)

	// GatewayErrorsTotal tracks failed adapter API calls by route and error kind.
	GatewayErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personio_gateway_errors_total",
			Help: "Number of adapter API calls that failed (by route and kind).",
		},
		[]string{"route", "kind"},
	)
)

// IncPersonioRequest increments the Personio API request counter.
func IncPersonioRequest(endpoint, method, status string) {
	PersonioRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// IncTokenExchange records the outcome of a credential exchange.
func IncTokenExchange(outcome string) {
	TokenExchangesTotal.WithLabelValues(outcome).Inc()
}

// IncTokenRotation records a server-driven token rotation.
func IncTokenRotation() {
	TokenRotationsTotal.Inc()
}

// IncGatewayError increments the adapter error counter.
func IncGatewayError(route, kind string) {
	GatewayErrorsTotal.WithLabelValues(route, kind).Inc()
}

// ObserveDuration records elapsed time since start into a HistogramVec or SummaryVec.
func ObserveDuration(v any, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()
	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case *prometheus.SummaryVec:
		metric.WithLabelValues(labels...).Observe(duration)
	}
}
