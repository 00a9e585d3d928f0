// Package metrics defines the Prometheus collectors of the travel log API.
// Collectors are registered with the default registry on import and served
// by promhttp on GET /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travellog_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travellog_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "travellog_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Authentication Metrics
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travellog_auth_attempts_total",
			Help: "Total number of token requests by outcome",
		},
		[]string{"result"}, // "success", "missing", "unknown", "invalid"
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "travellog_websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "travellog_websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSDroppedClients = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "travellog_websocket_dropped_clients_total",
			Help: "Total number of WebSocket clients dropped because their send buffer was full",
		},
	)

	StatsBroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travellog_stats_broadcasts_total",
			Help: "Total number of stats recomputations by outcome",
		},
		[]string{"result"}, // "success", "error"
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordAuthAttempt counts a token request by outcome.
func RecordAuthAttempt(result string) {
	AuthAttemptsTotal.WithLabelValues(result).Inc()
}

// RecordStatsBroadcast counts a stats recomputation.
func RecordStatsBroadcast(err error) {
	if err != nil {
		StatsBroadcastsTotal.WithLabelValues("error").Inc()
		return
	}
	StatsBroadcastsTotal.WithLabelValues("success").Inc()
}
