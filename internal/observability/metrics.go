package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hackit_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// WebSocketConnectionsTotal is the gauge of notification socket connections held by the hub.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hackit_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts WebSocket events by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hackit_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hackit_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// PresenceTransitions counts users coming online or going offline.
	PresenceTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hackit_presence_transitions_total",
		Help: "Presence transitions by state",
	}, []string{"state"})

	// LikeTransitions counts like toggles by outcome (liked, unliked, noop).
	LikeTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hackit_like_transitions_total",
		Help: "Like state transitions by outcome",
	}, []string{"outcome"})

	// NotificationsCreated counts notifications raised by action.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hackit_notifications_created_total",
		Help: "Notifications created by action",
	}, []string{"action"})

	// ExternalCallDuration records latency of calls to the auth provider, doc store and LLM.
	ExternalCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hackit_external_call_duration_seconds",
		Help:    "Latency of outbound calls by service, operation and outcome",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"service", "operation", "outcome"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// TrackExternalCall returns a function that records the latency and outcome of an outbound call.
func TrackExternalCall(service, operation string) func(err error) {
	start := time.Now()
	return func(err error) {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		ExternalCallDuration.WithLabelValues(service, operation, outcome).Observe(time.Since(start).Seconds())
	}
}
