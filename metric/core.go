package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all platform-level metrics (not component-specific)
type Metrics struct {
	// Subscription metrics
	ConnectionState   *prometheus.GaugeVec
	FramesReceived    *prometheus.CounterVec
	EventsAccepted    *prometheus.CounterVec
	EventsDropped     *prometheus.CounterVec
	DecisionEvents    *prometheus.CounterVec
	Reconnects        *prometheus.CounterVec
	HeartbeatTimeouts *prometheus.CounterVec
	ConnectedSeconds  *prometheus.HistogramVec
	ErrorsTotal       *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all platform metrics
func NewMetrics() *Metrics {
	return &Metrics{
		ConnectionState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "storystream",
				Subsystem: "connection",
				Name:      "state",
				Help:      "Connection state (0=disconnected, 1=connecting, 2=connected, 3=reconnecting, 4=error)",
			},
			[]string{"subscription"},
		),

		FramesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storystream",
				Subsystem: "frames",
				Name:      "received_total",
				Help:      "Total number of frames received from the transport",
			},
			[]string{"subscription"},
		),

		EventsAccepted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storystream",
				Subsystem: "events",
				Name:      "accepted_total",
				Help:      "Total number of events that passed validation and entered the buffer",
			},
			[]string{"subscription", "type"},
		),

		EventsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storystream",
				Subsystem: "events",
				Name:      "dropped_total",
				Help:      "Total number of frames dropped at the boundary",
			},
			[]string{"subscription", "reason"},
		),

		DecisionEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storystream",
				Subsystem: "events",
				Name:      "decision_total",
				Help:      "Total number of decision-class events routed to the handler",
			},
			[]string{"subscription", "type"},
		),

		Reconnects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storystream",
				Subsystem: "connection",
				Name:      "reconnect_attempts_total",
				Help:      "Total number of reconnection attempts",
			},
			[]string{"subscription"},
		),

		HeartbeatTimeouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storystream",
				Subsystem: "connection",
				Name:      "heartbeat_timeouts_total",
				Help:      "Total number of reconnects forced by heartbeat silence",
			},
			[]string{"subscription"},
		),

		ConnectedSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "storystream",
				Subsystem: "connection",
				Name:      "connected_seconds",
				Help:      "Duration of each connected period in seconds",
				Buckets:   []float64{1, 10, 60, 300, 1800, 3600, 14400, 86400},
			},
			[]string{"subscription"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storystream",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors",
			},
			[]string{"subscription", "type"},
		),
	}
}

// RecordConnectionState updates the connection state gauge
func (c *Metrics) RecordConnectionState(subscription string, state int) {
	c.ConnectionState.WithLabelValues(subscription).Set(float64(state))
}

// RecordFrameReceived increments the received frame counter
func (c *Metrics) RecordFrameReceived(subscription string) {
	c.FramesReceived.WithLabelValues(subscription).Inc()
}

// RecordEventAccepted increments the accepted event counter
func (c *Metrics) RecordEventAccepted(subscription, eventType string) {
	c.EventsAccepted.WithLabelValues(subscription, eventType).Inc()
}

// RecordEventDropped increments the dropped frame counter
func (c *Metrics) RecordEventDropped(subscription, reason string) {
	c.EventsDropped.WithLabelValues(subscription, reason).Inc()
}

// RecordDecisionEvent increments the decision event counter
func (c *Metrics) RecordDecisionEvent(subscription, eventType string) {
	c.DecisionEvents.WithLabelValues(subscription, eventType).Inc()
}

// RecordReconnectAttempt increments the reconnection attempt counter
func (c *Metrics) RecordReconnectAttempt(subscription string) {
	c.Reconnects.WithLabelValues(subscription).Inc()
}

// RecordHeartbeatTimeout increments the heartbeat timeout counter
func (c *Metrics) RecordHeartbeatTimeout(subscription string) {
	c.HeartbeatTimeouts.WithLabelValues(subscription).Inc()
}

// RecordConnectedDuration records how long a connected period lasted
func (c *Metrics) RecordConnectedDuration(subscription string, d time.Duration) {
	c.ConnectedSeconds.WithLabelValues(subscription).Observe(d.Seconds())
}

// RecordError increments the error counter
func (c *Metrics) RecordError(subscription, errorType string) {
	c.ErrorsTotal.WithLabelValues(subscription, errorType).Inc()
}
