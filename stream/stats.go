package stream

import "time"

// Stats is a point-in-time snapshot of connection health counters.
type Stats struct {
	// RetryCount is the number of reconnection attempts since the last
	// successful connection. Reset to zero on every successful open.
	RetryCount int `json:"retry_count"`

	// TotalReconnections counts successful re-opens after the first
	// connection of the subscription's lifetime.
	TotalReconnections int `json:"total_reconnections"`

	// LastConnectedAt is when the current or most recent connection opened.
	LastConnectedAt time.Time `json:"last_connected_at"`

	// LastErrorAt is when the most recent transport error was observed.
	LastErrorAt time.Time `json:"last_error_at"`

	// LastEventAt is when the most recent frame arrived, valid or not.
	LastEventAt time.Time `json:"last_event_at"`
}
