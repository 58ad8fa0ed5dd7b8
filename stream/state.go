package stream

// State describes the connection lifecycle of a Subscription.
type State string

const (
	// StateDisconnected means no transport is open and none is pending.
	StateDisconnected State = "disconnected"
	// StateConnecting means the first transport open is in flight.
	StateConnecting State = "connecting"
	// StateConnected means a transport is open and frames are flowing.
	StateConnected State = "connected"
	// StateReconnecting means a retry is scheduled or in flight after a drop.
	StateReconnecting State = "reconnecting"
	// StateError means the retry ceiling was hit; only Reconnect() leaves it.
	StateError State = "error"
)

// String returns the state name.
func (s State) String() string {
	return string(s)
}

// Active reports whether the subscription is trying to maintain a connection.
func (s State) Active() bool {
	switch s {
	case StateConnecting, StateConnected, StateReconnecting:
		return true
	default:
		return false
	}
}

// metricValue maps the state onto the connection state gauge encoding.
func (s State) metricValue() int {
	switch s {
	case StateConnecting:
		return 1
	case StateConnected:
		return 2
	case StateReconnecting:
		return 3
	case StateError:
		return 4
	default:
		return 0
	}
}
