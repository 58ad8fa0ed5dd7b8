package stream

import (
	"sync"

	"github.com/c360/storystream/event"
)

// DecisionHandler receives decision-class events. The data argument carries
// the decoded decision payload and may be nil when the event had none.
//
// Handlers run synchronously on the frame-processing goroutine, after the
// event has entered the log. A slow handler delays subsequent frames.
type DecisionHandler func(ev event.RealtimeEvent, data *event.DecisionEventData)

// decisionRouter forwards decision-class events to the registered handler.
type decisionRouter struct {
	mu      sync.RWMutex
	handler DecisionHandler
}

// SetHandler replaces the registered handler. A nil handler disables routing.
func (r *decisionRouter) SetHandler(h DecisionHandler) {
	r.mu.Lock()
	r.handler = h
	r.mu.Unlock()
}

// Dispatch invokes the handler for ev if one is registered, returning whether
// a handler ran. Non-decision events are ignored.
func (r *decisionRouter) Dispatch(ev event.RealtimeEvent) bool {
	if !ev.Type.IsDecision() {
		return false
	}

	r.mu.RLock()
	handler := r.handler
	r.mu.RUnlock()
	if handler == nil {
		return false
	}

	handler(ev, event.DecodeDecisionData(ev))
	return true
}
