package stream

import "time"

// heartbeatMonitor detects stream silence. Every inbound frame rearms the
// timer; if it ever fires, the stream is presumed dead even though the
// transport has not reported an error.
//
// The monitor has no lock of its own. All methods must be called with the
// owning Subscription's mutex held; the onSilence callback is invoked on a
// timer goroutine and must synchronize itself.
type heartbeatMonitor struct {
	timeout   time.Duration
	onSilence func()
	timer     *time.Timer
}

func newHeartbeatMonitor(timeout time.Duration, onSilence func()) *heartbeatMonitor {
	return &heartbeatMonitor{
		timeout:   timeout,
		onSilence: onSilence,
	}
}

// rearm restarts the silence countdown, cancelling any prior timer first so
// at most one is ever pending.
func (h *heartbeatMonitor) rearm() {
	h.stop()
	if h.timeout <= 0 {
		return
	}
	h.timer = time.AfterFunc(h.timeout, h.onSilence)
}

// stop cancels the pending timer, if any.
func (h *heartbeatMonitor) stop() {
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}
