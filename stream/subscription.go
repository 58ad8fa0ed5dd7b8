package stream

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/c360/storystream/errors"
	"github.com/c360/storystream/event"
	"github.com/c360/storystream/metric"
	"github.com/c360/storystream/pkg/backoff"
	"github.com/c360/storystream/pkg/buffer"
)

// maxLoggedPayload bounds how much of a rejected frame ends up in logs.
const maxLoggedPayload = 512

// Subscription maintains one long-lived, receive-only connection to a
// realtime event stream and exposes the accumulated events, connection
// state, and health counters to callers.
//
// All exported methods are safe for concurrent use. Event snapshots are
// immutable, so callers may hold them across further stream activity.
type Subscription struct {
	cfg    Config
	name   string
	logger *slog.Logger
	core   *metric.Metrics

	codec  *event.Codec
	buf    *buffer.Log[event.RealtimeEvent]
	router *decisionRouter
	sched  *backoff.Scheduler

	mu            sync.Mutex
	state         State
	lastErr       error
	stats         Stats
	transport     Transport
	dialer        Dialer
	heartbeat     *heartbeatMonitor
	retryTimer    *time.Timer
	gen           uint64 // supersedes stale transports, readers and timers
	started       bool
	disposed      bool
	everConnected bool
	connectedAt   time.Time
}

// New builds a Subscription from cfg. Zero fields take defaults; an invalid
// endpoint or retry schedule fails immediately with a fatal error.
//
// The subscription starts idle. Call Start to open the stream.
func New(cfg Config) (*Subscription, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapFatal(err, "Subscription", "New", "validate configuration")
	}

	dialer, err := dialerFor(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	var bufOpts []buffer.Option[event.RealtimeEvent]
	var core *metric.Metrics
	if cfg.Metrics != nil {
		core = cfg.Metrics.CoreMetrics()
		bufOpts = append(bufOpts, buffer.WithMetrics[event.RealtimeEvent](cfg.Metrics, cfg.Name))
	}

	buf, err := buffer.NewLog[event.RealtimeEvent](cfg.MaxEvents, bufOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "Subscription", "New", "create event log")
	}

	s := &Subscription{
		cfg:    cfg,
		name:   cfg.Name,
		logger: cfg.Logger.With("subscription", cfg.Name),
		core:   core,
		codec:  event.NewCodec(),
		buf:    buf,
		router: &decisionRouter{},
		sched:  backoff.NewScheduler(cfg.backoff()),
		dialer: dialer,
		state:  StateDisconnected,
	}
	s.heartbeat = newHeartbeatMonitor(cfg.HeartbeatTimeout, s.heartbeatFired)
	s.router.SetHandler(cfg.OnDecisionEvent)

	if s.core != nil {
		s.core.RecordConnectionState(s.name, s.state.metricValue())
	}
	return s, nil
}

// Name returns the subscription's log/metric label.
func (s *Subscription) Name() string {
	return s.name
}

// Start opens the stream. On a disabled subscription it is a no-op: the
// state stays disconnected and no transport is ever dialed.
func (s *Subscription) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return errors.ErrAlreadyClosed
	}
	if !s.cfg.Enabled {
		s.logger.Debug("subscription disabled, not connecting")
		return nil
	}
	if s.started && s.state.Active() {
		return errors.ErrAlreadyStarted
	}

	s.started = true
	s.connectLocked()
	return nil
}

// Reconnect clears any terminal error and forces a fresh connection with the
// retry counter reset. It is the only way out of the error state. On a
// disabled or closed subscription it does nothing.
func (s *Subscription) Reconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed || !s.cfg.Enabled {
		return
	}
	s.started = true
	s.stats.RetryCount = 0
	s.lastErr = nil
	s.logger.Info("manual reconnect requested")
	s.connectLocked()
}

// Close tears the subscription down: timers are cancelled, the transport is
// closed, and the state goes to disconnected. Safe to call more than once;
// later calls do nothing. The buffered events remain readable.
func (s *Subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return nil
	}
	s.disposed = true
	s.gen++
	s.retireTimersLocked()
	s.recordDisconnectLocked()
	s.closeTransportLocked()
	s.setStateLocked(StateDisconnected)
	s.logger.Info("subscription closed")
	return nil
}

// Events returns the buffered events, newest first. The slice is immutable
// and remains valid after further stream activity.
func (s *Subscription) Events() []event.RealtimeEvent {
	return s.buf.Snapshot()
}

// Newest returns the most recent event, if any.
func (s *Subscription) Newest() (event.RealtimeEvent, bool) {
	return s.buf.Newest()
}

// State returns the current connection state.
func (s *Subscription) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Loading reports whether the first connection attempt is still in flight.
func (s *Subscription) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateConnecting
}

// Err returns the most recent connection error, or nil when healthy. While
// retries are in flight the error is transient; once the retry ceiling is
// hit it becomes fatal and sticks until Reconnect or Close.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Stats returns a snapshot of the connection health counters.
func (s *Subscription) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// BufferStats exposes the event log's throughput counters.
func (s *Subscription) BufferStats() buffer.StatsSummary {
	return s.buf.Stats().Summary()
}

// SetDecisionHandler replaces the decision event handler. Passing nil stops
// routing; buffered events are unaffected either way.
func (s *Subscription) SetDecisionHandler(h DecisionHandler) {
	s.router.SetHandler(h)
}

// connectLocked opens a fresh transport, superseding whatever came before.
// Caller holds s.mu.
func (s *Subscription) connectLocked() {
	s.gen++
	gen := s.gen

	s.retireTimersLocked()
	s.closeTransportLocked()

	if s.stats.RetryCount > 0 {
		s.setStateLocked(StateReconnecting)
	} else {
		s.setStateLocked(StateConnecting)
	}
	s.logger.Debug("dialing stream", "endpoint", s.cfg.Endpoint, "attempt", s.stats.RetryCount)

	go s.dial(gen)
}

// dial opens the transport off the lock, then hands the result back to the
// state machine. A result that arrives after the generation moved on is
// discarded and its connection closed.
func (s *Subscription) dial(gen uint64) {
	t, err := s.dialer.Dial(s.cfg.Endpoint)

	s.mu.Lock()
	if s.disposed || gen != s.gen {
		s.mu.Unlock()
		if err == nil {
			_ = t.Close()
		}
		return
	}
	if err != nil {
		s.handleTransportErrorLocked(err)
		s.mu.Unlock()
		return
	}

	s.transport = t
	s.openLocked()
	s.mu.Unlock()

	go s.readLoop(gen, t)
}

// openLocked records a successful connection. Caller holds s.mu.
func (s *Subscription) openLocked() {
	now := time.Now()
	s.stats.LastConnectedAt = now
	s.stats.RetryCount = 0
	if s.everConnected {
		s.stats.TotalReconnections++
	}
	s.everConnected = true
	s.connectedAt = now
	s.lastErr = nil

	s.setStateLocked(StateConnected)
	s.heartbeat.rearm()
	s.logger.Info("stream connected",
		"endpoint", s.cfg.Endpoint,
		"reconnections", s.stats.TotalReconnections)
}

// readLoop pulls frames from one transport until it fails. A failure whose
// generation is stale belongs to a superseded connection and is dropped.
func (s *Subscription) readLoop(gen uint64, t Transport) {
	for {
		frame, err := t.Receive()
		if err != nil {
			s.mu.Lock()
			if s.disposed || gen != s.gen {
				s.mu.Unlock()
				return
			}
			s.handleTransportErrorLocked(err)
			s.mu.Unlock()
			return
		}
		s.onFrame(gen, frame)
	}
}

// onFrame processes one inbound frame: liveness first, then decode, then
// buffer insert, then decision routing. Frames that fail decoding are logged
// and dropped without touching the log.
func (s *Subscription) onFrame(gen uint64, frame []byte) {
	s.mu.Lock()
	if s.disposed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	// Any inbound frame proves the stream is alive, valid or not
	s.heartbeat.rearm()
	s.stats.LastEventAt = time.Now()
	s.mu.Unlock()

	if s.core != nil {
		s.core.RecordFrameReceived(s.name)
	}

	ev, err := s.codec.Decode(frame)
	if err != nil {
		reason := "validation_error"
		if stderrors.Is(err, errors.ErrParsingFailed) {
			reason = "parse_error"
		}
		s.logger.Warn("dropping frame",
			"reason", reason,
			"error", err,
			"payload", truncatePayload(frame))
		if s.core != nil {
			s.core.RecordEventDropped(s.name, reason)
		}
		return
	}

	s.buf.Push(ev)
	if s.core != nil {
		s.core.RecordEventAccepted(s.name, string(ev.Type))
	}

	if ev.Type.IsDecision() {
		if s.router.Dispatch(ev) && s.core != nil {
			s.core.RecordDecisionEvent(s.name, string(ev.Type))
		}
	}
}

// heartbeatFired runs on the heartbeat timer goroutine when the stream has
// been silent past the configured timeout.
func (s *Subscription) heartbeatFired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed || s.state != StateConnected {
		return
	}
	// A frame may have raced the timer; only genuine silence counts
	last := s.stats.LastEventAt
	if s.connectedAt.After(last) {
		last = s.connectedAt
	}
	if time.Since(last) < s.cfg.HeartbeatTimeout {
		return
	}
	s.logger.Warn("heartbeat timeout, forcing reconnect",
		"timeout", s.cfg.HeartbeatTimeout)
	if s.core != nil {
		s.core.RecordHeartbeatTimeout(s.name)
	}

	// Supersede the read loop so the error from the forced close is ignored
	s.gen++
	s.handleTransportErrorLocked(errors.ErrHeartbeatTimeout)
}

// handleTransportErrorLocked drives the retry side of the state machine:
// either schedule the next attempt with backoff, or give up once the retry
// ceiling is hit. Caller holds s.mu.
func (s *Subscription) handleTransportErrorLocked(cause error) {
	s.recordDisconnectLocked()
	s.closeTransportLocked()
	s.heartbeat.stop()
	s.stats.LastErrorAt = time.Now()

	attempt := s.stats.RetryCount
	if s.sched.Exhausted(attempt) {
		s.lastErr = errors.WrapFatal(errors.ErrMaxRetriesExceeded,
			"Subscription", "reconnect",
			fmt.Sprintf("%d attempts", s.sched.MaxRetries()))
		s.setStateLocked(StateError)
		s.logger.Error("giving up on stream",
			"attempts", s.sched.MaxRetries(),
			"cause", cause)
		if s.core != nil {
			s.core.RecordError(s.name, "retries_exhausted")
		}
		return
	}

	delay := s.sched.Delay(attempt)
	s.stats.RetryCount = attempt + 1
	s.lastErr = errors.WrapTransient(cause, "Subscription", "reconnect",
		fmt.Sprintf("attempt %d/%d", attempt+1, s.sched.MaxRetries()))
	s.setStateLocked(StateReconnecting)
	s.logger.Info("scheduling reconnect",
		"attempt", attempt+1,
		"max_retries", s.sched.MaxRetries(),
		"delay", delay,
		"cause", cause)
	if s.core != nil {
		s.core.RecordReconnectAttempt(s.name)
	}

	s.armRetryTimerLocked(delay)
}

// armRetryTimerLocked schedules the next connection attempt, cancelling any
// pending one first. Caller holds s.mu.
func (s *Subscription) armRetryTimerLocked(delay time.Duration) {
	if s.retryTimer != nil {
		s.retryTimer.Stop()
	}
	gen := s.gen
	s.retryTimer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.disposed || gen != s.gen || s.state != StateReconnecting {
			return
		}
		s.connectLocked()
	})
}

// retireTimersLocked cancels the retry timer and heartbeat. Caller holds s.mu.
func (s *Subscription) retireTimersLocked() {
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
	s.heartbeat.stop()
}

// closeTransportLocked closes and forgets the active transport, if any.
// Caller holds s.mu.
func (s *Subscription) closeTransportLocked() {
	if s.transport != nil {
		_ = s.transport.Close()
		s.transport = nil
	}
}

// recordDisconnectLocked observes the length of a connected period ending
// now. Caller holds s.mu.
func (s *Subscription) recordDisconnectLocked() {
	if s.state == StateConnected && !s.connectedAt.IsZero() {
		if s.core != nil {
			s.core.RecordConnectedDuration(s.name, time.Since(s.connectedAt))
		}
		s.connectedAt = time.Time{}
	}
}

// setStateLocked transitions the state machine and mirrors the new state to
// the gauge. Caller holds s.mu.
func (s *Subscription) setStateLocked(state State) {
	s.state = state
	if s.core != nil {
		s.core.RecordConnectionState(s.name, state.metricValue())
	}
}

// truncatePayload bounds a raw frame for log output.
func truncatePayload(frame []byte) string {
	if len(frame) <= maxLoggedPayload {
		return string(frame)
	}
	return string(frame[:maxLoggedPayload]) + "...(truncated)"
}
