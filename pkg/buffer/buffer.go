// Package buffer provides a thread-safe, fixed-capacity event log with
// drop-oldest eviction, built-in statistics, and optional Prometheus metrics.
package buffer

import (
	"sync"

	"github.com/c360/storystream/errors"
)

// DropCallback is called when an item is evicted due to capacity overflow.
// It receives the item that was dropped.
type DropCallback[T any] func(item T)

// Log is a bounded, newest-first ordered collection. Pushing beyond capacity
// evicts the oldest entry, so memory use is constant regardless of stream
// volume.
//
// Readers never iterate the internal ring: every mutation rebuilds an
// immutable snapshot (copy-on-write), so a concurrent Snapshot always
// observes a complete, consistent state.
type Log[T any] struct {
	mu       sync.RWMutex
	items    []T
	capacity int
	size     int
	head     int // next write position
	snap     []T // newest-first, immutable once published
	stats    *Statistics
	metrics  *logMetrics
	opts     *logOptions[T]
}

// NewLog creates a bounded log with the given capacity and options.
// Stats are always collected; metrics are optional via WithMetrics().
// Returns an error if metrics registration fails when metrics are requested.
func NewLog[T any](capacity int, options ...Option[T]) (*Log[T], error) {
	if capacity <= 0 {
		capacity = 1 // Minimum capacity
	}

	opts := applyOptions(options...)

	var metrics *logMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		var err error
		metrics, err = newLogMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "buffer", "NewLog", "metrics registration")
		}
	}

	return &Log[T]{
		items:    make([]T, capacity),
		capacity: capacity,
		snap:     []T{},
		stats:    NewStatistics(),
		metrics:  metrics,
		opts:     opts,
	}, nil
}

// Push inserts item as the newest entry, evicting the oldest when full.
func (l *Log[T]) Push(item T) {
	l.mu.Lock()

	var dropped T
	var didDrop bool

	if l.size == l.capacity {
		// The slot we are about to overwrite holds the oldest entry
		dropped = l.items[l.head]
		didDrop = true
		l.size--

		l.stats.Overflow()
		l.stats.Drop()
		if l.metrics != nil {
			l.metrics.recordOverflow()
			l.metrics.recordDrop()
		}
	}

	l.items[l.head] = item
	l.head = (l.head + 1) % l.capacity
	l.size++

	l.stats.Write()
	l.stats.UpdateSize(int64(l.size))
	if l.metrics != nil {
		l.metrics.recordWrite(l.size, l.capacity)
	}

	l.rebuildSnapshot()
	l.mu.Unlock()

	// Callback runs outside the lock so handlers may call back into the log
	if didDrop && l.opts.dropCallback != nil {
		l.opts.dropCallback(dropped)
	}
}

// Snapshot returns the current entries newest-first. The returned slice is
// immutable and must not be modified; it is safe to hold across further
// mutations.
func (l *Log[T]) Snapshot() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap
}

// Newest returns the most recently pushed entry.
func (l *Log[T]) Newest() (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var zero T
	if l.size == 0 {
		return zero, false
	}
	return l.snap[0], true
}

// Len returns the current number of entries.
func (l *Log[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.size
}

// Capacity returns the maximum number of entries the log can hold.
func (l *Log[T]) Capacity() int {
	return l.capacity // immutable, no lock needed
}

// IsFull returns true if the log is at maximum capacity.
func (l *Log[T]) IsFull() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.size == l.capacity
}

// Clear removes all entries.
func (l *Log[T]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	var zero T
	for i := range l.items {
		l.items[i] = zero
	}
	l.head = 0
	l.size = 0
	l.snap = []T{}

	l.stats.UpdateSize(0)
	if l.metrics != nil {
		l.metrics.updateSize(0, l.capacity)
	}
}

// Stats returns log statistics (always available for observability).
func (l *Log[T]) Stats() *Statistics {
	return l.stats
}

// rebuildSnapshot publishes a fresh newest-first copy. Caller holds l.mu.
func (l *Log[T]) rebuildSnapshot() {
	snap := make([]T, l.size)
	for i := 0; i < l.size; i++ {
		// head-1 is the newest entry, walking backwards through the ring
		idx := (l.head - 1 - i + l.capacity) % l.capacity
		snap[i] = l.items[idx]
	}
	l.snap = snap
}
