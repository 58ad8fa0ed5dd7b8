// Package buffer provides a thread-safe, fixed-capacity event log with
// drop-oldest eviction, built-in statistics tracking, and optional Prometheus
// metrics integration.
//
// # Overview
//
// Log is a bounded, newest-first ordered collection for live event feeds.
// Pushing beyond capacity evicts the oldest entry, so the log never grows
// unbounded no matter how long the stream runs. This is the backpressure
// model of the whole pipeline: drop the oldest, never block upstream.
//
// # Quick Start
//
//	log, err := buffer.NewLog[event.RealtimeEvent](50)
//	if err != nil {
//		return err
//	}
//
//	log.Push(ev)
//
//	for _, ev := range log.Snapshot() { // newest first
//		render(ev)
//	}
//
// With metrics and a drop callback:
//
//	log, err := buffer.NewLog[event.RealtimeEvent](50,
//		buffer.WithMetrics[event.RealtimeEvent](registry, "feed"),
//		buffer.WithDropCallback[event.RealtimeEvent](func(ev event.RealtimeEvent) {
//			slog.Debug("evicted", "id", ev.ID)
//		}),
//	)
//
// # Copy-on-Write Snapshots
//
// Every mutation rebuilds an immutable newest-first snapshot under the lock;
// Snapshot returns that slice directly. Readers therefore never observe a
// torn state mid-update, and a held snapshot stays valid across later
// mutations. Rebuild cost is O(capacity) per push, which is intentional:
// capacity is small (default 50) and reads dominate writes in a UI feed.
//
// # Observability
//
// Statistics (writes, overflows, drops, size high-water mark) are always
// collected with atomic counters and available via Stats(). Prometheus
// metrics are optional via WithMetrics() and export the same figures for
// dashboards and alerting.
//
// # Thread Safety
//
// All operations are safe for concurrent use. Internal state is protected by
// sync.RWMutex; statistics use atomic operations. The drop callback runs
// outside the lock, so it may safely call back into the log.
package buffer
