// Package backoff provides the exponential backoff schedule with jitter used
// for stream reconnection.
//
// # Overview
//
// The package is intentionally minimal: a Scheduler that, given a 0-indexed
// attempt number, returns how long to wait before the next reconnection. The
// connection state machine owns the actual timer; the Scheduler only does the
// arithmetic.
//
// # Schedule
//
// For attempt k the base delay is
//
//	min(InitialDelay * 2^k, MaxDelay)
//
// to which a uniform random 10-20% of the capped value is added, floored to
// whole milliseconds. Defaults: 1s initial, 30s ceiling, 10 retries.
//
// # Usage
//
//	sched := backoff.NewScheduler(backoff.DefaultConfig())
//
//	if sched.Exhausted(attempt) {
//	    // give up, surface terminal error
//	}
//	timer := time.AfterFunc(sched.Delay(attempt), reconnect)
//
// # Thread Safety
//
// All methods are safe for concurrent use. The jitter mechanism uses a
// thread-safe random source to avoid contention.
package backoff
