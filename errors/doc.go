// Package errors provides standardized error handling patterns for storystream.
//
// # Overview
//
// The errors package implements a three-class error classification system:
// Transient (temporary, retryable), Invalid (bad input, non-retryable), and
// Fatal (unrecoverable, stop processing).
//
// Classification is what lets the connection state machine decide between
// re-entering the backoff loop and surfacing a terminal error without
// hardcoded error string matching at every call site.
//
// # Error Classification
//
//   - Transient: network timeouts, lost connections, heartbeat silence
//     (retry recommended)
//   - Invalid: malformed frames, validation failures, bad configuration
//     (do not retry; log and drop)
//   - Fatal: retry ceiling reached, transport construction failures
//     (stop; wait for a manual reconnect)
//
// The classification system integrates with Go's standard error handling,
// supporting errors.Is(), errors.As(), and error wrapping chains.
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Subscription", "connect", "dial")
//	errors.WrapInvalid(err, "Codec", "Decode", "validate event")
//	errors.WrapFatal(err, "Subscription", "onError", "retries exhausted")
//
// The generic Wrap() adds context without changing classification.
//
// # Standard Error Variables
//
// Pre-defined variables cover the common conditions of a stream client:
// lifecycle (ErrAlreadyStarted, ErrAlreadyClosed, ErrDisabled), transport
// (ErrConnectionLost, ErrHeartbeatTimeout, ErrDialFailed), frame processing
// (ErrParsingFailed, ErrInvalidEvent), and retry (ErrMaxRetriesExceeded).
// Use these instead of ad hoc error strings so call sites can match with
// errors.Is.
package errors
