// Package event defines the typed realtime event model shared across the
// stream pipeline and the codec that parses raw frames into it.
//
// A RealtimeEvent is one update from the narrative server: a character
// action, a story beat, a system notice, an interaction, or one of the
// decision-class types that require out-of-band handling. ID, Type and Title
// are mandatory; the Codec rejects any frame missing one of them before the
// event can enter the system, returning a classified Invalid error that the
// caller is expected to log and drop.
//
// Decision-class events additionally carry a DecisionEventData payload
// (decision id, options, timeout, expiry) inside their opaque data map;
// DecodeDecisionData extracts it so ordinary consumers never parse
// decision-specific fields.
package event
