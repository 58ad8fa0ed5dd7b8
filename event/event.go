// Package event defines the typed realtime event model and the codec that
// turns raw transport frames into validated events.
package event

import "time"

// Type is the closed set of realtime event categories.
type Type string

const (
	// TypeCharacter is a character action in the narrative
	TypeCharacter Type = "character"
	// TypeStory is a story beat or narration update
	TypeStory Type = "story"
	// TypeSystem is a system notice (maintenance, mode changes)
	TypeSystem Type = "system"
	// TypeInteraction is a player/world interaction update
	TypeInteraction Type = "interaction"
	// TypeDecisionRequired asks the player for a blocking decision
	TypeDecisionRequired Type = "decision_required"
	// TypeDecisionAccepted confirms a submitted decision was accepted
	TypeDecisionAccepted Type = "decision_accepted"
	// TypeDecisionFinalized reports the final outcome of a decision
	TypeDecisionFinalized Type = "decision_finalized"
	// TypeNegotiationRequired asks the player to enter a negotiation
	TypeNegotiationRequired Type = "negotiation_required"
)

// Valid reports whether t is a member of the closed enum.
func (t Type) Valid() bool {
	switch t {
	case TypeCharacter, TypeStory, TypeSystem, TypeInteraction,
		TypeDecisionRequired, TypeDecisionAccepted,
		TypeDecisionFinalized, TypeNegotiationRequired:
		return true
	default:
		return false
	}
}

// IsDecision reports whether t requires out-of-band handling beyond passive
// display (a blocking UI prompt rather than a log line).
func (t Type) IsDecision() bool {
	switch t {
	case TypeDecisionRequired, TypeDecisionAccepted,
		TypeDecisionFinalized, TypeNegotiationRequired:
		return true
	default:
		return false
	}
}

// Severity indicates how prominently an event should be surfaced.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	default:
		return false
	}
}

// RealtimeEvent is one validated update from the stream.
//
// ID, Type and Title are mandatory; a frame missing any of them is rejected
// by the codec before it can enter the system. Timestamp is epoch
// milliseconds; the codec stamps arrival time when the producer omits it.
type RealtimeEvent struct {
	ID            string         `json:"id"`
	Type          Type           `json:"type"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	Timestamp     int64          `json:"timestamp"`
	CharacterName string         `json:"characterName,omitempty"`
	Severity      Severity       `json:"severity,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
}

// Time returns the event timestamp as a time.Time.
func (e RealtimeEvent) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// DecisionEventData is the richer payload carried by decision-class events,
// kept separate from RealtimeEvent.Data so ordinary consumers never need to
// parse decision-specific fields.
type DecisionEventData struct {
	DecisionID     string   `json:"decisionId"`
	Options        []string `json:"options,omitempty"`
	TimeoutSeconds int      `json:"timeoutSeconds,omitempty"`
	ExpiresAt      int64    `json:"expiresAt,omitempty"`
}
