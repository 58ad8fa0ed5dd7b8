package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/c360/storystream/errors"
)

// Codec parses and validates raw frames into RealtimeEvents.
//
// The two failure modes are deliberately distinct classified errors so call
// sites must choose what to do with each: a structural parse failure
// (ErrParsingFailed) and a validation failure on a well-formed frame
// (ErrInvalidEvent / ErrUnknownType). Neither outcome is ever allowed to
// disturb connection state; the caller logs and drops.
type Codec struct {
	now func() time.Time // injectable for tests
}

// NewCodec creates a Codec.
func NewCodec() *Codec {
	return &Codec{now: time.Now}
}

// Decode parses one frame into a validated RealtimeEvent.
//
// On structural failure the returned error wraps errors.ErrParsingFailed; on
// validation failure it wraps errors.ErrInvalidEvent or errors.ErrUnknownType.
// All failures are classified Invalid.
func (c *Codec) Decode(frame []byte) (RealtimeEvent, error) {
	var ev RealtimeEvent
	if err := json.Unmarshal(frame, &ev); err != nil {
		return RealtimeEvent{}, errors.WrapInvalid(
			fmt.Errorf("%w: %v", errors.ErrParsingFailed, err),
			"Codec", "Decode", "unmarshal frame")
	}

	if err := c.validate(ev); err != nil {
		return RealtimeEvent{}, errors.WrapInvalid(err, "Codec", "Decode", "validate event")
	}

	if ev.Timestamp == 0 {
		ev.Timestamp = c.now().UnixMilli()
	}

	return ev, nil
}

// validate enforces the mandatory-field invariant: ID, Type and Title must be
// present and non-empty, and Type must belong to the closed enum.
func (c *Codec) validate(ev RealtimeEvent) error {
	if ev.ID == "" {
		return fmt.Errorf("%w: missing id", errors.ErrInvalidEvent)
	}
	if ev.Type == "" {
		return fmt.Errorf("%w: missing type", errors.ErrInvalidEvent)
	}
	if !ev.Type.Valid() {
		return fmt.Errorf("%w: %q", errors.ErrUnknownType, ev.Type)
	}
	if ev.Title == "" {
		return fmt.Errorf("%w: missing title", errors.ErrInvalidEvent)
	}
	return nil
}

// DecodeDecisionData extracts the decision payload from a decision-class
// event's opaque data map. Returns nil when the event is not decision-class
// or carries no usable payload; a decision event without structured data is
// still routable, just without options or deadline.
func DecodeDecisionData(ev RealtimeEvent) *DecisionEventData {
	if !ev.Type.IsDecision() || len(ev.Data) == 0 {
		return nil
	}

	// Round-trip through JSON so producers can send the payload with the
	// same field names they use on the wire.
	raw, err := json.Marshal(ev.Data)
	if err != nil {
		return nil
	}

	var data DecisionEventData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}

	if data.DecisionID == "" {
		// Fall back to the event ID so handlers always have a correlation key
		data.DecisionID = ev.ID
	}

	return &data
}
