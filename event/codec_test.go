package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/storystream/errors"
)

func TestCodec_DecodeValidFrame(t *testing.T) {
	codec := NewCodec()

	frame := []byte(`{
		"id": "evt-001",
		"type": "character",
		"title": "Aria draws her blade",
		"description": "The duel begins",
		"timestamp": 1700000000000,
		"characterName": "Aria",
		"severity": "medium",
		"data": {"scene": "courtyard"}
	}`)

	ev, err := codec.Decode(frame)
	require.NoError(t, err)

	assert.Equal(t, "evt-001", ev.ID)
	assert.Equal(t, TypeCharacter, ev.Type)
	assert.Equal(t, "Aria draws her blade", ev.Title)
	assert.Equal(t, "The duel begins", ev.Description)
	assert.Equal(t, int64(1700000000000), ev.Timestamp)
	assert.Equal(t, "Aria", ev.CharacterName)
	assert.Equal(t, SeverityMedium, ev.Severity)
	assert.Equal(t, "courtyard", ev.Data["scene"])
}

func TestCodec_DecodeRejectsMalformedBytes(t *testing.T) {
	codec := NewCodec()

	tests := []struct {
		name  string
		frame string
	}{
		{"not json", "this is not json"},
		{"truncated object", `{"id": "x", "type":`},
		{"wrong shape", `[1, 2, 3]`},
		{"empty frame", ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := codec.Decode([]byte(test.frame))
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
			assert.ErrorIs(t, err, errors.ErrParsingFailed)
		})
	}
}

func TestCodec_DecodeRejectsMissingRequiredFields(t *testing.T) {
	codec := NewCodec()

	tests := []struct {
		name  string
		frame string
	}{
		{"missing id", `{"type": "story", "title": "A new chapter"}`},
		{"missing type", `{"id": "evt-002", "title": "A new chapter"}`},
		{"missing title", `{"id": "evt-003", "type": "story"}`},
		{"empty id", `{"id": "", "type": "story", "title": "x"}`},
		{"empty title", `{"id": "evt-004", "type": "story", "title": ""}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := codec.Decode([]byte(test.frame))
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
			assert.ErrorIs(t, err, errors.ErrInvalidEvent)
		})
	}
}

func TestCodec_DecodeRejectsUnknownType(t *testing.T) {
	codec := NewCodec()

	_, err := codec.Decode([]byte(`{"id": "evt-005", "type": "weather", "title": "Rain"}`))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	assert.ErrorIs(t, err, errors.ErrUnknownType)
}

func TestCodec_DecodeStampsMissingTimestamp(t *testing.T) {
	codec := NewCodec()
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	codec.now = func() time.Time { return fixed }

	ev, err := codec.Decode([]byte(`{"id": "evt-006", "type": "system", "title": "Maintenance"}`))
	require.NoError(t, err)
	assert.Equal(t, fixed.UnixMilli(), ev.Timestamp)
	assert.Equal(t, fixed, ev.Time().UTC())
}

func TestType_Valid(t *testing.T) {
	for _, typ := range []Type{
		TypeCharacter, TypeStory, TypeSystem, TypeInteraction,
		TypeDecisionRequired, TypeDecisionAccepted,
		TypeDecisionFinalized, TypeNegotiationRequired,
	} {
		assert.True(t, typ.Valid(), "expected %q to be valid", typ)
	}

	assert.False(t, Type("weather").Valid())
	assert.False(t, Type("").Valid())
}

func TestType_IsDecision(t *testing.T) {
	decision := []Type{
		TypeDecisionRequired, TypeDecisionAccepted,
		TypeDecisionFinalized, TypeNegotiationRequired,
	}
	for _, typ := range decision {
		assert.True(t, typ.IsDecision(), "expected %q to be decision-class", typ)
	}

	for _, typ := range []Type{TypeCharacter, TypeStory, TypeSystem, TypeInteraction} {
		assert.False(t, typ.IsDecision(), "expected %q not to be decision-class", typ)
	}
}

func TestDecodeDecisionData(t *testing.T) {
	ev := RealtimeEvent{
		ID:    "evt-100",
		Type:  TypeDecisionRequired,
		Title: "Choose your path",
		Data: map[string]any{
			"decisionId":     "dec-42",
			"options":        []any{"fight", "flee", "negotiate"},
			"timeoutSeconds": float64(30),
			"expiresAt":      float64(1700000030000),
		},
	}

	data := DecodeDecisionData(ev)
	require.NotNil(t, data)
	assert.Equal(t, "dec-42", data.DecisionID)
	assert.Equal(t, []string{"fight", "flee", "negotiate"}, data.Options)
	assert.Equal(t, 30, data.TimeoutSeconds)
	assert.Equal(t, int64(1700000030000), data.ExpiresAt)
}

func TestDecodeDecisionData_FallsBackToEventID(t *testing.T) {
	ev := RealtimeEvent{
		ID:    "evt-101",
		Type:  TypeNegotiationRequired,
		Title: "Terms offered",
		Data:  map[string]any{"options": []any{"accept", "counter"}},
	}

	data := DecodeDecisionData(ev)
	require.NotNil(t, data)
	assert.Equal(t, "evt-101", data.DecisionID)
}

func TestDecodeDecisionData_NonDecisionOrEmpty(t *testing.T) {
	assert.Nil(t, DecodeDecisionData(RealtimeEvent{
		ID: "evt-102", Type: TypeStory, Title: "x",
		Data: map[string]any{"decisionId": "dec-1"},
	}))

	assert.Nil(t, DecodeDecisionData(RealtimeEvent{
		ID: "evt-103", Type: TypeDecisionRequired, Title: "x",
	}))
}
