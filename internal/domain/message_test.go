package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEnvelope() map[string]interface{} {
	return map[string]interface{}{
		"type":       "cursor_move",
		"user_id":    "user-1",
		"project_id": "proj-1",
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		"data":       map[string]interface{}{"position": 1500.0},
	}
}

func TestParseMessageValid(t *testing.T) {
	raw, err := json.Marshal(validEnvelope())
	require.NoError(t, err)

	msg, err := ParseMessage(raw)
	require.NoError(t, err)
	assert.Equal(t, MessageCursorMove, msg.Type)
	assert.Equal(t, "user-1", msg.UserID)
	assert.Equal(t, "proj-1", msg.ProjectID)
	assert.NotEmpty(t, msg.Data)
}

func TestParseMessageMalformedJSON(t *testing.T) {
	_, err := ParseMessage([]byte("{not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed message")
}

func TestParseMessageMissingFields(t *testing.T) {
	cases := []struct {
		name  string
		drop  string
		field string
	}{
		{"no type", "type", "type"},
		{"no user", "user_id", "user_id"},
		{"no project", "project_id", "project_id"},
		{"no timestamp", "timestamp", "timestamp"},
		{"no data", "data", "data"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			envelope := validEnvelope()
			delete(envelope, tc.drop)
			raw, err := json.Marshal(envelope)
			require.NoError(t, err)

			_, err = ParseMessage(raw)
			require.Error(t, err)

			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tc.field, fieldErr.Field)
		})
	}
}

func TestNewEventCarriesPayload(t *testing.T) {
	pos := 2500.0
	evt, err := NewEvent(MessageCursorMove, "user-1", "proj-1", "seq-1", CursorMovePayload{Position: &pos})
	require.NoError(t, err)

	assert.Equal(t, MessageCursorMove, evt.Type)
	assert.Equal(t, "seq-1", evt.SequenceID)
	assert.False(t, evt.Timestamp.IsZero())

	var payload CursorMovePayload
	require.NoError(t, json.Unmarshal(evt.Data, &payload))
	require.NotNil(t, payload.Position)
	assert.Equal(t, pos, *payload.Position)
}

func TestNewErrorMessage(t *testing.T) {
	msg := NewErrorMessage("user-1", "proj-1", "unknown message type: bogus")
	assert.Equal(t, MessageError, msg.Type)
	assert.Equal(t, "user-1", msg.UserID)

	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	assert.Equal(t, "unknown message type: bogus", payload.Error)
}

func TestEditOperationHelpers(t *testing.T) {
	op := &EditOperation{
		Payload: map[string]interface{}{
			"start":    1000.0,
			"end":      3000.0,
			"track_id": "track-1",
		},
	}

	start, end, ok := op.ClipWindow()
	require.True(t, ok)
	assert.Equal(t, 1000.0, start)
	assert.Equal(t, 3000.0, end)

	trackID, ok := op.TrackID()
	require.True(t, ok)
	assert.Equal(t, "track-1", trackID)

	pos, ok := op.EffectivePosition()
	require.True(t, ok)
	assert.Equal(t, 1000.0, pos)

	explicit := 500.0
	op.Position = &explicit
	pos, ok = op.EffectivePosition()
	require.True(t, ok)
	assert.Equal(t, explicit, pos)
}

func TestEditOperationHelpersMissingPayload(t *testing.T) {
	op := &EditOperation{Payload: map[string]interface{}{"start": 1000.0}}

	_, _, ok := op.ClipWindow()
	assert.False(t, ok)

	_, ok = op.TrackID()
	assert.False(t, ok)

	op = &EditOperation{}
	_, ok = op.EffectivePosition()
	assert.False(t, ok)
}
