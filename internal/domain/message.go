package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType enumerates the message kinds carried by the collaboration
// envelope. The set is closed; routing switches over it exhaustively.
type MessageType string

const (
	MessageCursorMove    MessageType = "cursor_move"
	MessageEditOperation MessageType = "edit_operation"
	MessageCommentAdd    MessageType = "comment_add"
	MessageUserJoin      MessageType = "user_join"
	MessageUserLeave     MessageType = "user_leave"
	MessageHeartbeat     MessageType = "heartbeat"
	MessageError         MessageType = "error"
)

// Message is the envelope shared by every inbound and outbound frame on a
// collaboration connection.
type Message struct {
	Type       MessageType     `json:"type"`
	UserID     string          `json:"user_id"`
	ProjectID  string          `json:"project_id"`
	SequenceID string          `json:"sequence_id,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// FieldError reports a missing or invalid envelope field. It is returned to
// the client as an error reply; the connection stays open.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// ParseMessage unmarshals a raw frame and validates the required envelope
// fields.
func ParseMessage(raw []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Validate checks the fields every inbound message must carry.
func (m *Message) Validate() error {
	if m.Type == "" {
		return &FieldError{Field: "type"}
	}
	if m.UserID == "" {
		return &FieldError{Field: "user_id"}
	}
	if m.ProjectID == "" {
		return &FieldError{Field: "project_id"}
	}
	if m.Timestamp.IsZero() {
		return &FieldError{Field: "timestamp"}
	}
	if len(m.Data) == 0 {
		return &FieldError{Field: "data"}
	}
	return nil
}

// NewEvent builds an outbound envelope with the given payload marshaled into
// Data. Marshal failures are reported to the caller; no partial envelope is
// returned.
func NewEvent(t MessageType, userID, projectID, sequenceID string, payload interface{}) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload for %s: %w", t, err)
	}
	return &Message{
		Type:       t,
		UserID:     userID,
		ProjectID:  projectID,
		SequenceID: sequenceID,
		Data:       data,
		Timestamp:  time.Now().UTC(),
	}, nil
}

// ErrorPayload is the data carried by an error envelope.
type ErrorPayload struct {
	Error string `json:"error"`
}

// NewErrorMessage builds an error reply addressed to the originator.
func NewErrorMessage(userID, projectID, reason string) *Message {
	data, _ := json.Marshal(ErrorPayload{Error: reason})
	return &Message{
		Type:      MessageError,
		UserID:    userID,
		ProjectID: projectID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// CursorMovePayload is the data of a cursor_move message.
type CursorMovePayload struct {
	SequenceID string   `json:"sequence_id,omitempty"`
	Position   *float64 `json:"position"`
	Activity   string   `json:"activity,omitempty"`
}

// EditOperationPayload is the data of an edit_operation message.
type EditOperationPayload struct {
	Kind       string                 `json:"kind"`
	TargetKind string                 `json:"target_kind"`
	TargetID   string                 `json:"target_id"`
	Position   *float64               `json:"position,omitempty"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}

// CommentAddPayload is the data of a comment_add message.
type CommentAddPayload struct {
	Content    string   `json:"content"`
	ClipID     string   `json:"clip_id,omitempty"`
	SequenceID string   `json:"sequence_id,omitempty"`
	Timestamp  *float64 `json:"timestamp,omitempty"`
	ParentID   string   `json:"parent_id,omitempty"`
}

// PresencePayload is the data of user_join and user_leave events.
type PresencePayload struct {
	UserID     string `json:"user_id"`
	SequenceID string `json:"sequence_id,omitempty"`
}
