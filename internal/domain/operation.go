package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// OperationKind enumerates the supported edit operation kinds.
type OperationKind string

const (
	OpInsert OperationKind = "insert"
	OpDelete OperationKind = "delete"
	OpUpdate OperationKind = "update"
	OpMove   OperationKind = "move"
)

// Valid reports whether the kind is one of the closed set.
func (k OperationKind) Valid() bool {
	switch k {
	case OpInsert, OpDelete, OpUpdate, OpMove:
		return true
	}
	return false
}

// TargetKind enumerates the timeline entity kinds an operation can target.
type TargetKind string

const (
	TargetClip     TargetKind = "clip"
	TargetTrack    TargetKind = "track"
	TargetSequence TargetKind = "sequence"
)

// Valid reports whether the target kind is one of the closed set.
func (k TargetKind) Valid() bool {
	switch k {
	case TargetClip, TargetTrack, TargetSequence:
		return true
	}
	return false
}

// EditOperation is a proposed change to a timeline entity. It enters the
// room's pending set on submission and is marked applied after persistence.
type EditOperation struct {
	ID         string                 `json:"id"`
	Kind       OperationKind          `json:"kind"`
	TargetKind TargetKind             `json:"target_kind"`
	TargetID   string                 `json:"target_id"`
	Position   *float64               `json:"position,omitempty"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	AuthorID   string                 `json:"author_id"`
	CreatedAt  time.Time              `json:"created_at"`
	Applied    bool                   `json:"applied"`
}

// ClipWindow extracts the start/end window from the operation payload.
// Returns ok=false when either bound is absent or not numeric.
func (op *EditOperation) ClipWindow() (start, end float64, ok bool) {
	start, sok := payloadNumber(op.Payload, "start")
	end, eok := payloadNumber(op.Payload, "end")
	return start, end, sok && eok
}

// TrackID extracts the track association from the operation payload.
func (op *EditOperation) TrackID() (string, bool) {
	v, ok := op.Payload["track_id"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// EffectivePosition is the operation's position for proximity checks: the
// explicit position when set, otherwise the payload start.
func (op *EditOperation) EffectivePosition() (float64, bool) {
	if op.Position != nil {
		return *op.Position, true
	}
	return payloadNumber(op.Payload, "start")
}

func payloadNumber(payload map[string]interface{}, key string) (float64, bool) {
	v, ok := payload[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// ConflictCategory classifies why two pending operations collide.
type ConflictCategory string

const (
	ConflictSameTarget      ConflictCategory = "same_target"
	ConflictPositionOverlap ConflictCategory = "position_overlap"
	ConflictResource        ConflictCategory = "resource"
)

// ResolutionStrategy is the outcome chosen for a detected conflict.
type ResolutionStrategy string

const (
	ResolveLastWriteWins ResolutionStrategy = "last_write_wins"
	ResolveMergeShift    ResolutionStrategy = "merge_shift"
	ResolveReject        ResolutionStrategy = "reject"
)

// ConflictResolution is the ephemeral outcome of resolving a submitted
// operation against the room's pending set. It is computed and consumed
// immediately; nothing persists it.
type ConflictResolution struct {
	OperationID     string                 `json:"operation_id"`
	Category        ConflictCategory       `json:"category"`
	Strategy        ResolutionStrategy     `json:"strategy"`
	AdjustedPayload map[string]interface{} `json:"adjusted_payload,omitempty"`
}

func (r *ConflictResolution) String() string {
	return fmt.Sprintf("%s/%s", r.Category, r.Strategy)
}
