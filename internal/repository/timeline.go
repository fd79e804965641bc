package repository

import (
	"context"

	"github.com/chong-myung/collabcut-sub001/internal/domain"
)

// TimelineRepository persists the timeline entities edit operations apply
// to. Each call is a single storage round-trip returning an explicit error.
type TimelineRepository interface {
	// GetClip returns a clip or ErrClipNotFound.
	GetClip(ctx context.Context, id string) (*domain.Clip, error)

	// CreateClip inserts a new clip.
	CreateClip(ctx context.Context, clip *domain.Clip) error

	// UpdateClipWindow rewrites a clip's start/end.
	UpdateClipWindow(ctx context.Context, id string, start, end float64) error

	// MoveClip rewrites a clip's track plus start/end.
	MoveClip(ctx context.Context, id, trackID string, start, end float64) error

	// DeleteClip removes a clip.
	DeleteClip(ctx context.Context, id string) error

	// UpdateTrackFields applies a field-level update to a track. Unknown
	// keys are ignored.
	UpdateTrackFields(ctx context.Context, id string, fields map[string]interface{}) error

	// UpdateSequenceFields applies a field-level update to a sequence.
	// Unknown keys are ignored.
	UpdateSequenceFields(ctx context.Context, id string, fields map[string]interface{}) error
}
