package repository

import (
	"context"
	"time"

	"github.com/chong-myung/collabcut-sub001/internal/domain"
)

// PresenceRepository holds the transient per-project collaboration state,
// implemented on Redis: presence records, cursor color assignments, rate
// limit counters, and event publication for external relays.
type PresenceRepository interface {
	// SetPresence upserts the user's presence record in the project hash.
	SetPresence(ctx context.Context, presence *domain.UserPresence) error

	// GetProjectPresence returns all presence records for a project.
	GetProjectPresence(ctx context.Context, projectID string) ([]domain.UserPresence, error)

	// RemovePresence deletes the user's presence record.
	RemovePresence(ctx context.Context, projectID, userID string) error

	// SweepStale removes presence records whose last activity is older than
	// maxAge across all projects. Returns the number removed.
	SweepStale(ctx context.Context, maxAge time.Duration) (int, error)

	// GetColor returns the user's assigned color within the project, or
	// ErrColorNotFound.
	GetColor(ctx context.Context, projectID, userID string) (string, error)

	// ProjectColors returns the userID -> color assignments for a project.
	ProjectColors(ctx context.Context, projectID string) (map[string]string, error)

	// AssignColor records the user's color within the project.
	AssignColor(ctx context.Context, projectID, userID, color string) error

	// ReleaseColor removes the user's color assignment.
	ReleaseColor(ctx context.Context, projectID, userID string) error

	// CheckRateLimit increments the counter for key and reports whether the
	// limit is exceeded within the window.
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// PublishEvent publishes a collaboration event on the project channel
	// for out-of-process consumers.
	PublishEvent(ctx context.Context, projectID string, msg *domain.Message) error
}
