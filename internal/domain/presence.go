package domain

import "time"

// PresenceStatus is the coarse online state of a user within a project.
type PresenceStatus string

const (
	PresenceOnline PresenceStatus = "online"
	PresenceIdle   PresenceStatus = "idle"
	PresenceAway   PresenceStatus = "away"
)

// UserPresence is the transient presence record for a user within a project.
// It lives in Redis and is swept when stale.
type UserPresence struct {
	UserID       string         `json:"user_id"`
	ProjectID    string         `json:"project_id"`
	SequenceID   string         `json:"sequence_id,omitempty"`
	Status       PresenceStatus `json:"status"`
	LastActivity time.Time      `json:"last_activity"`
}
