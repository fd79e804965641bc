package domain

import "time"

// Cursor is a user's live position indicator within a sequence. One row
// exists per (user, sequence); it is upserted on every move and deactivated
// on disconnect.
type Cursor struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string    `gorm:"size:64;not null;uniqueIndex:idx_cursor_user_sequence" json:"user_id"`
	SequenceID string    `gorm:"size:64;not null;uniqueIndex:idx_cursor_user_sequence" json:"sequence_id"`
	ProjectID  string    `gorm:"size:64;index;not null" json:"project_id"`
	Position   float64   `gorm:"not null" json:"position"`
	Color      string    `gorm:"size:16;not null" json:"color"`
	Activity   string    `gorm:"size:32" json:"activity,omitempty"`
	Active     bool      `gorm:"index" json:"active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
