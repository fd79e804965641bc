package domain

import "time"

// Comment statuses.
const (
	CommentStatusOpen     = "open"
	CommentStatusResolved = "resolved"
)

// Comment is a threaded annotation tied to exactly one of a clip, a
// sequence, or the whole project.
type Comment struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ProjectID  string    `gorm:"size:64;index;not null" json:"project_id"`
	ClipID     *string   `gorm:"size:64;index" json:"clip_id,omitempty"`
	SequenceID *string   `gorm:"size:64;index" json:"sequence_id,omitempty"`
	AuthorID   string    `gorm:"size:64;index;not null" json:"author_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Timestamp  *float64  `json:"timestamp,omitempty"`
	Status     string    `gorm:"size:20;not null" json:"status"`
	ParentID   *string   `gorm:"size:36;index" json:"parent_id,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// CommentWithAuthor is a comment joined with the author's display info, the
// shape returned to clients.
type CommentWithAuthor struct {
	Comment
	AuthorName string `json:"author_name"`
}
