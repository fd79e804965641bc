package domain

import "time"

// Sequence is an editable timeline within a project.
type Sequence struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	ProjectID string    `gorm:"size:64;index;not null" json:"project_id"`
	Name      string    `gorm:"size:191" json:"name"`
	FrameRate float64   `json:"frame_rate"`
	Duration  float64   `json:"duration"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Track is an ordered lane of clips within a sequence.
type Track struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	SequenceID string    `gorm:"size:64;index;not null" json:"sequence_id"`
	Name       string    `gorm:"size:191" json:"name"`
	Kind       string    `gorm:"size:20" json:"kind"`
	Position   int       `json:"position"`
	Locked     bool      `json:"locked"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Clip is a media segment placed on a track. Start and End are timeline
// positions in milliseconds.
type Clip struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	TrackID    string    `gorm:"size:64;index;not null" json:"track_id"`
	SequenceID string    `gorm:"size:64;index" json:"sequence_id"`
	MediaID    string    `gorm:"size:64" json:"media_id,omitempty"`
	Name       string    `gorm:"size:191" json:"name"`
	Start      float64   `gorm:"not null" json:"start"`
	End        float64   `gorm:"not null" json:"end"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
