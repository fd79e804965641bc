// Package domain defines the data structures shared across the
// collaboration engine.
package domain

import "time"

// User carries the display information attached to comments and presence.
// Credential handling happens outside this service; rows here mirror the
// identity provider.
type User struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	DisplayName string    `gorm:"size:191;not null" json:"display_name"`
	AvatarURL   string    `gorm:"size:512" json:"avatar_url,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
