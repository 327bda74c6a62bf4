package models

import "time"

// Reaction model - tracks individual emoji reactions on vibes.
// One row per (vibe, user, emoji); posting the same emoji again removes it.
type Reaction struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	VibeID    int       `gorm:"uniqueIndex:idx_vibe_user_emoji" json:"vibe_id"`
	UserID    int       `gorm:"uniqueIndex:idx_vibe_user_emoji" json:"user_id"`
	Emoji     string    `gorm:"uniqueIndex:idx_vibe_user_emoji;not null" json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}
