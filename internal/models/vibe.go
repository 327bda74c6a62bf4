package models

import "time"

// Vibe is a short text message sent from one user to another.
// Hidden vibes stay in the database but are invisible everywhere:
// profiles, trending tags and war contestant selection all skip them.
type Vibe struct {
	ID          int      `gorm:"primaryKey" json:"id"`
	PublicID    string   `gorm:"uniqueIndex;not null" json:"public_id"`
	SenderID    int      `json:"-"` // never exposed directly, see Sender masking
	RecipientID int      `gorm:"index;not null" json:"recipient_id"`
	Text        string   `gorm:"not null" json:"text"`
	Anonymous   bool     `json:"anonymous"`
	Tags        []string `gorm:"serializer:json" json:"tags"`
	Emojis      []string `gorm:"serializer:json" json:"emojis"`
	Hidden      bool     `gorm:"default:false;index" json:"-"`

	Sender    User `gorm:"foreignKey:SenderID" json:"-"`
	Recipient User `gorm:"foreignKey:RecipientID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateVibeRequest struct {
	Recipient string   `json:"recipient"` // recipient username
	Text      string   `json:"text"`
	Anonymous bool     `json:"anonymous"`
	Tags      []string `json:"tags"`
	Emojis    []string `json:"emojis"`
}
