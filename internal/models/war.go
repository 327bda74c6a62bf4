package models

import "time"

// War status values. Transitions are one-directional:
// scheduled -> active -> ended.
const (
	WarStatusScheduled = "scheduled"
	WarStatusActive    = "active"
	WarStatusEnded     = "ended"
)

// WarContestant is one side of a war: a user and one of their vibes.
// VoteCount is mutated only by the war service's vote operation.
type WarContestant struct {
	UserID    int `json:"user_id"`
	VibeID    int `json:"vibe_id"`
	VoteCount int `gorm:"default:0" json:"vote_count"`
}

// War is one scheduled head-to-head contest. Day is the window identity:
// the unique index on it is what makes creation exactly-once per day even
// with several server processes racing on startup. Wars are never deleted;
// ended wars persist as history.
type War struct {
	ID  int    `gorm:"primaryKey" json:"id"`
	Day string `gorm:"uniqueIndex;not null" json:"day"` // YYYY-MM-DD in the contest timezone

	Contestant1 WarContestant `gorm:"embedded;embeddedPrefix:contestant1_" json:"contestant1"`
	Contestant2 WarContestant `gorm:"embedded;embeddedPrefix:contestant2_" json:"contestant2"`

	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	Status    string    `gorm:"default:scheduled;index" json:"status"`

	// Winner is 1, 2 or null. Null means tie or not yet decided;
	// WinnerDecided tells the two apart and makes a tie permanent.
	Winner        *int `json:"winner"`
	WinnerDecided bool `gorm:"default:false" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WarVote records one user's vote in one war. The unique (war_id, user_id)
// index is the store-level guarantee behind one vote per user per war.
type WarVote struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	WarID      int       `gorm:"uniqueIndex:idx_war_voter;not null" json:"war_id"`
	UserID     int       `gorm:"uniqueIndex:idx_war_voter;not null" json:"user_id"`
	Contestant int       `gorm:"not null" json:"contestant"` // 1 or 2
	VotedAt    time.Time `json:"voted_at"`
}

type WarVoteRequest struct {
	Contestant int `json:"contestant" binding:"required,oneof=1 2"`
}
