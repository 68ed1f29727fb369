package models

import (
	"time"
)

// MissionProgress is the final score a client reports when a mission run ends.
// Later reports overwrite earlier ones.
type MissionProgress struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_progress_key,priority:1"`
	MissionID int       `json:"mission_id" gorm:"not null;uniqueIndex:idx_progress_key,priority:2"`
	Score     int       `json:"score" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	User User `json:"-"`
}

func (MissionProgress) TableName() string {
	return "mission_progress"
}
