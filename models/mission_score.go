package models

import (
	"time"
)

// MissionScore holds the best score reached for one phase of one mission.
type MissionScore struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_score_key,priority:1"`
	Mission   int       `json:"mission" gorm:"not null;uniqueIndex:idx_score_key,priority:2"`
	Phase     string    `json:"phase" gorm:"type:varchar(32);not null;uniqueIndex:idx_score_key,priority:3"`
	Score     int       `json:"score" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	User User `json:"-"`
}
