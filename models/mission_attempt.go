package models

import (
	"time"
)

// MissionAttempt is one graded submission. Rows are append-only.
type MissionAttempt struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_attempt_key,priority:1"`
	Mission       int       `json:"mission" gorm:"not null;uniqueIndex:idx_attempt_key,priority:2"`
	Phase         string    `json:"phase" gorm:"type:varchar(32);not null;uniqueIndex:idx_attempt_key,priority:3"`
	AttemptNumber int       `json:"attempt_number" gorm:"not null;uniqueIndex:idx_attempt_key,priority:4"`
	IsCorrect     bool      `json:"is_correct" gorm:"not null"`
	Score         int       `json:"score" gorm:"not null;default:0"`
	KeyVersion    int       `json:"key_version" gorm:"not null;default:1"`
	CreatedAt     time.Time `json:"created_at"`

	// Relationships
	User User `json:"-"`
}
