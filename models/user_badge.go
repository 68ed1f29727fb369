package models

import (
	"time"
)

type UserBadge struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_badge_key,priority:1"`
	Mission   int       `json:"mission" gorm:"not null;uniqueIndex:idx_badge_key,priority:2"`
	Badge     string    `json:"badge" gorm:"type:varchar(64);not null;uniqueIndex:idx_badge_key,priority:3"` // slug, e.g. master-algoritma
	Name      string    `json:"name" gorm:"not null"`
	AwardedAt time.Time `json:"awarded_at" gorm:"autoCreateTime"`

	// Relationships
	User User `json:"-"`
}
