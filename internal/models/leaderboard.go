package models

import (
	"time"
)

// LeaderboardEntry holds a participant's cumulative study minutes within a group
type LeaderboardEntry struct {
	GroupID       int64     `gorm:"primaryKey;autoIncrement:false" json:"group_id"`
	ParticipantID int64     `gorm:"primaryKey;autoIncrement:false" json:"participant_id"`
	DisplayName   string    `gorm:"not null" json:"display_name"`
	TotalMinutes  int       `gorm:"not null;index" json:"total_minutes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Credit is a single pending addition to a participant's total
type Credit struct {
	ParticipantID int64
	DisplayName   string
	Minutes       int
}
