package models

import (
	"time"

	"gorm.io/gorm"
)

// ErrorLog records a poll that could not enumerate windows
type ErrorLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	SessionID string         `gorm:"not null;index" json:"session_id"`
	Provider  string         `gorm:"not null" json:"provider"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	ErrorMsg  string         `gorm:"not null" json:"error_msg"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
