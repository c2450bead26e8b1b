package models

import (
	"time"

	"gorm.io/gorm"
)

// WindowEvent is one lifecycle transition observed by the tracker
type WindowEvent struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	SessionID string         `gorm:"not null;index" json:"session_id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	Kind      string         `gorm:"not null;index" json:"kind"` // appeared, disappeared, focus_gained, focus_lost
	WindowID  uint64         `gorm:"not null" json:"window_id"`
	AppName   string         `json:"app_name"`
	Title     string         `json:"title"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// WindowSession holds the time one window accrued between appearing and
// disappearing. Closed is false for sessions flushed at tracker shutdown.
type WindowSession struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	SessionID    string         `gorm:"not null;index" json:"session_id"`
	WindowID     uint64         `gorm:"not null;index" json:"window_id"`
	AppName      string         `gorm:"not null;index" json:"app_name"`
	Title        string         `gorm:"not null" json:"title"`
	FirstSeenAt  time.Time      `gorm:"not null" json:"first_seen_at"`
	LastSeenAt   time.Time      `gorm:"not null;index" json:"last_seen_at"`
	OpenSeconds  float64        `gorm:"not null;default:0" json:"open_seconds"`
	FocusSeconds float64        `gorm:"not null;default:0" json:"focus_seconds"`
	Closed       bool           `gorm:"not null;default:false" json:"closed"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

type AppSummary struct {
	AppName      string  `json:"app_name"`
	FocusSeconds float64 `json:"focus_seconds"`
	OpenSeconds  float64 `json:"open_seconds"`
	FocusMinutes float64 `json:"focus_minutes"`
	FocusHours   float64 `json:"focus_hours"`
	SessionCount int     `json:"session_count"`
	Percentage   float64 `json:"percentage,omitempty"`
}

type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"` // "day", "week", "month"
}

type Report struct {
	Period            ReportPeriod `json:"period"`
	Apps              []AppSummary `json:"apps"`
	TotalFocusSeconds float64      `json:"total_focus_seconds"`
	TotalOpenSeconds  float64      `json:"total_open_seconds"`
	TotalFocusMinutes float64      `json:"total_focus_minutes"`
	TotalFocusHours   float64      `json:"total_focus_hours"`
	ErrorCount        int64        `json:"error_count"`
	GeneratedAt       time.Time    `json:"generated_at"`
}
