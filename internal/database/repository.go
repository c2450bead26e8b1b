package database

import (
	"strings"
	"time"

	"github.com/openbob/openbob/internal/models"

	"github.com/pkg/errors"

	"gorm.io/gorm"
)

// Repository handles all journal database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateEvents inserts a poll's window events in one transaction
func (r *Repository) CreateEvents(events []*models.WindowEvent) error {
	if len(events) == 0 {
		return nil
	}
	result := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(events).Error
	})
	if result != nil {
		return errors.Wrap(result, "failed to insert window events")
	}
	return nil
}

// CreateSession inserts a finished or flushed window session
func (r *Repository) CreateSession(session *models.WindowSession) error {
	session.AppName = strings.ToLower(session.AppName)
	result := r.db.Create(session)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert window session")
	}
	return nil
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// GetEventsSince retrieves all window events since a given time
func (r *Repository) GetEventsSince(since time.Time) ([]*models.WindowEvent, error) {
	var events []*models.WindowEvent
	result := r.db.Where("timestamp >= ?", since).Order("timestamp ASC, id ASC").Find(&events)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query window events")
	}

	return events, nil
}

// GetSessionsSince retrieves sessions last seen at or after since
func (r *Repository) GetSessionsSince(since time.Time) ([]*models.WindowSession, error) {
	var sessions []*models.WindowSession
	result := r.db.Where("last_seen_at >= ?", since).Order("last_seen_at ASC").Find(&sessions)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query window sessions")
	}

	return sessions, nil
}

// GetAppSummarySince returns focus and open time per application for
// sessions last seen at or after since, most focused first
func (r *Repository) GetAppSummarySince(since time.Time) ([]models.AppSummary, error) {
	var summaries []models.AppSummary

	result := r.db.Model(&models.WindowSession{}).
		Select("app_name, SUM(focus_seconds) as focus_seconds, SUM(open_seconds) as open_seconds, COUNT(*) as session_count").
		Where("last_seen_at >= ?", since).
		Group("app_name").
		Order("focus_seconds DESC, app_name ASC").
		Scan(&summaries)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query app summary")
	}

	return summaries, nil
}

// CountErrorsSince counts enumeration failures since a given time
func (r *Repository) CountErrorsSince(since time.Time) (int64, error) {
	var count int64
	result := r.db.Model(&models.ErrorLog{}).Where("timestamp >= ?", since).Count(&count)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to count error logs")
	}
	return count, nil
}

// GetLatestSession retrieves the most recently ended session
func (r *Repository) GetLatestSession() (*models.WindowSession, error) {
	var session models.WindowSession
	result := r.db.Order("last_seen_at DESC").First(&session)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest session")
	}
	return &session, nil
}

// DeleteOldSessions deletes sessions last seen before a date (soft delete)
func (r *Repository) DeleteOldSessions(before time.Time) (int64, error) {
	result := r.db.Where("last_seen_at < ?", before).Delete(&models.WindowSession{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old sessions")
	}
	return result.RowsAffected, nil
}

// Clear removes all journal rows
func (r *Repository) Clear() error {
	for _, table := range []string{"window_events", "window_sessions", "error_logs"} {
		if result := r.db.Exec("DELETE FROM " + table); result.Error != nil {
			return errors.Wrapf(result.Error, "failed to clear %s", table)
		}
	}
	return nil
}
