package database

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openbob/openbob/internal/models"
	"github.com/openbob/openbob/internal/tracker"
	"github.com/openbob/openbob/pkg/window"
)

// Journal appends the tracker's history to the database. It implements
// tracker.EventSink and is never read back into the tracker.
type Journal struct {
	repo      *Repository
	sessionID string
	provider  string

	mu sync.Mutex
	// written is the part of each entry's totals already stored, so a window
	// that closes and reappears is not counted twice
	written map[window.ID]accrued
}

type accrued struct {
	open  time.Duration
	focus time.Duration
}

func NewJournal(repo *Repository, provider string) *Journal {
	return &Journal{
		repo:      repo,
		sessionID: uuid.NewString(),
		provider:  provider,
		written:   make(map[window.ID]accrued),
	}
}

// SessionID identifies this tracker run in every journal row
func (j *Journal) SessionID() string {
	return j.sessionID
}

func (j *Journal) HandleEvents(at time.Time, events []tracker.Event, lookup tracker.EntryLookup) error {
	if len(events) == 0 {
		return nil
	}

	rows := make([]*models.WindowEvent, 0, len(events))
	var closed []tracker.Entry
	for _, ev := range events {
		row := &models.WindowEvent{
			SessionID: j.sessionID,
			Timestamp: at,
			Kind:      string(ev.Kind),
			WindowID:  uint64(ev.ID),
		}
		if e, ok := lookup(ev.ID); ok {
			row.AppName = e.AppName
			row.Title = e.Title
			if ev.Kind == tracker.EventDisappeared {
				closed = append(closed, e)
			}
		}
		rows = append(rows, row)
	}

	if err := j.repo.CreateEvents(rows); err != nil {
		return err
	}
	for _, e := range closed {
		if err := j.writeSession(e, true); err != nil {
			return err
		}
	}
	return nil
}

func (j *Journal) HandleUnavailable(at time.Time, err error) error {
	return j.repo.CreateErrorLog(&models.ErrorLog{
		SessionID: j.sessionID,
		Provider:  j.provider,
		Timestamp: at,
		ErrorMsg:  err.Error(),
	})
}

// HandleShutdown stores the unwritten part of every still-open window
func (j *Journal) HandleShutdown(at time.Time, open []tracker.Entry) error {
	for _, e := range open {
		if err := j.writeSession(e, false); err != nil {
			return err
		}
	}
	return nil
}

func (j *Journal) writeSession(e tracker.Entry, closed bool) error {
	j.mu.Lock()
	prev := j.written[e.ID]
	j.written[e.ID] = accrued{open: e.OpenDuration, focus: e.FocusDuration}
	j.mu.Unlock()

	return j.repo.CreateSession(&models.WindowSession{
		SessionID:    j.sessionID,
		WindowID:     uint64(e.ID),
		AppName:      e.AppName,
		Title:        e.Title,
		FirstSeenAt:  e.FirstSeenAt,
		LastSeenAt:   e.LastSeenAt,
		OpenSeconds:  (e.OpenDuration - prev.open).Seconds(),
		FocusSeconds: (e.FocusDuration - prev.focus).Seconds(),
		Closed:       closed,
	})
}
