package tracker

import (
	"sync"
	"time"

	"github.com/openbob/openbob/pkg/window"
)

// Entry is the accounting record of one window id for this run.
// Values returned by the Accumulator are copies.
type Entry struct {
	ID            window.ID     `json:"id"`
	AppName       string        `json:"app_name"`
	Title         string        `json:"title"`
	FirstSeenAt   time.Time     `json:"first_seen_at"`
	LastSeenAt    time.Time     `json:"last_seen_at"`
	OpenDuration  time.Duration `json:"open_ns"`
	FocusDuration time.Duration `json:"focus_ns"`
	Open          bool          `json:"open"`
	Focused       bool          `json:"focused"`
}

// Poll is everything one poll cycle contributes to the accumulator
type Poll struct {
	At      time.Time
	Elapsed time.Duration
	Windows []window.Record
	Events  []Event
}

// Stats summarizes the accumulator
type Stats struct {
	Tracked  int    `json:"tracked"`
	Open     int    `json:"open"`
	Polls    uint64 `json:"polls"`
	Focused  Entry  `json:"focused"`
	HasFocus bool   `json:"has_focus"`
}

// Accumulator is the concurrent id -> Entry store. The polling loop is the
// single writer; any goroutine may read. Entries are never deleted.
type Accumulator struct {
	mu      sync.RWMutex
	entries map[window.ID]*Entry
	order   []window.ID
	focused window.ID
	polls   uint64
}

// NewAccumulator returns an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{
		entries: make(map[window.ID]*Entry),
	}
}

// ApplyPoll applies the poll's events in order, refreshes present windows,
// then credits Elapsed to every open entry and to the focused one. The whole
// update happens under one write lock.
func (a *Accumulator) ApplyPoll(p Poll) {
	elapsed := p.Elapsed
	if elapsed < 0 {
		elapsed = 0
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, ev := range p.Events {
		switch ev.Kind {
		case EventAppeared:
			a.openLocked(ev.Record, p.At)
		case EventDisappeared:
			a.markClosedLocked(ev.ID)
		case EventFocusLost:
			if e, ok := a.entries[ev.ID]; ok {
				e.Focused = false
			}
			if a.focused == ev.ID {
				a.focused = window.NoWindow
			}
		case EventFocusGained:
			a.focusLocked(ev.ID)
		}
	}

	for _, r := range p.Windows {
		if e, ok := a.entries[r.ID]; ok && e.Open {
			e.Title = r.Title
			e.LastSeenAt = p.At
		}
	}

	if elapsed > 0 {
		for _, e := range a.entries {
			if !e.Open {
				continue
			}
			e.OpenDuration += elapsed
			if e.Focused {
				e.FocusDuration += elapsed
			}
		}
	}

	a.polls++
}

// MarkClosed marks id closed and unfocused without deleting it.
// It reports whether id was known.
func (a *Accumulator) MarkClosed(id window.ID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.markClosedLocked(id)
}

// Snapshot returns copies of all entries in first-seen order
func (a *Accumulator) Snapshot() []Entry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Entry, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, *a.entries[id])
	}
	return out
}

// Entry returns a copy of one entry
func (a *Accumulator) Entry(id window.ID) (Entry, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	e, ok := a.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// State returns the known ids and focus for the change detector
func (a *Accumulator) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()

	open := make(map[window.ID]bool, len(a.entries))
	for id, e := range a.entries {
		open[id] = e.Open
	}
	return State{Open: open, Focused: a.focused}
}

// Stats returns window counts and the focused entry
func (a *Accumulator) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := Stats{Tracked: len(a.entries), Polls: a.polls}
	for _, e := range a.entries {
		if e.Open {
			s.Open++
		}
	}
	if e, ok := a.entries[a.focused]; ok && e.Focused {
		s.Focused = *e
		s.HasFocus = true
	}
	return s
}

func (a *Accumulator) openLocked(r window.Record, at time.Time) {
	if e, ok := a.entries[r.ID]; ok {
		e.Open = true
		e.AppName = r.AppName
		e.Title = r.Title
		e.LastSeenAt = at
		return
	}

	a.entries[r.ID] = &Entry{
		ID:          r.ID,
		AppName:     r.AppName,
		Title:       r.Title,
		FirstSeenAt: at,
		LastSeenAt:  at,
		Open:        true,
	}
	a.order = append(a.order, r.ID)
}

// focusLocked moves focus to id; unknown or closed ids are ignored
func (a *Accumulator) focusLocked(id window.ID) {
	e, ok := a.entries[id]
	if !ok || !e.Open {
		return
	}
	if prev, ok := a.entries[a.focused]; ok && a.focused != id {
		prev.Focused = false
	}
	e.Focused = true
	a.focused = id
}

func (a *Accumulator) markClosedLocked(id window.ID) bool {
	e, ok := a.entries[id]
	if !ok {
		return false
	}
	e.Open = false
	e.Focused = false
	if a.focused == id {
		a.focused = window.NoWindow
	}
	return true
}
