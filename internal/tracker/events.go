package tracker

import (
	"fmt"

	"github.com/openbob/openbob/pkg/window"
)

// EventKind identifies a window lifecycle transition
type EventKind string

const (
	EventAppeared    EventKind = "appeared"
	EventDisappeared EventKind = "disappeared"
	EventFocusGained EventKind = "focus_gained"
	EventFocusLost   EventKind = "focus_lost"
)

// Event is one lifecycle transition produced by Detect.
// Record is set only for EventAppeared.
type Event struct {
	Kind   EventKind
	ID     window.ID
	Record window.Record
}

func (e Event) String() string {
	if e.Kind == EventAppeared {
		return fmt.Sprintf("%s(%d %s %q)", e.Kind, e.ID, e.Record.AppName, e.Record.Title)
	}
	return fmt.Sprintf("%s(%d)", e.Kind, e.ID)
}

func appeared(r window.Record) Event {
	return Event{Kind: EventAppeared, ID: r.ID, Record: r}
}

func disappeared(id window.ID) Event {
	return Event{Kind: EventDisappeared, ID: id}
}

func focusGained(id window.ID) Event {
	return Event{Kind: EventFocusGained, ID: id}
}

func focusLost(id window.ID) Event {
	return Event{Kind: EventFocusLost, ID: id}
}
