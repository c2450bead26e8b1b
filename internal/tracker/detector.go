package tracker

import (
	"sort"

	"github.com/openbob/openbob/pkg/window"
)

// State is the part of the accumulator the change detector diffs against
type State struct {
	// Open maps every known id to whether it was open after the last poll
	Open    map[window.ID]bool
	Focused window.ID
}

// Detect computes the ordered lifecycle events between prev and the new
// snapshot. It is a pure function: Appeared events come first in snapshot
// order, then Disappeared in ascending id order, then FocusLost, then
// FocusGained. A focused id absent from windows counts as NoWindow.
func Detect(prev State, windows []window.Record, focused window.ID) []Event {
	present := make(map[window.ID]struct{}, len(windows))
	var events []Event

	for _, r := range windows {
		if _, dup := present[r.ID]; dup {
			continue
		}
		present[r.ID] = struct{}{}
		if !prev.Open[r.ID] {
			events = append(events, appeared(r))
		}
	}

	var gone []window.ID
	for id, open := range prev.Open {
		if !open {
			continue
		}
		if _, ok := present[id]; !ok {
			gone = append(gone, id)
		}
	}
	sort.Slice(gone, func(i, j int) bool { return gone[i] < gone[j] })
	for _, id := range gone {
		events = append(events, disappeared(id))
	}

	if _, ok := present[focused]; !ok {
		focused = window.NoWindow
	}

	if focused != prev.Focused {
		if prev.Focused != window.NoWindow && prev.Open[prev.Focused] {
			events = append(events, focusLost(prev.Focused))
		}
		if focused != window.NoWindow {
			events = append(events, focusGained(focused))
		}
	}

	return events
}
