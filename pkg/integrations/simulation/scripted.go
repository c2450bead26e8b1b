// Package simulation provides window providers that need no desktop: an
// exact scripted replay and a seeded household of simulated people.
package simulation

import (
	"sync"

	"github.com/openbob/openbob/pkg/window"
)

// Frame is one poll's worth of windows and the focused id
type Frame struct {
	Windows []window.Record
	Focused window.ID
}

// Scripted replays frames in order, one per EnumerateWindows call, and then
// keeps returning the last frame
type Scripted struct {
	mu      sync.Mutex
	frames  []Frame
	next    int
	current Frame
}

func NewScripted(frames []Frame) *Scripted {
	return &Scripted{frames: frames}
}

func (s *Scripted) Name() string {
	return "scripted"
}

func (s *Scripted) IsSupported() bool {
	return true
}

func (s *Scripted) EnumerateWindows() ([]window.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.frames) == 0 {
		return nil, nil
	}
	if s.next < len(s.frames) {
		s.current = s.frames[s.next]
		s.next++
	}

	kept, _ := window.Filter(s.current.Windows, window.Options{})
	return kept, nil
}

func (s *Scripted) FocusedWindow() (window.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Focused, nil
}

// Done reports whether every frame has been served
func (s *Scripted) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next >= len(s.frames)
}

func (s *Scripted) Close() error {
	return nil
}
