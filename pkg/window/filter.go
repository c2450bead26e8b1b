package window

import (
	"strings"

	"github.com/pkg/errors"
)

// ExcludeFunc reports whether a window must be left out of tracking
type ExcludeFunc func(Record) bool

// ReservedTitles are system window titles that never describe a user window
var ReservedTitles = []string{
	"Program Manager",
	"Default IME",
	"MSCTFIME UI",
}

// Options controls which enumerated windows are eligible for tracking
type Options struct {
	// Exclude is the host self-exclusion predicate supplied by the caller
	Exclude ExcludeFunc

	// ExcludedTitles extends ReservedTitles
	ExcludedTitles []string
}

// ExcludeProcess excludes every window owned by pid
func ExcludeProcess(pid int) ExcludeFunc {
	return func(r Record) bool {
		return pid > 0 && r.PID == pid
	}
}

// ExcludeTitle excludes windows whose title is exactly title
func ExcludeTitle(title string) ExcludeFunc {
	return func(r Record) bool {
		return r.Title == title
	}
}

// ExcludeAny combines predicates; nil entries are ignored
func ExcludeAny(fns ...ExcludeFunc) ExcludeFunc {
	return func(r Record) bool {
		for _, fn := range fns {
			if fn != nil && fn(r) {
				return true
			}
		}
		return false
	}
}

// Validate checks that a record carries the fields every poll relies on
func Validate(r Record) error {
	if r.ID == NoWindow {
		return errors.Wrap(ErrMalformedEntry, "missing window id")
	}
	if strings.TrimSpace(r.Title) == "" {
		return errors.Wrapf(ErrMalformedEntry, "window %d has an empty title", r.ID)
	}
	if strings.TrimSpace(r.AppName) == "" {
		return errors.Wrapf(ErrMalformedEntry, "window %d has no application name", r.ID)
	}
	return nil
}

// IsReservedTitle reports whether title belongs to a system surface
func (o Options) IsReservedTitle(title string) bool {
	for _, reserved := range ReservedTitles {
		if title == reserved {
			return true
		}
	}
	for _, reserved := range o.ExcludedTitles {
		if title == reserved {
			return true
		}
	}
	return false
}

// Filter drops malformed, reserved, duplicate and self-excluded records.
// It is idempotent. Malformed entries are reported in skipped, never fatal.
func Filter(records []Record, opts Options) (kept []Record, skipped []error) {
	kept = make([]Record, 0, len(records))
	seen := make(map[ID]struct{}, len(records))

	for _, r := range records {
		if err := Validate(r); err != nil {
			skipped = append(skipped, err)
			continue
		}
		if _, dup := seen[r.ID]; dup {
			continue
		}
		if opts.IsReservedTitle(r.Title) {
			continue
		}
		if opts.Exclude != nil && opts.Exclude(r) {
			continue
		}
		seen[r.ID] = struct{}{}
		kept = append(kept, r)
	}

	return kept, skipped
}
