package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/openbob/openbob/internal/tracker"
	"github.com/openbob/openbob/pkg/utils"
)

const clearScreen = "\033[H\033[2J"

var (
	headerColor  = color.New(color.Bold, color.FgCyan)
	focusedColor = color.New(color.Bold, color.FgGreen)
	closedColor  = color.New(color.Faint)
	mutedColor   = color.New(color.FgYellow)
)

// renderLive writes the window table, focused and open windows first
func renderLive(w io.Writer, entries []tracker.Entry, stats tracker.Stats, provider string) {
	headerColor.Fprintf(w, "openbob  %s  polls: %d  open: %d  tracked: %d\n\n",
		provider, stats.Polls, stats.Open, stats.Tracked)

	if len(entries) == 0 {
		mutedColor.Fprintln(w, "No windows yet")
		return
	}

	fmt.Fprintf(w, "  %-20s %-44s %10s %10s\n", "APP", "TITLE", "OPEN", "FOCUS")
	for _, pass := range []func(tracker.Entry) bool{
		func(e tracker.Entry) bool { return e.Focused },
		func(e tracker.Entry) bool { return e.Open && !e.Focused },
		func(e tracker.Entry) bool { return !e.Open },
	} {
		for _, e := range entries {
			if !pass(e) {
				continue
			}
			line := fmt.Sprintf("%-20s %-44s %10s %10s",
				utils.Truncate(e.AppName, 20),
				utils.Truncate(e.Title, 44),
				utils.FormatDuration(e.OpenDuration.Truncate(time.Second)),
				utils.FormatDuration(e.FocusDuration.Truncate(time.Second)),
			)
			switch {
			case e.Focused:
				focusedColor.Fprintf(w, "* %s\n", line)
			case e.Open:
				fmt.Fprintf(w, "  %s\n", line)
			default:
				closedColor.Fprintf(w, "  %s\n", line)
			}
		}
	}
}
