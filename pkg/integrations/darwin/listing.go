package darwin

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/openbob/openbob/pkg/window"
)

// ExcludedApps are system processes whose windows are never tracked
var ExcludedApps = []string{
	"Dock",
	"Spotlight",
	"SystemUIServer",
	"ControlCenter",
	"NotificationCenter",
	"WindowServer",
	"loginwindow",
	"Finder",
}

// cgWindow is one CGWindowList dictionary as serialized by the script
type cgWindow struct {
	Number    uint64 `json:"kCGWindowNumber"`
	Layer     int    `json:"kCGWindowLayer"`
	OwnerName string `json:"kCGWindowOwnerName"`
	OwnerPID  int    `json:"kCGWindowOwnerPID"`
	Name      string `json:"kCGWindowName"`
}

// listing is the script output: on-screen windows front to back plus the
// pid of the frontmost application
type listing struct {
	FrontPID int        `json:"front_pid"`
	Windows  []cgWindow `json:"windows"`
}

func parseListing(data []byte) (listing, error) {
	var l listing
	if err := json.Unmarshal(data, &l); err != nil {
		return listing{}, errors.Wrap(err, "failed to decode window list")
	}
	return l, nil
}

func isExcludedApp(name string) bool {
	for _, app := range ExcludedApps {
		if name == app {
			return true
		}
	}
	return false
}

// records keeps layer-0 windows of non-system applications, preserving the
// front-to-back order of the list
func (l listing) records() []window.Record {
	out := make([]window.Record, 0, len(l.Windows))
	for _, w := range l.Windows {
		if w.Layer != 0 || isExcludedApp(w.OwnerName) {
			continue
		}
		out = append(out, window.Record{
			ID:      window.ID(w.Number),
			AppName: w.OwnerName,
			Title:   w.Name,
			PID:     w.OwnerPID,
		})
	}
	return out
}

// frontWindow is the first eligible window owned by the frontmost app.
// macOS exposes only the focused application, so its top window stands in.
func frontWindow(records []window.Record, frontPID int) window.ID {
	if frontPID <= 0 {
		return window.NoWindow
	}
	for _, r := range records {
		if r.PID == frontPID {
			return r.ID
		}
	}
	return window.NoWindow
}
