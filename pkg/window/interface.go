package window

import "time"

// ID is the platform-assigned window handle. It is unique at a point in time
// but carries no meaning across OS sessions.
type ID uint64

// NoWindow is returned when no eligible window holds focus
const NoWindow ID = 0

// Record represents one open window as seen by a single poll
type Record struct {
	ID      ID
	AppName string
	Title   string
	PID     int // 0 when the platform does not report an owner

	FirstSeenAt time.Time
	LastSeenAt  time.Time
}

// Provider is the interface that all window enumeration implementations must satisfy
type Provider interface {
	// EnumerateWindows returns the currently open, eligible windows
	EnumerateWindows() ([]Record, error)

	// FocusedWindow returns the id of the window holding input focus, or NoWindow
	FocusedWindow() (ID, error)

	// IsSupported checks if this provider can run on the current system
	IsSupported() bool

	// Name returns a short provider name ("windows", "darwin", "x11", "wayland", "simulation")
	Name() string

	// Close cleans up any resources used by the provider
	Close() error
}
