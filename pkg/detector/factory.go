// Package detector selects the window provider for the host system.
package detector

import (
	"os"
	"runtime"

	"github.com/pkg/errors"

	"github.com/openbob/openbob/internal/logger"
	"github.com/openbob/openbob/pkg/integrations/darwin"
	"github.com/openbob/openbob/pkg/integrations/simulation"
	"github.com/openbob/openbob/pkg/integrations/wayland"
	"github.com/openbob/openbob/pkg/integrations/windows"
	"github.com/openbob/openbob/pkg/integrations/x11"
	"github.com/openbob/openbob/pkg/window"
)

// Options selects and configures a provider
type Options struct {
	Window window.Options

	// Simulate picks the seeded house simulation regardless of platform
	Simulate bool
	Seed     int64
	People   int

	// GOOS overrides runtime.GOOS, for tests
	GOOS string
}

// New returns the provider for the host OS, or the simulation when asked
// explicitly. A host with no usable provider yields ErrUnsupportedPlatform.
func New(opts Options) (window.Provider, error) {
	if opts.Simulate {
		return NewSimulation(opts.Seed, opts.People), nil
	}

	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	var provider window.Provider
	switch goos {
	case "windows":
		provider = windows.New(opts.Window)
	case "darwin":
		provider = darwin.New(opts.Window)
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		switch DetectDisplayServer() {
		case "x11":
			provider = x11.New(opts.Window)
		case "wayland":
			if wl := wayland.New(wayland.DetectCompositor(), opts.Window); wl.IsSupported() {
				provider = wl
				break
			}
			if os.Getenv("DISPLAY") == "" {
				return nil, errors.Wrap(window.ErrUnsupportedPlatform, "wayland compositor without a window list or XWayland")
			}
			logger.Warnf("Wayland session: only XWayland windows are visible")
			provider = x11.New(opts.Window)
		default:
			return nil, errors.Wrap(window.ErrUnsupportedPlatform, "no display server detected")
		}
	default:
		return nil, errors.Wrapf(window.ErrUnsupportedPlatform, "%s", goos)
	}

	if !provider.IsSupported() {
		return nil, errors.Wrapf(window.ErrUnsupportedPlatform, "%s provider unavailable on this host", provider.Name())
	}
	return provider, nil
}

// NewSimulation returns the seeded household simulation
func NewSimulation(seed int64, people int) window.Provider {
	return simulation.NewHouse(seed, people)
}

// Supported lists the platforms with a provider
func Supported() []string {
	return []string{"windows", "darwin", "linux (x11)", "linux (wayland: sway, hyprland)", "simulation"}
}

// DetectDisplayServer reports "wayland", "x11" or "unknown" from the session
// environment
func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
