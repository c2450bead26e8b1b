// Package wayland enumerates windows on wlroots compositors that expose a
// client list over IPC: sway (swaymsg) and Hyprland (hyprctl).
package wayland

import (
	"os"
	"os/exec"
	"strings"
)

// Compositor names a Wayland compositor
type Compositor string

const (
	Sway     Compositor = "sway"
	Hyprland Compositor = "hyprland"
	Unknown  Compositor = "unknown"
)

// ipcCommands maps a compositor to the CLI that talks to its IPC socket
var ipcCommands = map[Compositor]string{
	Sway:     "swaymsg",
	Hyprland: "hyprctl",
}

// DetectCompositor identifies the compositor from the session environment.
// GNOME and KDE report Unknown: neither exposes a window list without a
// shell extension.
func DetectCompositor() Compositor {
	if os.Getenv("SWAYSOCK") != "" {
		return Sway
	}
	if os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		return Hyprland
	}

	for _, desktop := range strings.Split(strings.ToLower(os.Getenv("XDG_CURRENT_DESKTOP")), ":") {
		switch desktop {
		case "sway":
			return Sway
		case "hyprland":
			return Hyprland
		}
	}
	return Unknown
}

func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}
