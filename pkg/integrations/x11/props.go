package x11

import (
	"encoding/binary"
	"strings"
)

// excludedWindowTypes are EWMH window types that are desktop chrome rather
// than application windows
var excludedWindowTypes = []string{
	"_NET_WM_WINDOW_TYPE_DESKTOP",
	"_NET_WM_WINDOW_TYPE_DOCK",
	"_NET_WM_WINDOW_TYPE_TOOLBAR",
	"_NET_WM_WINDOW_TYPE_MENU",
	"_NET_WM_WINDOW_TYPE_UTILITY",
	"_NET_WM_WINDOW_TYPE_SPLASH",
	"_NET_WM_WINDOW_TYPE_NOTIFICATION",
	"_NET_WM_WINDOW_TYPE_DROPDOWN_MENU",
	"_NET_WM_WINDOW_TYPE_POPUP_MENU",
	"_NET_WM_WINDOW_TYPE_TOOLTIP",
}

// decodeCardinals reads a 32-bit format property value
func decodeCardinals(data []byte) []uint32 {
	out := make([]uint32, 0, len(data)/4)
	for i := 0; i+4 <= len(data); i += 4 {
		out = append(out, binary.LittleEndian.Uint32(data[i:]))
	}
	return out
}

// parseWMClass splits the NUL separated WM_CLASS value into instance and class
func parseWMClass(data []byte) (instance, class string) {
	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	if len(parts) >= 1 {
		instance = parts[0]
	}
	if len(parts) >= 2 {
		class = parts[1]
	}
	return instance, class
}

// isChrome reports whether a window's type or state marks it as non-application
func isChrome(p properties) bool {
	for _, t := range p.types {
		for _, excluded := range excludedWindowTypes {
			if t == excluded {
				return true
			}
		}
	}
	for _, s := range p.states {
		if s == "_NET_WM_STATE_SKIP_TASKBAR" {
			return true
		}
	}
	return false
}

// appName picks the WM_CLASS class, then the instance, then the process name
func appName(p properties, procName string) string {
	if name := strings.TrimSpace(p.class); name != "" {
		return name
	}
	if name := strings.TrimSpace(p.instance); name != "" {
		return name
	}
	return procName
}
