package wayland

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/openbob/openbob/pkg/window"
)

// hyprClient is one entry of hyprctl clients -j
type hyprClient struct {
	Address      string `json:"address"`
	Mapped       bool   `json:"mapped"`
	Hidden       bool   `json:"hidden"`
	Class        string `json:"class"`
	InitialClass string `json:"initialClass"`
	Title        string `json:"title"`
	PID          int    `json:"pid"`
}

// parseAddress turns "0x55d3c2a1b2c0" into a window id
func parseAddress(addr string) (window.ID, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(addr, "0x"), 16, 64)
	if err != nil {
		return window.NoWindow, errors.Wrapf(err, "window address %q", addr)
	}
	return window.ID(v), nil
}

func parseHyprClients(data []byte) ([]client, error) {
	var list []hyprClient
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, errors.Wrap(err, "decode hyprctl clients")
	}

	out := make([]client, 0, len(list))
	for _, c := range list {
		if !c.Mapped || c.Hidden {
			continue
		}
		id, err := parseAddress(c.Address)
		if err != nil {
			continue
		}
		class := c.Class
		if class == "" {
			class = c.InitialClass
		}
		out = append(out, client{
			record: window.Record{ID: id, Title: c.Title, PID: c.PID},
			class:  class,
		})
	}
	return out, nil
}

// parseHyprActive reads hyprctl activewindow -j, which prints "{}" when
// nothing is focused
func parseHyprActive(data []byte) (window.ID, error) {
	var active struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(data, &active); err != nil {
		return window.NoWindow, errors.Wrap(err, "decode hyprctl activewindow")
	}
	if active.Address == "" {
		return window.NoWindow, nil
	}
	return parseAddress(active.Address)
}
