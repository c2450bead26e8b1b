package wayland

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/openbob/openbob/pkg/window"
)

type swayProps struct {
	Class    string `json:"class"`
	Instance string `json:"instance"`
}

// swayNode is the subset of a swaymsg get_tree node the provider reads
type swayNode struct {
	ID            uint64     `json:"id"`
	Type          string     `json:"type"`
	Name          string     `json:"name"`
	Focused       bool       `json:"focused"`
	AppID         string     `json:"app_id"`
	PID           int        `json:"pid"`
	Props         *swayProps `json:"window_properties"`
	Nodes         []swayNode `json:"nodes"`
	FloatingNodes []swayNode `json:"floating_nodes"`
}

// isWindow is true for containers that hold a client: native Wayland
// clients carry a pid and XWayland ones carry window_properties
func (n swayNode) isWindow() bool {
	return (n.Type == "con" || n.Type == "floating_con") && (n.PID > 0 || n.Props != nil)
}

func (n swayNode) class() string {
	if n.AppID != "" {
		return n.AppID
	}
	if n.Props != nil {
		if n.Props.Class != "" {
			return n.Props.Class
		}
		return n.Props.Instance
	}
	return ""
}

type client struct {
	record window.Record
	class  string
}

// parseSwayTree flattens the layout tree into clients in tree order and
// returns the focused window's id
func parseSwayTree(data []byte) ([]client, window.ID, error) {
	var root swayNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, window.NoWindow, errors.Wrap(err, "decode sway tree")
	}

	var out []client
	focused := window.NoWindow

	var walk func(n swayNode)
	walk = func(n swayNode) {
		if n.isWindow() {
			out = append(out, client{
				record: window.Record{ID: window.ID(n.ID), Title: n.Name, PID: n.PID},
				class:  n.class(),
			})
			if n.Focused {
				focused = window.ID(n.ID)
			}
		}
		for _, c := range n.Nodes {
			walk(c)
		}
		for _, c := range n.FloatingNodes {
			walk(c)
		}
	}
	walk(root)

	return out, focused, nil
}
