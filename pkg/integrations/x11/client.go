package x11

import (
	"encoding/binary"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"
)

// properties is what the provider needs to know about one client window
type properties struct {
	title    string
	instance string
	class    string
	pid      int
	types    []string
	states   []string
}

// source is the window-manager view the provider polls
type source interface {
	clientList() ([]uint32, error)
	activeWindow() (uint32, error)
	describe(id uint32) (properties, error)
	close()
}

// client is a long-lived xgb connection with interned EWMH atoms
type client struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
	names map[xproto.Atom]string
}

var atomNames = []string{
	"_NET_CLIENT_LIST",
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_NAME",
	"_NET_WM_PID",
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_STATE",
	"_NET_WM_STATE_SKIP_TASKBAR",
	"WM_NAME",
	"WM_CLASS",
	"UTF8_STRING",
}

func dial() (source, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to X server")
	}

	setup := xproto.Setup(conn)
	c := &client{
		conn:  conn,
		root:  setup.DefaultScreen(conn).Root,
		atoms: make(map[string]xproto.Atom),
		names: make(map[xproto.Atom]string),
	}

	all := append(append([]string{}, atomNames...), excludedWindowTypes...)
	for _, name := range all {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "failed to intern atom %s", name)
		}
		c.atoms[name] = reply.Atom
		c.names[reply.Atom] = name
	}

	return c, nil
}

func (c *client) close() {
	c.conn.Close()
}

func (c *client) getProperty(w xproto.Window, atom, atomType xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(c.conn, false, w, atom, atomType, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	if reply == nil {
		return nil, nil
	}
	return reply.Value, nil
}

func (c *client) clientList() ([]uint32, error) {
	data, err := c.getProperty(c.root, c.atoms["_NET_CLIENT_LIST"], xproto.AtomWindow, 4096)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read _NET_CLIENT_LIST")
	}
	return decodeCardinals(data), nil
}

func (c *client) activeWindow() (uint32, error) {
	data, err := c.getProperty(c.root, c.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read _NET_ACTIVE_WINDOW")
	}
	if len(data) < 4 {
		return 0, nil
	}
	return binary.LittleEndian.Uint32(data), nil
}

func (c *client) describe(id uint32) (properties, error) {
	w := xproto.Window(id)

	title, err := c.windowName(w)
	if err != nil {
		return properties{}, err
	}

	instance, class := "", ""
	if data, err := c.getProperty(w, c.atoms["WM_CLASS"], xproto.AtomString, 256); err == nil {
		instance, class = parseWMClass(data)
	}

	pid := 0
	if data, err := c.getProperty(w, c.atoms["_NET_WM_PID"], xproto.AtomCardinal, 1); err == nil && len(data) >= 4 {
		pid = int(binary.LittleEndian.Uint32(data))
	}

	return properties{
		title:    title,
		instance: instance,
		class:    class,
		pid:      pid,
		types:    c.atomList(w, "_NET_WM_WINDOW_TYPE"),
		states:   c.atomList(w, "_NET_WM_STATE"),
	}, nil
}

// windowName prefers the UTF-8 _NET_WM_NAME over legacy WM_NAME
func (c *client) windowName(w xproto.Window) (string, error) {
	data, err := c.getProperty(w, c.atoms["_NET_WM_NAME"], c.atoms["UTF8_STRING"], 256)
	if err != nil {
		// the window went away between the list and this call
		return "", errors.Wrapf(err, "failed to read name of window 0x%x", uint32(w))
	}
	if name := trimProperty(data); name != "" {
		return name, nil
	}

	data, err = c.getProperty(w, c.atoms["WM_NAME"], xproto.AtomString, 256)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read name of window 0x%x", uint32(w))
	}
	return trimProperty(data), nil
}

func (c *client) atomList(w xproto.Window, prop string) []string {
	data, err := c.getProperty(w, c.atoms[prop], xproto.AtomAtom, 32)
	if err != nil {
		return nil
	}

	var out []string
	for _, a := range decodeCardinals(data) {
		if name, ok := c.names[xproto.Atom(a)]; ok {
			out = append(out, name)
		}
	}
	return out
}

func trimProperty(data []byte) string {
	return strings.TrimSpace(strings.TrimRight(string(data), "\x00"))
}
