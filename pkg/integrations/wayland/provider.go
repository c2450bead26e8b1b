package wayland

import (
	"context"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/openbob/openbob/internal/logger"
	"github.com/openbob/openbob/pkg/integrations/process"
	"github.com/openbob/openbob/pkg/window"
)

const commandTimeout = 2 * time.Second

type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Provider implements window.Provider over the compositor's IPC CLI. Like
// the macOS provider, a listing also yields focus, which FocusedWindow reuses
// once.
type Provider struct {
	mu         sync.Mutex
	compositor Compositor
	run        runner
	names      *process.Resolver
	opts       window.Options
	focused    window.ID
	fresh      bool
}

func New(compositor Compositor, opts window.Options) *Provider {
	return &Provider{
		compositor: compositor,
		run:        runCommand,
		names:      process.NewResolver(),
		opts:       opts,
	}
}

func (p *Provider) Name() string {
	return "wayland"
}

// Compositor returns the compositor this provider talks to
func (p *Provider) Compositor() Compositor {
	return p.compositor
}

func (p *Provider) IsSupported() bool {
	if os.Getenv("WAYLAND_DISPLAY") == "" {
		return false
	}
	cmd, ok := ipcCommands[p.compositor]
	return ok && commandExists(cmd)
}

func (p *Provider) query() ([]client, window.ID, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch p.compositor {
	case Sway:
		out, err := p.run(ctx, "swaymsg", "-r", "-t", "get_tree")
		if err != nil {
			return nil, window.NoWindow, errors.Wrap(err, "swaymsg")
		}
		return parseSwayTree(out)

	case Hyprland:
		out, err := p.run(ctx, "hyprctl", "clients", "-j")
		if err != nil {
			return nil, window.NoWindow, errors.Wrap(err, "hyprctl clients")
		}
		clients, err := parseHyprClients(out)
		if err != nil {
			return nil, window.NoWindow, err
		}

		out, err = p.run(ctx, "hyprctl", "activewindow", "-j")
		if err != nil {
			logger.Debugf("wayland: hyprctl activewindow: %v", err)
			return clients, window.NoWindow, nil
		}
		focused, err := parseHyprActive(out)
		if err != nil {
			logger.Debugf("wayland: %v", err)
		}
		return clients, focused, nil
	}

	return nil, window.NoWindow, errors.Errorf("unsupported compositor %q", p.compositor)
}

func (p *Provider) list() ([]window.Record, window.ID, error) {
	clients, focused, err := p.query()
	if err != nil {
		return nil, window.NoWindow, window.Unavailable(err, "wayland")
	}

	live := make(map[int]struct{}, len(clients))
	records := make([]window.Record, 0, len(clients))
	for _, c := range clients {
		r := c.record
		r.AppName = c.class
		if r.PID > 0 {
			live[r.PID] = struct{}{}
			if r.AppName == "" {
				r.AppName = p.names.Name(r.PID)
			}
		}
		records = append(records, r)
	}
	p.names.Forget(live)

	kept, skipped := window.Filter(records, p.opts)
	for _, err := range skipped {
		logger.Debugf("wayland: %v", err)
	}

	for _, r := range kept {
		if r.ID == focused {
			return kept, focused, nil
		}
	}
	return kept, window.NoWindow, nil
}

func (p *Provider) EnumerateWindows() ([]window.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	records, focused, err := p.list()
	if err != nil {
		p.fresh = false
		return nil, err
	}
	p.focused = focused
	p.fresh = true
	return records, nil
}

func (p *Provider) FocusedWindow() (window.ID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fresh {
		p.fresh = false
		return p.focused, nil
	}

	_, focused, err := p.list()
	if err != nil {
		return window.NoWindow, err
	}
	return focused, nil
}

func (p *Provider) Close() error {
	return nil
}
