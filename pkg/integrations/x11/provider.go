// Package x11 enumerates top-level windows through the EWMH properties a
// window manager publishes on the root window.
package x11

import (
	"os"
	"sync"

	"github.com/openbob/openbob/internal/logger"
	"github.com/openbob/openbob/pkg/integrations/process"
	"github.com/openbob/openbob/pkg/window"
)

// Provider implements window.Provider over a single xgb connection held for
// its lifetime. A broken connection is dropped and redialed on the next poll.
type Provider struct {
	mu    sync.Mutex
	src   source
	dial  func() (source, error)
	names *process.Resolver
	opts  window.Options
}

func New(opts window.Options) *Provider {
	return &Provider{
		dial:  dial,
		names: process.NewResolver(),
		opts:  opts,
	}
}

func (p *Provider) Name() string {
	return "x11"
}

// IsSupported reports whether an X display is configured. It does not dial.
func (p *Provider) IsSupported() bool {
	return os.Getenv("DISPLAY") != ""
}

func (p *Provider) connect() (source, error) {
	if p.src != nil {
		return p.src, nil
	}
	src, err := p.dial()
	if err != nil {
		return nil, err
	}
	p.src = src
	return src, nil
}

func (p *Provider) reset() {
	if p.src != nil {
		p.src.close()
		p.src = nil
	}
}

func (p *Provider) EnumerateWindows() ([]window.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	src, err := p.connect()
	if err != nil {
		return nil, window.Unavailable(err, "x11")
	}

	ids, err := src.clientList()
	if err != nil {
		p.reset()
		return nil, window.Unavailable(err, "x11")
	}

	records := make([]window.Record, 0, len(ids))
	live := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		props, err := src.describe(id)
		if err != nil {
			logger.Debugf("x11: skipping window 0x%x: %v", id, err)
			continue
		}
		if isChrome(props) {
			continue
		}

		procName := ""
		if props.class == "" && props.instance == "" {
			procName = p.names.Name(props.pid)
		}
		if props.pid > 0 {
			live[props.pid] = struct{}{}
		}

		records = append(records, window.Record{
			ID:      window.ID(id),
			AppName: appName(props, procName),
			Title:   props.title,
			PID:     props.pid,
		})
	}
	p.names.Forget(live)

	kept, skipped := window.Filter(records, p.opts)
	for _, err := range skipped {
		logger.Debugf("x11: %v", err)
	}
	return kept, nil
}

// FocusedWindow returns the _NET_ACTIVE_WINDOW id, or NoWindow when the
// window manager reports none
func (p *Provider) FocusedWindow() (window.ID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	src, err := p.connect()
	if err != nil {
		return window.NoWindow, window.Unavailable(err, "x11")
	}

	id, err := src.activeWindow()
	if err != nil {
		p.reset()
		return window.NoWindow, window.Unavailable(err, "x11")
	}
	return window.ID(id), nil
}

func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
