// Package darwin lists on-screen windows through CoreGraphics, evaluated by
// osascript's JavaScript bridge so no cgo is needed.
package darwin

import (
	"context"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/openbob/openbob/internal/logger"
	"github.com/openbob/openbob/pkg/window"
)

// 17 is kCGWindowListOptionOnScreenOnly | kCGWindowListExcludeDesktopElements
const listScript = `
ObjC.import('CoreGraphics');
ObjC.import('AppKit');
var list = ObjC.deepUnwrap(ObjC.castRefToObject($.CGWindowListCopyWindowInfo(17, 0))) || [];
var front = $.NSWorkspace.sharedWorkspace.frontmostApplication;
JSON.stringify({front_pid: front ? front.processIdentifier : 0, windows: list});
`

const scriptTimeout = 3 * time.Second

type runner func(ctx context.Context) ([]byte, error)

func runOsascript(ctx context.Context) ([]byte, error) {
	return exec.CommandContext(ctx, "osascript", "-l", "JavaScript", "-e", listScript).Output()
}

// Provider implements window.Provider for macOS. One script run yields both
// the window list and the focused window, so FocusedWindow reuses the result
// of the EnumerateWindows call that preceded it.
type Provider struct {
	mu      sync.Mutex
	run     runner
	opts    window.Options
	focused window.ID
	fresh   bool
}

func New(opts window.Options) *Provider {
	return &Provider{run: runOsascript, opts: opts}
}

func (p *Provider) Name() string {
	return "darwin"
}

func (p *Provider) IsSupported() bool {
	if runtime.GOOS != "darwin" {
		return false
	}
	_, err := exec.LookPath("osascript")
	return err == nil
}

func (p *Provider) list() ([]window.Record, window.ID, error) {
	ctx, cancel := context.WithTimeout(context.Background(), scriptTimeout)
	defer cancel()

	out, err := p.run(ctx)
	if err != nil {
		return nil, window.NoWindow, window.Unavailable(errors.Wrap(err, "osascript"), "darwin")
	}

	l, err := parseListing(out)
	if err != nil {
		return nil, window.NoWindow, window.Unavailable(err, "darwin")
	}

	kept, skipped := window.Filter(l.records(), p.opts)
	for _, err := range skipped {
		logger.Debugf("darwin: %v", err)
	}
	return kept, frontWindow(kept, l.FrontPID), nil
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
