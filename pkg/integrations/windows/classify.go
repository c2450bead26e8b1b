// Package windows enumerates top-level desktop windows through user32.
package windows

import (
	"github.com/openbob/openbob/pkg/integrations/process"
	"github.com/openbob/openbob/pkg/window"
)

// Extended window styles
const (
	wsExToolWindow = 0x00000080
	wsExAppWindow  = 0x00040000
	wsExNoActivate = 0x08000000
)

// ExcludedClasses are shell and IME window classes that never represent a
// user application
var ExcludedClasses = []string{
	"Shell_TrayWnd",
	"Shell_SecondaryTrayWnd",
	"DV2ControlHost",
	"MsgrIMEWindowClass",
	"SysShadow",
	"Button",
	"Windows.UI.Core.CoreWindow",
}

// handleInfo is what EnumWindows learns about one top-level window
type handleInfo struct {
	hwnd     uintptr
	visible  bool
	cloaked  bool
	title    string
	class    string
	exStyle  uint32
	hasOwner bool
	pid      int
}

// eligible applies the taskbar rules: visible, not cloaked, not a shell
// class, not a tool window, and owned windows only when forced onto the
// taskbar with WS_EX_APPWINDOW
func eligible(h handleInfo) bool {
	if !h.visible || h.cloaked {
		return false
	}
	for _, class := range ExcludedClasses {
		if h.class == class {
			return false
		}
	}
	if h.exStyle&wsExToolWindow != 0 {
		return false
	}
	if h.exStyle&wsExAppWindow == 0 {
		if h.hasOwner || h.exStyle&wsExNoActivate != 0 {
			return false
		}
	}
	return true
}

// Provider implements window.Provider for the Windows desktop
type Provider struct {
	names  *process.Resolver
	lookup func(pid int) string
	opts   window.Options
}

func New(opts window.Options) *Provider {
	names := process.NewResolver()
	return &Provider{
		names:  names,
		lookup: names.Name,
		opts:   opts,
	}
}

func (p *Provider) Name() string {
	return "windows"
}

func (p *Provider) Close() error {
	return nil
}

// toRecords keeps eligible handles and resolves their owning process names
func (p *Provider) toRecords(handles []handleInfo) []window.Record {
	records := make([]window.Record, 0, len(handles))
	live := make(map[int]struct{}, len(handles))
	for _, h := range handles {
		if !eligible(h) {
			continue
		}
		live[h.pid] = struct{}{}
		records = append(records, window.Record{
			ID:      window.ID(h.hwnd),
			AppName: p.lookup(h.pid),
			Title:   h.title,
			PID:     h.pid,
		})
	}
	p.names.Forget(live)

	kept, _ := window.Filter(records, p.opts)
	return kept
}
