//go:build !windows

package windows

import "github.com/openbob/openbob/pkg/window"

func (p *Provider) IsSupported() bool {
	return false
}

func (p *Provider) EnumerateWindows() ([]window.Record, error) {
	return nil, window.Unavailable(nil, "user32 is only available on windows")
}

func (p *Provider) FocusedWindow() (window.ID, error) {
	return window.NoWindow, nil
}
