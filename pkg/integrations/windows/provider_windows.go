//go:build windows

package windows

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/openbob/openbob/pkg/window"
)

// Calls x/sys/windows has no wrapper for. System DLLs load from System32 only.
var (
	user32                   = windows.NewLazySystemDLL("user32.dll")
	procGetWindowTextLengthW = user32.NewProc("GetWindowTextLengthW")
	procGetWindowTextW       = user32.NewProc("GetWindowTextW")
	procGetWindowLongW       = user32.NewProc("GetWindowLongW")
	procGetWindow            = user32.NewProc("GetWindow")

	dwmapi                    = windows.NewLazySystemDLL("dwmapi.dll")
	procDwmGetWindowAttribute = dwmapi.NewProc("DwmGetWindowAttribute")
)

const (
	gwOwner      = 4
	dwmwaCloaked = 14
)

// GWL_EXSTYLE is negative and must be sign extended at call time
var gwlExStyle int32 = -20

// EnumWindows callbacks are a limited resource, so one is shared and the
// handles it collects are guarded by enumMu
var (
	enumMu       sync.Mutex
	enumHandles  []uintptr
	enumCallback = windows.NewCallback(func(hwnd, _ uintptr) uintptr {
		enumHandles = append(enumHandles, hwnd)
		return 1
	})
)

func (p *Provider) IsSupported() bool {
	return user32.Load() == nil && procGetWindowTextW.Find() == nil
}

func (p *Provider) EnumerateWindows() ([]window.Record, error) {
	enumMu.Lock()
	enumHandles = enumHandles[:0]
	err := windows.EnumWindows(enumCallback, nil)
	hwnds := append([]uintptr(nil), enumHandles...)
	enumMu.Unlock()

	if err != nil {
		return nil, window.Unavailable(err, "EnumWindows")
	}

	infos := make([]handleInfo, 0, len(hwnds))
	for _, hwnd := range hwnds {
		infos = append(infos, inspect(hwnd))
	}
	return p.toRecords(infos), nil
}

func (p *Provider) FocusedWindow() (window.ID, error) {
	return window.ID(windows.GetForegroundWindow()), nil
}

func inspect(hwnd uintptr) handleInfo {
	h := handleInfo{hwnd: hwnd}
	handle := windows.HWND(hwnd)

	h.visible = windows.IsWindowVisible(handle)
	if !h.visible {
		return h
	}

	h.title = windowText(hwnd)
	h.class = className(handle)

	style, _, _ := procGetWindowLongW.Call(hwnd, uintptr(gwlExStyle))
	h.exStyle = uint32(style)

	owner, _, _ := procGetWindow.Call(hwnd, gwOwner)
	h.hasOwner = owner != 0

	var cloaked uint32
	if procDwmGetWindowAttribute.Find() == nil {
		procDwmGetWindowAttribute.Call(hwnd, dwmwaCloaked, uintptr(unsafe.Pointer(&cloaked)), unsafe.Sizeof(cloaked))
	}
	h.cloaked = cloaked != 0

	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(handle, &pid); err == nil {
		h.pid = int(pid)
	}

	return h
}

func windowText(hwnd uintptr) string {
	n, _, _ := procGetWindowTextLengthW.Call(hwnd)
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf)
}

func className(hwnd windows.HWND) string {
	buf := make([]uint16, 256)
	if _, err := windows.GetClassName(hwnd, &buf[0], int32(len(buf))); err != nil {
		return ""
	}
	return windows.UTF16ToString(buf)
}
