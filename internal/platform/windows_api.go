//go:build windows

package platform

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	apperrors "picviewer/internal/infrastructure/errors"
)

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW = user32.NewProc("FindWindowW")
	procIsWindow    = user32.NewProc("IsWindow")
)

// WindowsResolver finds the top-level HWND of a window by its title
type WindowsResolver struct{}

// NewWindowsResolver creates a new Windows resolver instance
func NewWindowsResolver() *WindowsResolver {
	return &WindowsResolver{}
}

// NewHandleResolver creates a HandleResolver for Windows
func NewHandleResolver() HandleResolver {
	return NewWindowsResolver()
}

// ResolveHandle implements HandleResolver
func (r *WindowsResolver) ResolveHandle(w Window) (NativeHandle, error) {
	if w == nil || !w.Realized() {
		return resolveSurface(w)
	}
	label := string(w.Label())

	if err := procFindWindowW.Find(); err != nil {
		return 0, apperrors.HandleUnavailable(opResolveHandle, label, err)
	}

	title, err := windows.UTF16PtrFromString(w.Title())
	if err != nil {
		return 0, apperrors.HandleUnavailable(opResolveHandle, label, fmt.Errorf("invalid window title: %w", err))
	}

	hwnd, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(title)))
	if hwnd == 0 {
		return 0, apperrors.HandleUnavailable(opResolveHandle, label, fmt.Errorf("no top-level window titled %q", w.Title()))
	}

	if valid, _, _ := procIsWindow.Call(hwnd); valid == 0 {
		return 0, apperrors.HandleUnavailable(opResolveHandle, label, fmt.Errorf("hwnd 0x%x is not a window", hwnd))
	}
	return NativeHandle(hwnd), nil
}
