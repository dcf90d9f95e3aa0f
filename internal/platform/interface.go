package platform

import (
	apperrors "picviewer/internal/infrastructure/errors"
	"picviewer/internal/types"
)

// NativeHandle is the address-sized value a menu toolkit uses as the parent
// surface for popups
type NativeHandle uintptr

// Window is the part of an application window the resolver reads
type Window interface {
	Label() types.WindowID
	Title() string
	Realized() bool
	SurfaceHandle() uintptr
}

// HandleResolver converts a window into its native handle. It fails with
// HandleUnavailable until the window is realized.
type HandleResolver interface {
	ResolveHandle(w Window) (NativeHandle, error)
}

const opResolveHandle = "resolve_handle"

// resolveSurface returns the surface handle the webview assigned to a
// realized window
func resolveSurface(w Window) (NativeHandle, error) {
	if w == nil {
		return 0, apperrors.HandleUnavailable(opResolveHandle, "", nil)
	}
	if !w.Realized() || w.SurfaceHandle() == 0 {
		return 0, apperrors.HandleUnavailable(opResolveHandle, string(w.Label()), nil)
	}
	return NativeHandle(w.SurfaceHandle()), nil
}
