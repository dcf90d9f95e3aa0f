package menu

import (
	"context"

	"picviewer/internal/platform"
	"picviewer/internal/types"
)

// NativeMenu is a menu object owned by the native toolkit. It is not safe
// for concurrent use; the Registry mediates every access.
type NativeMenu interface {
	// PopupAt shows the menu and blocks until the user selects an item,
	// dismisses the menu, or ctx is done. selected is false on dismissal.
	PopupAt(ctx context.Context, pos types.Position) (itemID string, selected bool, err error)

	// SetTheme restyles the menu in place
	SetTheme(theme types.Theme) error
}

// Toolkit creates native menus parented to a window
type Toolkit interface {
	Create(window types.WindowID, handle platform.NativeHandle, tree Tree, theme types.Theme) (NativeMenu, error)
}

// Emitter delivers events to the page of one window
type Emitter interface {
	Emit(window types.WindowID, event string, payload ...interface{}) error
}
