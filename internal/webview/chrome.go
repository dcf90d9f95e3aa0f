package webview

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"picviewer/internal/types"
)

// Chrome styles the native frame of a window
type Chrome interface {
	SetTheme(ctx context.Context, theme types.Theme)
}

// RuntimeChrome implements Chrome with the Wails runtime
type RuntimeChrome struct{}

func (RuntimeChrome) SetTheme(ctx context.Context, theme types.Theme) {
	if theme == types.ThemeDark {
		runtime.WindowSetDarkTheme(ctx)
		return
	}
	runtime.WindowSetLightTheme(ctx)
}
