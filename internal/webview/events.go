package webview

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Event names shared with the frontend
const (
	BackendReadyEvent = "backend-ready"
	ShowMenuEvent     = "contextmenu-show"
	HideMenuEvent     = "contextmenu-hide"
	MenuResponseEvent = "contextmenu-response"
	MenuThemeEvent    = "contextmenu-theme"
)

// Events is the part of the Wails runtime used to talk to a window's page.
// The runtime exits the process when given a context it did not create, so
// tests substitute their own implementation.
type Events interface {
	Emit(ctx context.Context, name string, data ...interface{})
	On(ctx context.Context, name string, callback func(data ...interface{})) func()
}

// RuntimeEvents implements Events with the Wails runtime
type RuntimeEvents struct{}

func (RuntimeEvents) Emit(ctx context.Context, name string, data ...interface{}) {
	runtime.EventsEmit(ctx, name, data...)
}

func (RuntimeEvents) On(ctx context.Context, name string, callback func(data ...interface{})) func() {
	return runtime.EventsOn(ctx, name, callback)
}
