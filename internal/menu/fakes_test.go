package menu

import (
	"context"
	"errors"
	"sync"

	apperrors "picviewer/internal/infrastructure/errors"
	"picviewer/internal/platform"
	"picviewer/internal/types"
)

type popupResponse struct {
	itemID   string
	selected bool
	err      error
}

// fakeMenu blocks in PopupAt until a response is sent or ctx is done
type fakeMenu struct {
	mu        sync.Mutex
	themes    []types.Theme
	themeErr  error
	positions []types.Position

	opened    chan struct{}
	responses chan popupResponse
}

func newFakeMenu() *fakeMenu {
	return &fakeMenu{
		opened:    make(chan struct{}, 8),
		responses: make(chan popupResponse, 1),
	}
}

func (f *fakeMenu) PopupAt(ctx context.Context, pos types.Position) (string, bool, error) {
	f.mu.Lock()
	f.positions = append(f.positions, pos)
	f.mu.Unlock()
	f.opened <- struct{}{}

	select {
	case resp := <-f.responses:
		return resp.itemID, resp.selected, resp.err
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

func (f *fakeMenu) SetTheme(theme types.Theme) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.themeErr != nil {
		return f.themeErr
	}
	f.themes = append(f.themes, theme)
	return nil
}

func (f *fakeMenu) Themes() []types.Theme {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.Theme(nil), f.themes...)
}

type createCall struct {
	window types.WindowID
	handle platform.NativeHandle
	tree   Tree
	theme  types.Theme
}

type fakeToolkit struct {
	mu    sync.Mutex
	calls []createCall
	menus map[types.WindowID]*fakeMenu
	err   error
}

func newFakeToolkit() *fakeToolkit {
	return &fakeToolkit{menus: make(map[types.WindowID]*fakeMenu)}
}

func (f *fakeToolkit) Create(window types.WindowID, handle platform.NativeHandle, tree Tree, theme types.Theme) (NativeMenu, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, createCall{window: window, handle: handle, tree: tree, theme: theme})
	if f.err != nil {
		return nil, f.err
	}
	m := newFakeMenu()
	f.menus[window] = m
	return m, nil
}

func (f *fakeToolkit) Menu(window types.WindowID) *fakeMenu {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.menus[window]
}

type fakeResolver struct {
	err error
}

func (f *fakeResolver) ResolveHandle(w platform.Window) (platform.NativeHandle, error) {
	if f.err != nil {
		return 0, f.err
	}
	if !w.Realized() {
		return 0, apperrors.HandleUnavailable("resolve_handle", string(w.Label()), nil)
	}
	return platform.NativeHandle(w.SurfaceHandle()), nil
}

type fakeWindow struct {
	label    types.WindowID
	realized bool
	surface  uintptr
}

func (f *fakeWindow) Label() types.WindowID  { return f.label }
func (f *fakeWindow) Title() string          { return "picviewer" }
func (f *fakeWindow) Realized() bool         { return f.realized }
func (f *fakeWindow) SurfaceHandle() uintptr { return f.surface }

type emitted struct {
	window  types.WindowID
	event   string
	payload []interface{}
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []emitted
	err    error
}

func (f *fakeEmitter) Emit(window types.WindowID, event string, payload ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, emitted{window: window, event: event, payload: payload})
	return nil
}

func (f *fakeEmitter) Events() []emitted {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]emitted(nil), f.events...)
}

var errToolkit = errors.New("toolkit rejected menu")
