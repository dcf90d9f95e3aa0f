package webview

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"picviewer/internal/types"
)

// surfaceSeq hands out opaque surface handles. Wails does not expose the
// native window pointer, so a realized window is identified by this value.
var surfaceSeq atomic.Uintptr

// Window tracks one webview window from startup until its page is loaded
type Window struct {
	label types.WindowID
	title string

	mu      sync.RWMutex
	ctx     context.Context
	surface uintptr
}

// NewWindow creates a window that is neither attached nor realized
func NewWindow(label types.WindowID, title string) *Window {
	return &Window{label: label, title: title}
}

// Attach stores the runtime context the window's events are sent through
func (w *Window) Attach(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ctx = ctx
}

// MarkRealized records that the page has loaded. It fails when the window
// has no runtime context yet.
func (w *Window) MarkRealized() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx == nil {
		return fmt.Errorf("window %q realized before startup", w.label)
	}
	if w.surface == 0 {
		w.surface = surfaceSeq.Add(1)
	}
	return nil
}

// Context returns the runtime context of an attached window
func (w *Window) Context() (context.Context, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.ctx, w.ctx != nil
}

func (w *Window) Label() types.WindowID { return w.label }

func (w *Window) Title() string { return w.title }

func (w *Window) Realized() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.surface != 0
}

func (w *Window) SurfaceHandle() uintptr {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.surface
}

// Windows is the set of open windows, addressed by label
type Windows struct {
	events Events

	mu      sync.RWMutex
	byLabel map[types.WindowID]*Window
}

// NewWindows creates an empty window set that emits through events
func NewWindows(events Events) *Windows {
	if events == nil {
		events = RuntimeEvents{}
	}
	return &Windows{events: events, byLabel: make(map[types.WindowID]*Window)}
}

// Add registers a window, replacing one with the same label
func (ws *Windows) Add(w *Window) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.byLabel[w.Label()] = w
}

// Get looks up a window by label
func (ws *Windows) Get(label types.WindowID) (*Window, bool) {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	w, ok := ws.byLabel[label]
	return w, ok
}

// Labels returns the labels of every window in sorted order
func (ws *Windows) Labels() []types.WindowID {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	labels := make([]types.WindowID, 0, len(ws.byLabel))
	for label := range ws.byLabel {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}

// Emit sends an event to the page of one window only
func (ws *Windows) Emit(label types.WindowID, event string, payload ...interface{}) error {
	w, ok := ws.Get(label)
	if !ok {
		return fmt.Errorf("unknown window %q", label)
	}
	ctx, ok := w.Context()
	if !ok {
		return fmt.Errorf("window %q is not attached", label)
	}
	ws.events.Emit(ctx, event, payload...)
	return nil
}
