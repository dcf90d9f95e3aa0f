package app

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"picviewer/internal/infrastructure/errors"
	"picviewer/internal/platform"
	"picviewer/internal/types"
)

type emittedEvent struct {
	ctx  context.Context
	name string
	data []interface{}
}

// fakeEvents stands in for the Wails event bus
type fakeEvents struct {
	mu        sync.Mutex
	emitted   []emittedEvent
	listeners map[string]map[int]func(...interface{})
	nextID    int
	notify    chan emittedEvent
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{
		listeners: make(map[string]map[int]func(...interface{})),
		notify:    make(chan emittedEvent, 64),
	}
}

func (f *fakeEvents) Emit(ctx context.Context, name string, data ...interface{}) {
	e := emittedEvent{ctx: ctx, name: name, data: data}
	f.mu.Lock()
	f.emitted = append(f.emitted, e)
	f.mu.Unlock()
	select {
	case f.notify <- e:
	default:
	}
}

func (f *fakeEvents) On(_ context.Context, name string, callback func(data ...interface{})) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listeners[name] == nil {
		f.listeners[name] = make(map[int]func(...interface{}))
	}
	id := f.nextID
	f.nextID++
	f.listeners[name][id] = callback
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners[name], id)
	}
}

func (f *fakeEvents) Fire(name string, data ...interface{}) {
	f.mu.Lock()
	callbacks := make([]func(...interface{}), 0, len(f.listeners[name]))
	for _, cb := range f.listeners[name] {
		callbacks = append(callbacks, cb)
	}
	f.mu.Unlock()
	for _, cb := range callbacks {
		cb(data...)
	}
}

func (f *fakeEvents) Count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.emitted {
		if e.name == name {
			n++
		}
	}
	return n
}

// waitFor returns the next emitted event called name, skipping others
func (f *fakeEvents) waitFor(t *testing.T, name string) emittedEvent {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case e := <-f.notify:
			if e.name == name {
				return e
			}
		case <-deadline:
			t.Fatalf("Timed out waiting for event %q", name)
			return emittedEvent{}
		}
	}
}

// requestID extracts the correlation id of a show request
func requestID(t *testing.T, e emittedEvent) string {
	t.Helper()
	if len(e.data) == 0 {
		t.Fatal("Show request has no payload")
	}
	raw, err := json.Marshal(e.data[0])
	if err != nil {
		t.Fatalf("marshal show request: %v", err)
	}
	var req struct {
		RequestID string `json:"requestId"`
	}
	if err := json.Unmarshal(raw, &req); err != nil || req.RequestID == "" {
		t.Fatalf("Show request without id: %s", raw)
	}
	return req.RequestID
}

type chromeCall struct {
	ctx   context.Context
	theme types.Theme
}

type fakeChrome struct {
	mu    sync.Mutex
	calls []chromeCall
}

func (f *fakeChrome) SetTheme(ctx context.Context, theme types.Theme) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, chromeCall{ctx: ctx, theme: theme})
}

func (f *fakeChrome) Themes() []types.Theme {
	f.mu.Lock()
	defer f.mu.Unlock()
	themes := make([]types.Theme, len(f.calls))
	for i, c := range f.calls {
		themes[i] = c.theme
	}
	return themes
}

// surfaceResolver resolves a realized window to its surface handle
type surfaceResolver struct{}

func (surfaceResolver) ResolveHandle(w platform.Window) (platform.NativeHandle, error) {
	if !w.Realized() {
		return 0, errors.HandleUnavailable("resolve_handle", string(w.Label()), nil)
	}
	return platform.NativeHandle(w.SurfaceHandle()), nil
}
