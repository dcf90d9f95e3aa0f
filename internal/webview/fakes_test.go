package webview

import (
	"context"
	"sync"
	"time"
)

type emittedEvent struct {
	ctx  context.Context
	name string
	data []interface{}
}

// fakeEvents records emitted events and lets tests fire registered callbacks
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
		notify:    make(chan emittedEvent, 16),
	}
}

func (f *fakeEvents) Emit(ctx context.Context, name string, data ...interface{}) {
	e := emittedEvent{ctx: ctx, name: name, data: data}
	f.mu.Lock()
	f.emitted = append(f.emitted, e)
	f.mu.Unlock()
	f.notify <- e
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

// Fire invokes every callback registered for name
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

func (f *fakeEvents) Listeners(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners[name])
}

// Next waits for the next emitted event
func (f *fakeEvents) Next() (emittedEvent, bool) {
	select {
	case e := <-f.notify:
		return e, true
	case <-time.After(time.Second):
		return emittedEvent{}, false
	}
}

type ctxKey struct{}

func windowContext(label string) context.Context {
	return context.WithValue(context.Background(), ctxKey{}, label)
}
