package menu

import (
	"sort"
	"sync"
	"time"

	menuerrors "picviewer/internal/infrastructure/errors"
	"picviewer/internal/types"
)

const (
	// DefaultSweepBudget bounds how long a sweep waits for the registry lock
	DefaultSweepBudget = 50 * time.Millisecond

	sweepPollInterval = time.Millisecond
)

type entry struct {
	menu    NativeMenu
	tree    Tree
	showing bool
}

// Registry maps each window to its live menu. It is the only owner of the
// menu objects: callers borrow a menu through Acquire or Sweep and never
// keep it past the call.
//
// Two access policies are offered. Acquire is an exclusive read that waits
// for the lock and then marks the menu as showing until released. Sweep is
// best effort: it gives up after a bounded wait and skips menus that are
// showing.
type Registry struct {
	mu      sync.Mutex
	entries map[types.WindowID]*entry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[types.WindowID]*entry)}
}

// Install registers the menu of a window, replacing any previous entry.
// A popup still showing the previous menu keeps its own reference; the
// window stays marked as showing until that popup's lease is released.
func (r *Registry) Install(window types.WindowID, menu NativeMenu, tree Tree) {
	r.mu.Lock()
	defer r.mu.Unlock()
	showing := false
	if prev, ok := r.entries[window]; ok {
		showing = prev.showing
	}
	r.entries[window] = &entry{menu: menu, tree: tree, showing: showing}
}

// Lease is a menu borrowed for one popup
type Lease struct {
	Menu NativeMenu

	registry *Registry
	window   types.WindowID
	entry    *entry
	once     sync.Once
}

// Release returns the menu to the registry and clears the window's showing
// mark, including on an entry installed while the popup was open. A
// non-empty itemID records the selection in the tree of the menu that was
// shown; a replacement keeps the tree it was built from. Release is
// idempotent.
func (l *Lease) Release(itemID string) {
	l.once.Do(func() {
		l.registry.mu.Lock()
		defer l.registry.mu.Unlock()
		l.entry.showing = false
		if current, ok := l.registry.entries[l.window]; ok {
			current.showing = false
		}
		if itemID != "" && l.registry.entries[l.window] == l.entry {
			l.entry.tree = l.entry.tree.Select(itemID)
		}
	})
}

// Acquire borrows the menu of a window for a popup. The lock is held only
// while the entry is looked up; the menu stays marked as showing until the
// lease is released.
func (r *Registry) Acquire(window types.WindowID) (*Lease, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[window]
	if !ok {
		return nil, menuerrors.MenuNotPrepared("popup", string(window))
	}
	if e.showing {
		return nil, menuerrors.PopupActive("popup", string(window))
	}
	e.showing = true
	return &Lease{Menu: e.menu, registry: r, window: window, entry: e}, nil
}

// SweepResult reports what a sweep reached
type SweepResult struct {
	Applied   []types.WindowID
	Skipped   []types.WindowID
	Failed    map[types.WindowID]error
	Contended bool // the lock could not be taken within the budget
}

// Sweep calls fn for every registered menu that is not showing. It waits at
// most budget for the lock and never blocks on a popup. A zero budget makes a
// single attempt.
func (r *Registry) Sweep(budget time.Duration, fn func(types.WindowID, NativeMenu) error) SweepResult {
	if !r.tryLock(budget) {
		return SweepResult{Contended: true}
	}
	defer r.mu.Unlock()

	var result SweepResult
	for _, window := range r.sortedWindows() {
		e := r.entries[window]
		if e.showing {
			result.Skipped = append(result.Skipped, window)
			continue
		}
		if err := fn(window, e.menu); err != nil {
			if result.Failed == nil {
				result.Failed = make(map[types.WindowID]error)
			}
			result.Failed[window] = err
			continue
		}
		result.Applied = append(result.Applied, window)
	}
	return result
}

func (r *Registry) tryLock(budget time.Duration) bool {
	deadline := time.Now().Add(budget)
	for {
		if r.mu.TryLock() {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(sweepPollInterval)
	}
}

// Tree returns the description the window's menu was built from
func (r *Registry) Tree(window types.WindowID) (Tree, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[window]
	if !ok {
		return nil, false
	}
	return e.tree, true
}

// Showing reports whether the window's menu is currently borrowed by a popup
func (r *Registry) Showing(window types.WindowID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[window]
	return ok && e.showing
}

// Windows returns the registered windows in sorted order
func (r *Registry) Windows() []types.WindowID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedWindows()
}

// Len returns the number of registered menus
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) sortedWindows() []types.WindowID {
	windows := make([]types.WindowID, 0, len(r.entries))
	for window := range r.entries {
		windows = append(windows, window)
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i] < windows[j] })
	return windows
}
