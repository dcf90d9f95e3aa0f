package menu

import (
	"context"
	"time"

	menuerrors "picviewer/internal/infrastructure/errors"
	"picviewer/internal/infrastructure/logging"
	"picviewer/internal/platform"
	"picviewer/internal/types"
)

// Options tunes the menu subsystem
type Options struct {
	BroadcastBudget time.Duration
	PopupTimeout    time.Duration
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{BroadcastBudget: DefaultSweepBudget}
}

// Manager prepares, opens and restyles the context menus of every window
type Manager struct {
	registry    *Registry
	toolkit     Toolkit
	resolver    platform.HandleResolver
	coordinator *Coordinator
	broadcaster *Broadcaster
	logger      logging.Logger
}

// NewManager wires a registry to the toolkit, resolver and emitter
func NewManager(toolkit Toolkit, resolver platform.HandleResolver, emitter Emitter, logger logging.Logger, opts Options) *Manager {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	registry := NewRegistry()
	return &Manager{
		registry:    registry,
		toolkit:     toolkit,
		resolver:    resolver,
		coordinator: NewCoordinator(registry, emitter, logger, opts.PopupTimeout),
		broadcaster: NewBroadcaster(registry, logger, opts.BroadcastBudget),
		logger:      logger,
	}
}

// Registry exposes the registry for inspection
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Prepare builds the window's menu from settings and installs it. On failure
// the previously installed menu, if any, stays in place.
func (m *Manager) Prepare(window platform.Window, settings types.Settings) error {
	const op = "prepare_menu"
	start := time.Now()

	if window == nil {
		return menuerrors.HandleUnavailable(op, "", nil)
	}
	id := window.Label()

	handle, err := m.resolver.ResolveHandle(window)
	if err != nil {
		if !menuerrors.IsHandleUnavailable(err) {
			err = menuerrors.HandleUnavailable(op, string(id), err)
		}
		return err
	}

	tree := Build(settings)
	if err := tree.Validate(); err != nil {
		return menuerrors.BuildFailure(op, string(id), err)
	}

	native, err := m.toolkit.Create(id, handle, tree, types.ParsePreparedTheme(settings.Theme))
	if err != nil {
		return menuerrors.BuildFailure(op, string(id), err)
	}

	m.registry.Install(id, native, tree)
	logging.LogOperation(m.logger, op, time.Since(start), map[string]interface{}{
		"window": id,
		"items":  tree.Count(),
	})
	return nil
}

// Open shows the window's context menu at pos and waits for the user
func (m *Manager) Open(ctx context.Context, window types.WindowID, pos types.Position) (types.SelectionResult, error) {
	return m.coordinator.Popup(ctx, window, pos)
}

// ChangeTheme restyles every menu it can reach without waiting on popups
func (m *Manager) ChangeTheme(theme types.Theme) SweepResult {
	return m.broadcaster.Broadcast(theme)
}
