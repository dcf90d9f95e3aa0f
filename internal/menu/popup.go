package menu

import (
	"context"
	"errors"
	"time"

	menuerrors "picviewer/internal/infrastructure/errors"
	"picviewer/internal/infrastructure/logging"
	"picviewer/internal/types"
)

// SelectionEvent is emitted to the originating window with the chosen item id
const SelectionEvent = "contextmenu-event"

// Coordinator runs the show-and-wait protocol for one window's menu at a time.
// Popups of different windows never wait on each other.
type Coordinator struct {
	registry *Registry
	emitter  Emitter
	logger   logging.Logger
	timeout  time.Duration
}

// NewCoordinator creates a popup coordinator. A zero timeout lets a popup stay
// open until the user responds.
func NewCoordinator(registry *Registry, emitter Emitter, logger logging.Logger, timeout time.Duration) *Coordinator {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Coordinator{
		registry: registry,
		emitter:  emitter,
		logger:   logger,
		timeout:  timeout,
	}
}

// Popup shows the window's menu at pos and waits for the user. A selection is
// emitted to the window as SelectionEvent; a dismissal emits nothing and
// returns a result with Selected false.
func (c *Coordinator) Popup(ctx context.Context, window types.WindowID, pos types.Position) (types.SelectionResult, error) {
	const op = "popup"

	lease, err := c.registry.Acquire(window)
	if err != nil {
		return types.SelectionResult{}, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.Debug("Context menu opened", "window", window, "x", pos.X, "y", pos.Y)
	itemID, selected, err := lease.Menu.PopupAt(ctx, pos)
	if err != nil {
		lease.Release("")
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			c.logger.Info("Context menu closed without response", "window", window, "reason", err)
			return types.SelectionResult{}, nil
		}
		return types.SelectionResult{}, menuerrors.NewMenuError(op, string(window), err, menuerrors.ErrCodeInternal)
	}
	if !selected {
		lease.Release("")
		c.logger.Debug("Context menu dismissed", "window", window)
		return types.SelectionResult{}, nil
	}
	lease.Release(itemID)

	result := types.SelectionResult{ItemID: itemID, Selected: true}
	if err := c.emitter.Emit(window, SelectionEvent, itemID); err != nil {
		return result, menuerrors.NewMenuErrorWithContext(op, string(window), err, menuerrors.ErrCodeInternal,
			map[string]string{"event": SelectionEvent, "item": itemID})
	}
	c.logger.Debug("Context menu item selected", "window", window, "item", itemID)
	return result, nil
}
