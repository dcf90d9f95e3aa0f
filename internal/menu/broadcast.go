package menu

import (
	"time"

	"picviewer/internal/infrastructure/logging"
	"picviewer/internal/types"
)

// Broadcaster restyles every registered menu. It trades consistency for
// availability: menus it cannot reach are skipped and the call returns.
type Broadcaster struct {
	registry *Registry
	logger   logging.Logger
	budget   time.Duration
}

// NewBroadcaster creates a theme broadcaster that waits at most budget for the registry
func NewBroadcaster(registry *Registry, logger logging.Logger, budget time.Duration) *Broadcaster {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if budget < 0 {
		budget = 0
	}
	return &Broadcaster{registry: registry, logger: logger, budget: budget}
}

// Broadcast applies theme to every menu it can reach. Skipped menus are
// logged, never returned as an error; sending the theme again picks them up.
func (b *Broadcaster) Broadcast(theme types.Theme) SweepResult {
	result := b.registry.Sweep(b.budget, func(_ types.WindowID, m NativeMenu) error {
		return m.SetTheme(theme)
	})

	if result.Contended {
		b.logger.Warn("Theme broadcast skipped, registry busy", "theme", theme, "budget_ms", b.budget.Milliseconds())
		return result
	}
	for _, window := range result.Skipped {
		b.logger.Warn("Theme broadcast skipped menu while popup is showing", "window", window, "theme", theme)
	}
	for window, err := range result.Failed {
		b.logger.Error("Theme broadcast failed for menu", "window", window, "theme", theme, "error", err)
	}
	b.logger.Debug("Theme broadcast applied", "theme", theme, "applied", len(result.Applied))
	return result
}
