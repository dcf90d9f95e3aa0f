package repository

import (
	"context"

	"picviewer/internal/types"
)

// SettingsRepository persists viewer preferences, per-directory history and
// the main window state
type SettingsRepository interface {
	// Preferences are stored as key/value pairs so unknown keys survive upgrades
	GetPreferences(ctx context.Context) (map[string]string, error)
	SavePreferences(ctx context.Context, prefs map[string]string) error

	// History maps a directory to the last file viewed in it
	GetHistory(ctx context.Context) (map[string]string, error)
	UpsertHistory(ctx context.Context, entries map[string]string) error
	DeleteHistory(ctx context.Context, directory string) error

	// GetWindowState returns a NotFound error before the first save
	GetWindowState(ctx context.Context) (*types.WindowState, error)
	SaveWindowState(ctx context.Context, state *types.WindowState) error

	WithTransaction(ctx context.Context, fn func(repo SettingsRepository) error) error
}
