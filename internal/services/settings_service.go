package services

import (
	"context"
	"time"

	"picviewer/internal/infrastructure/errors"
	"picviewer/internal/infrastructure/logging"
	"picviewer/internal/repository"
	"picviewer/internal/types"
)

// Preference keys as stored in the preferences table
const (
	PreferenceTheme     = "theme"
	PreferenceSort      = "sort"
	PreferenceTimestamp = "timestamp"
	PreferenceMode      = "mode"
)

// SettingsService loads and saves the viewer settings
type SettingsService struct {
	repository repository.SettingsRepository
	logger     logging.Logger
}

// NewSettingsService creates a settings service backed by repo
func NewSettingsService(repo repository.SettingsRepository, logger logging.Logger) *SettingsService {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &SettingsService{
		repository: repo,
		logger:     logger,
	}
}

// Load returns the stored settings. Missing or invalid values are replaced
// key by key with their defaults, so a partially written store still loads.
func (s *SettingsService) Load(ctx context.Context) (*types.AppSettings, error) {
	start := time.Now()
	settings := types.DefaultAppSettings()

	prefs, err := s.repository.GetPreferences(ctx)
	if err != nil {
		logging.LogError(s.logger, err, "load_settings", nil)
		return nil, err
	}
	settings.Preference = mergePreference(settings.Preference, prefs)

	history, err := s.repository.GetHistory(ctx)
	if err != nil {
		logging.LogError(s.logger, err, "load_settings", nil)
		return nil, err
	}
	for directory, fullPath := range history {
		settings.History[directory] = fullPath
	}

	state, err := s.repository.GetWindowState(ctx)
	switch {
	case errors.IsNotFound(err):
		// first run
	case err != nil:
		logging.LogError(s.logger, err, "load_settings", nil)
		return nil, err
	default:
		settings.Directory = state.Directory
		settings.FullPath = state.FullPath
		settings.IsMaximized = state.IsMaximized
		if state.Bounds.Width > 0 && state.Bounds.Height > 0 {
			settings.Bounds = state.Bounds
		}
	}

	logging.LogOperation(s.logger, "load_settings", time.Since(start), map[string]interface{}{
		"history_entries": len(settings.History),
	})
	return settings, nil
}

// Save writes preferences, window state and history in one transaction.
// History entries are merged into what is stored, never truncated, so
// entries written by another window survive.
func (s *SettingsService) Save(ctx context.Context, settings *types.AppSettings) error {
	if settings == nil {
		return errors.HandleValidationError("save_settings", "settings", "nil", "settings are required")
	}
	start := time.Now()

	pref := mergePreference(types.DefaultSettings(), map[string]string{
		PreferenceTheme:     settings.Preference.Theme,
		PreferenceSort:      settings.Preference.Sort,
		PreferenceTimestamp: settings.Preference.Timestamp,
		PreferenceMode:      settings.Preference.Mode,
	})

	history := make(map[string]string, len(settings.History))
	for directory, fullPath := range settings.History {
		if directory == "" {
			continue
		}
		history[directory] = fullPath
	}

	state := &types.WindowState{
		Directory:   settings.Directory,
		FullPath:    settings.FullPath,
		Bounds:      settings.Bounds,
		IsMaximized: settings.IsMaximized,
	}

	err := s.repository.WithTransaction(ctx, func(repo repository.SettingsRepository) error {
		if err := repo.SavePreferences(ctx, preferenceMap(pref)); err != nil {
			return err
		}
		if err := repo.SaveWindowState(ctx, state); err != nil {
			return err
		}
		if len(history) == 0 {
			return nil
		}
		return repo.UpsertHistory(ctx, history)
	})
	if err != nil {
		logging.LogError(s.logger, err, "save_settings", nil)
		return err
	}

	logging.LogOperation(s.logger, "save_settings", time.Since(start), map[string]interface{}{
		"history_entries": len(history),
	})
	return nil
}

// RemoveHistory forgets the last viewed file of directory. Removing an
// unknown directory is not an error.
func (s *SettingsService) RemoveHistory(ctx context.Context, directory string) error {
	if directory == "" {
		return errors.HandleValidationError("remove_history", "directory", directory, "directory cannot be empty")
	}
	err := s.repository.DeleteHistory(ctx, directory)
	if errors.IsNotFound(err) {
		s.logger.Debug("History entry already absent", "directory", directory)
		return nil
	}
	if err != nil {
		logging.LogError(s.logger, err, "remove_history", map[string]interface{}{"directory": directory})
		return err
	}
	s.logger.Info("History entry removed", "directory", directory)
	return nil
}

// mergePreference overlays every valid stored value onto base
func mergePreference(base types.Settings, stored map[string]string) types.Settings {
	if v, ok := stored[PreferenceTheme]; ok && isOption(types.ThemeOptions(), types.Theme(v)) {
		base.Theme = v
	}
	if v, ok := stored[PreferenceSort]; ok && isOption(types.SortOptions(), types.SortType(v)) {
		base.Sort = v
	}
	if v, ok := stored[PreferenceTimestamp]; ok && isOption(types.TimestampOptions(), types.Timestamp(v)) {
		base.Timestamp = v
	}
	if v, ok := stored[PreferenceMode]; ok && isOption(types.ModeOptions(), types.Mode(v)) {
		base.Mode = v
	}
	return base
}

func preferenceMap(pref types.Settings) map[string]string {
	return map[string]string{
		PreferenceTheme:     pref.Theme,
		PreferenceSort:      pref.Sort,
		PreferenceTimestamp: pref.Timestamp,
		PreferenceMode:      pref.Mode,
	}
}

func isOption[T comparable](options []T, value T) bool {
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}
