package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"picviewer/internal/config"
	"picviewer/internal/database"
	"picviewer/internal/infrastructure/errors"
	"picviewer/internal/infrastructure/logging"
	"picviewer/internal/menu"
	"picviewer/internal/platform"
	"picviewer/internal/repository"
	"picviewer/internal/services"
	"picviewer/internal/types"
	"picviewer/internal/webview"
)

const (
	healthCheckTimeout = 5 * time.Second
	migrateTimeout     = 30 * time.Second
	shutdownTimeout    = 10 * time.Second
)

// Option overrides one of the runtime collaborators of App
type Option func(*App)

// WithEvents sets the event bus used to talk to window pages
func WithEvents(events webview.Events) Option {
	return func(a *App) { a.events = events }
}

// WithChrome sets the window frame styler
func WithChrome(chrome webview.Chrome) Option {
	return func(a *App) { a.chrome = chrome }
}

// WithResolver sets the native handle resolver
func WithResolver(resolver platform.HandleResolver) Option {
	return func(a *App) { a.resolver = resolver }
}

// App is the object bound to the frontend
type App struct {
	ctx    context.Context
	cfg    *config.Config
	logger logging.Logger
	args   []string

	events   webview.Events
	chrome   webview.Chrome
	resolver platform.HandleResolver
	windows  *webview.Windows
	main     *webview.Window
	manager  *menu.Manager

	mu        sync.RWMutex
	dbService database.Service
	settings  *services.SettingsService
}

// NewApp creates the application. args are the paths the viewer was
// launched with.
func NewApp(cfg *config.Config, logger logging.Logger, args []string, opts ...Option) *App {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if cfg == nil {
		cfg = config.Defaults("")
	}

	a := &App{
		cfg:      cfg,
		logger:   logger,
		args:     append([]string(nil), args...),
		events:   webview.RuntimeEvents{},
		chrome:   webview.RuntimeChrome{},
		resolver: platform.NewHandleResolver(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.windows = webview.NewWindows(a.events)
	a.main = webview.NewWindow(types.MainWindow, cfg.Window.Title)
	a.windows.Add(a.main)

	toolkit := webview.NewToolkit(a.windows, webview.DefaultAppearance(), logger)
	a.manager = menu.NewManager(toolkit, a.resolver, a.windows, logger, cfg.MenuOptions())
	return a
}

// Startup is called at application startup
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	a.main.Attach(ctx)
	errors.UseLogger(a.logger)

	if err := a.initializeDatabase(ctx); err != nil {
		logging.LogError(a.logger, err, "startup", nil)
		a.logger.Warn("Continuing without settings persistence")
	}

	a.logger.Info("Application started", "environment", a.cfg.Environment, "args", len(a.args))
}

// initializeDatabase connects the settings store and runs migrations
func (a *App) initializeDatabase(ctx context.Context) error {
	dbService := database.NewSQLiteService(a.logger)
	if err := dbService.Connect(ctx, a.cfg.Database); err != nil {
		return err
	}

	healthCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	if err := dbService.Health(healthCtx); err != nil {
		dbService.Close()
		return errors.NewRepositoryErrorWithContext("startup", err, errors.ClassifyError(err),
			map[string]string{"operation": "health_check"})
	}

	if a.cfg.Database.AutoMigrate {
		migrateCtx, cancel := context.WithTimeout(ctx, migrateTimeout)
		defer cancel()
		if err := dbService.Migrate(migrateCtx); err != nil {
			dbService.Close()
			return errors.NewRepositoryErrorWithContext("startup", err, errors.ErrCodeConnection,
				map[string]string{"operation": "migrate", "db_path": a.cfg.Database.Path})
		}
	}

	repo := repository.NewSQLiteRepository(dbService, a.logger)

	a.mu.Lock()
	a.dbService = dbService
	a.settings = services.NewSettingsService(repo, a.logger)
	a.mu.Unlock()
	return nil
}

// DomReady is called after front-end resources have been loaded. The page
// prepares its menu once it sees the backend-ready event.
func (a *App) DomReady(ctx context.Context) {
	if err := a.main.MarkRealized(); err != nil {
		a.logger.Error("Failed to realize window", "window", types.MainWindow, "error", err)
		return
	}
	if err := a.windows.Emit(types.MainWindow, webview.BackendReadyEvent); err != nil {
		a.logger.Error("Failed to announce backend", "window", types.MainWindow, "error", err)
		return
	}
	a.logger.Debug("Backend ready", "window", types.MainWindow)
}

// BeforeClose is called when the application is about to quit
func (a *App) BeforeClose(ctx context.Context) (prevent bool) {
	return false
}

// Shutdown is called at application termination
func (a *App) Shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := a.closeDatabaseConnection(shutdownCtx); err != nil {
		logging.LogError(a.logger, err, "shutdown", nil)
	}
	a.logger.Info("Application shutdown completed")
}

// closeDatabaseConnection closes the settings store, giving up when ctx ends
func (a *App) closeDatabaseConnection(ctx context.Context) error {
	a.mu.Lock()
	dbService := a.dbService
	a.dbService = nil
	a.settings = nil
	a.mu.Unlock()

	if dbService == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- dbService.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return errors.NewRepositoryErrorWithContext("shutdown", err, errors.ClassifyError(err),
				map[string]string{"operation": "close_connection"})
		}
		return nil
	case <-ctx.Done():
		return errors.NewRepositoryError("shutdown", ctx.Err(), errors.ErrCodeTimeout)
	}
}

// PrepareWindows applies the theme to the window frame and (re)builds the
// window's context menu from settings
func (a *App) PrepareWindows(settings types.Settings) (bool, error) {
	if err := a.prepareMenu(types.MainWindow, settings); err != nil {
		return false, err
	}
	return true, nil
}

func (a *App) prepareMenu(label types.WindowID, settings types.Settings) error {
	w, ok := a.windows.Get(label)
	if !ok {
		return errors.HandleUnavailable("prepare_menu", string(label), fmt.Errorf("unknown window"))
	}
	if ctx, ok := w.Context(); ok {
		a.chrome.SetTheme(ctx, types.ParsePreparedTheme(settings.Theme))
	}
	return a.manager.Prepare(w, settings)
}

// OpenContextMenu shows the context menu at pos. Failures are logged and
// never surfaced to the page.
func (a *App) OpenContextMenu(pos types.Position) {
	a.openContextMenu(a.context(), types.MainWindow, pos)
}

func (a *App) openContextMenu(ctx context.Context, label types.WindowID, pos types.Position) types.SelectionResult {
	result, err := a.manager.Open(ctx, label, pos)
	if err != nil {
		logging.LogError(a.logger, err, "open_context_menu", map[string]interface{}{"window": string(label)})
	}
	return result
}

// ChangeTheme restyles every window and every menu not currently showing.
// Any payload other than "dark" selects the light theme.
func (a *App) ChangeTheme(payload string) {
	theme := types.ParseChangedTheme(payload)
	for _, label := range a.windows.Labels() {
		w, _ := a.windows.Get(label)
		if ctx, ok := w.Context(); ok {
			a.chrome.SetTheme(ctx, theme)
		}
	}
	result := a.manager.ChangeTheme(theme)
	a.logger.Debug("Theme changed", "theme", theme, "menus", len(result.Applied), "skipped", len(result.Skipped))
}

// GetInitArgs returns the command-line arguments the viewer was launched with
func (a *App) GetInitArgs() []string {
	return append([]string(nil), a.args...)
}

// GetSettings returns the stored settings, or the defaults when the store is
// unavailable
func (a *App) GetSettings() (*types.AppSettings, error) {
	service := a.settingsService()
	if service == nil {
		a.logger.Warn("Settings store unavailable, using defaults")
		return types.DefaultAppSettings(), nil
	}
	return service.Load(a.context())
}

// SaveSettings persists settings
func (a *App) SaveSettings(settings *types.AppSettings) error {
	service := a.settingsService()
	if service == nil {
		return errors.HandleConnectionError("save_settings", "settings store unavailable")
	}
	return service.Save(a.context(), settings)
}

// RemoveHistory forgets the last viewed file of directory
func (a *App) RemoveHistory(directory string) error {
	service := a.settingsService()
	if service == nil {
		return errors.HandleConnectionError("remove_history", "settings store unavailable")
	}
	return service.RemoveHistory(a.context(), directory)
}

func (a *App) settingsService() *services.SettingsService {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

func (a *App) context() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}
