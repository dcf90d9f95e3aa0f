package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"picviewer/internal/database"
	"picviewer/internal/infrastructure/logging"
	"picviewer/internal/menu"
)

// Env var names used as overrides
const (
	EnvEnvironment     = "PICVIEWER_ENV"
	EnvConfigFile      = "PICVIEWER_CONFIG"
	EnvLogLevel        = "PICVIEWER_LOG_LEVEL"
	EnvLogFile         = "PICVIEWER_LOG_FILE"
	EnvLogMaxSizeMB    = "PICVIEWER_LOG_MAX_SIZE_MB"
	EnvLogMaxBackups   = "PICVIEWER_LOG_MAX_BACKUPS"
	EnvBroadcastBudget = "PICVIEWER_MENU_BROADCAST_BUDGET"
	EnvPopupTimeout    = "PICVIEWER_MENU_POPUP_TIMEOUT"
	EnvWindowTitle     = "PICVIEWER_WINDOW_TITLE"
)

type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"` // empty logs to stderr
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

type MenuConfig struct {
	BroadcastBudget time.Duration `yaml:"broadcast_budget"`
	PopupTimeout    time.Duration `yaml:"popup_timeout"` // zero waits until the user answers
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Config is the application configuration. It is read from an optional
// YAML file and then overridden by PICVIEWER_* environment variables.
type Config struct {
	Environment string           `yaml:"environment"`
	Logging     LoggingConfig    `yaml:"logging"`
	Database    *database.Config `yaml:"database"`
	Menu        MenuConfig       `yaml:"menu"`
	Window      WindowConfig     `yaml:"window"`
}

// Defaults returns the defaults of the given environment
func Defaults(env string) *Config {
	if env == "" {
		env = "production"
	}
	return &Config{
		Environment: env,
		Logging:     LoggingConfig{Level: "info", MaxSizeMB: 10, MaxBackups: 3},
		Database:    database.ConfigForEnvironment(env),
		Menu:        MenuConfig{BroadcastBudget: menu.DefaultSweepBudget},
		Window:      WindowConfig{Title: "picviewer", Width: 1200, Height: 800},
	}
}

// DefaultPath returns the config file location in the user config directory
func DefaultPath() string {
	if path := os.Getenv(EnvConfigFile); path != "" {
		return path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "picviewer", "config.yaml")
}

// Load reads the configuration. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults(os.Getenv(EnvEnvironment))

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.LoadFromEnvironment(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnvironment applies PICVIEWER_* overrides, including the
// database ones
func (c *Config) LoadFromEnvironment() error {
	if env := os.Getenv(EnvEnvironment); env != "" {
		c.Environment = env
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
	if file := os.Getenv(EnvLogFile); file != "" {
		c.Logging.File = file
	}
	if err := envInt(EnvLogMaxSizeMB, &c.Logging.MaxSizeMB); err != nil {
		return err
	}
	if err := envInt(EnvLogMaxBackups, &c.Logging.MaxBackups); err != nil {
		return err
	}
	if err := envDuration(EnvBroadcastBudget, &c.Menu.BroadcastBudget); err != nil {
		return err
	}
	if err := envDuration(EnvPopupTimeout, &c.Menu.PopupTimeout); err != nil {
		return err
	}
	if title := os.Getenv(EnvWindowTitle); title != "" {
		c.Window.Title = title
	}

	if c.Database == nil {
		c.Database = database.ConfigForEnvironment(c.Environment)
	}
	return c.Database.LoadFromEnvironment()
}

// Validate checks the configuration
func (c *Config) Validate() error {
	switch c.Environment {
	case "development", "test", "production":
	default:
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB <= 0 {
		return fmt.Errorf("logging.max_size_mb must be positive, got %d", c.Logging.MaxSizeMB)
	}
	if c.Logging.MaxBackups < 0 {
		return fmt.Errorf("logging.max_backups cannot be negative, got %d", c.Logging.MaxBackups)
	}

	if c.Menu.BroadcastBudget <= 0 {
		return fmt.Errorf("menu.broadcast_budget must be positive, got %v", c.Menu.BroadcastBudget)
	}
	if c.Menu.PopupTimeout < 0 {
		return fmt.Errorf("menu.popup_timeout cannot be negative, got %v", c.Menu.PopupTimeout)
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}

	if c.Database == nil {
		return fmt.Errorf("database configuration is required")
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	return nil
}

// MenuOptions converts the menu section for menu.NewManager
func (c *Config) MenuOptions() menu.Options {
	return menu.Options{
		BroadcastBudget: c.Menu.BroadcastBudget,
		PopupTimeout:    c.Menu.PopupTimeout,
	}
}

// FileLogging returns the rotating file options, or false when logging to
// stderr
func (c *Config) FileLogging() (logging.FileOptions, bool) {
	if c.Logging.File == "" {
		return logging.FileOptions{}, false
	}
	return logging.FileOptions{
		Path:       c.Logging.File,
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
		Level:      c.Logging.Level,
	}, true
}

func envInt(key string, dst *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = parsed
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = parsed
	return nil
}
