package database

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// parseBoolEnv reads an environment variable and parses it as a boolean.
// The second result reports whether the variable held a recognised value.
func parseBoolEnv(key string) (bool, bool) {
	value := os.Getenv(key)
	if value == "" {
		return false, false
	}

	if parsed, err := strconv.ParseBool(value); err == nil {
		return parsed, true
	}

	switch strings.ToLower(value) {
	case "yes", "y", "on":
		return true, true
	case "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}

// Config holds the settings database options
type Config struct {
	Path            string        `json:"path" yaml:"path"`
	MaxConnections  int           `json:"maxConnections" yaml:"max_connections"`
	MaxIdleConns    int           `json:"maxIdleConns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"conn_max_lifetime"`
	AutoMigrate     bool          `json:"autoMigrate" yaml:"auto_migrate"`

	JournalMode     string `json:"journalMode" yaml:"journal_mode"`         // DELETE, WAL, MEMORY, ...
	SynchronousMode string `json:"synchronousMode" yaml:"synchronous_mode"` // OFF, NORMAL, FULL, EXTRA
	BusyTimeout     int    `json:"busyTimeout" yaml:"busy_timeout"`         // milliseconds
	ForeignKeys     bool   `json:"foreignKeys" yaml:"foreign_keys"`

	Environment string `json:"environment" yaml:"environment"` // development, test, production
}

// DefaultConfig returns the production defaults
func DefaultConfig() *Config {
	return &Config{
		Path:            "picviewer.db",
		MaxConnections:  4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		AutoMigrate:     true,
		JournalMode:     "WAL",
		SynchronousMode: "NORMAL",
		BusyTimeout:     5000,
		ForeignKeys:     true,
		Environment:     "production",
	}
}

// DevelopmentConfig returns a configuration for local development
func DevelopmentConfig() *Config {
	config := DefaultConfig()
	config.Path = "picviewer_dev.db"
	config.Environment = "development"
	return config
}

// TestConfig returns an in-memory configuration for tests
func TestConfig() *Config {
	config := DefaultConfig()
	config.Path = ":memory:"
	config.Environment = "test"
	config.JournalMode = "MEMORY"
	config.SynchronousMode = "OFF"
	config.BusyTimeout = 1000
	return config
}

// ConfigForEnvironment returns the configuration of the given environment.
// Production keeps its database in the user config directory.
func ConfigForEnvironment(env string) *Config {
	switch env {
	case "development":
		return DevelopmentConfig()
	case "test":
		return TestConfig()
	default:
		config := DefaultConfig()
		if dir, err := os.UserConfigDir(); err == nil {
			config.Path = filepath.Join(dir, "picviewer", "picviewer.db")
		}
		return config
	}
}

// LoadFromEnvironment applies PICVIEWER_DB_* overrides
func (c *Config) LoadFromEnvironment() error {
	if path := os.Getenv("PICVIEWER_DB_PATH"); path != "" {
		c.Path = path
	}

	if maxConns := os.Getenv("PICVIEWER_DB_MAX_CONNECTIONS"); maxConns != "" {
		val, err := strconv.Atoi(maxConns)
		if err != nil || val <= 0 {
			return fmt.Errorf("invalid PICVIEWER_DB_MAX_CONNECTIONS %q", maxConns)
		}
		c.MaxConnections = val
	}

	if lifetime := os.Getenv("PICVIEWER_DB_CONN_MAX_LIFETIME"); lifetime != "" {
		val, err := time.ParseDuration(lifetime)
		if err != nil {
			return fmt.Errorf("invalid PICVIEWER_DB_CONN_MAX_LIFETIME %q: %w", lifetime, err)
		}
		c.ConnMaxLifetime = val
	}

	if autoMigrate, present := parseBoolEnv("PICVIEWER_DB_AUTO_MIGRATE"); present {
		c.AutoMigrate = autoMigrate
	}

	if journalMode := os.Getenv("PICVIEWER_DB_JOURNAL_MODE"); journalMode != "" {
		c.JournalMode = journalMode
	}

	if syncMode := os.Getenv("PICVIEWER_DB_SYNCHRONOUS_MODE"); syncMode != "" {
		c.SynchronousMode = syncMode
	}

	if busyTimeout := os.Getenv("PICVIEWER_DB_BUSY_TIMEOUT"); busyTimeout != "" {
		val, err := strconv.Atoi(busyTimeout)
		if err != nil || val < 0 {
			return fmt.Errorf("invalid PICVIEWER_DB_BUSY_TIMEOUT %q", busyTimeout)
		}
		c.BusyTimeout = val
	}

	if foreignKeys, present := parseBoolEnv("PICVIEWER_DB_FOREIGN_KEYS"); present {
		c.ForeignKeys = foreignKeys
	}

	return nil
}

// Validate validates the configuration and creates the database directory
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	if !c.IsInMemory() {
		dir := filepath.Dir(c.Path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	if c.MaxConnections <= 0 {
		return fmt.Errorf("maxConnections must be positive, got %d", c.MaxConnections)
	}
	if c.MaxIdleConns < 0 || c.MaxIdleConns > c.MaxConnections {
		return fmt.Errorf("maxIdleConns must be between 0 and %d, got %d", c.MaxConnections, c.MaxIdleConns)
	}
	if c.ConnMaxLifetime < 0 {
		return fmt.Errorf("connMaxLifetime cannot be negative, got %v", c.ConnMaxLifetime)
	}

	validJournalModes := []string{"DELETE", "TRUNCATE", "PERSIST", "MEMORY", "WAL", "OFF"}
	if !containsFold(validJournalModes, c.JournalMode) {
		return fmt.Errorf("invalid journalMode: %s", c.JournalMode)
	}
	if c.IsInMemory() && strings.EqualFold(c.JournalMode, "WAL") {
		return fmt.Errorf("journalMode cannot be WAL when using in-memory database")
	}

	validSyncModes := []string{"OFF", "NORMAL", "FULL", "EXTRA"}
	if !containsFold(validSyncModes, c.SynchronousMode) {
		return fmt.Errorf("invalid synchronousMode: %s", c.SynchronousMode)
	}

	if c.BusyTimeout < 0 {
		return fmt.Errorf("busyTimeout cannot be negative, got %d", c.BusyTimeout)
	}

	switch c.Environment {
	case "development", "test", "production":
	default:
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	return nil
}

func containsFold(values []string, value string) bool {
	for _, v := range values {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

// GetConnectionString builds the go-sqlite3 DSN with all pragmas
func (c *Config) GetConnectionString() string {
	values := url.Values{}
	if c.ForeignKeys {
		values.Set("_foreign_keys", "on")
	} else {
		values.Set("_foreign_keys", "off")
	}
	values.Set("_journal_mode", c.JournalMode)
	values.Set("_synchronous", c.SynchronousMode)
	values.Set("_busy_timeout", strconv.Itoa(c.BusyTimeout))

	path := c.Path
	if strings.ContainsAny(path, "?&") {
		path = strings.ReplaceAll(path, "?", "%3F")
		path = strings.ReplaceAll(path, "&", "%26")
	}

	return path + "?" + values.Encode()
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// IsInMemory returns true if the database is configured to use in-memory storage
func (c *Config) IsInMemory() bool {
	return c.Path == ":memory:"
}
