package database

import (
	"context"
	"database/sql"
)

// Service defines the settings database lifecycle
type Service interface {
	Connect(ctx context.Context, config *Config) error
	Close() error
	Health(ctx context.Context) error

	DB() *sql.DB
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error

	Migrate(ctx context.Context) error
	GetMigrationVersion(ctx context.Context) (int64, error)
}

// MigrationManager handles schema evolution
type MigrationManager interface {
	RunMigrations(ctx context.Context) error
	GetCurrentVersion(ctx context.Context) (int64, error)
	ValidateMigrations() error
}
