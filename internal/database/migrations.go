package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"

	"picviewer/internal/infrastructure/logging"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// goose.SetDialect and goose.SetBaseFS modify package state, so they are
// configured once for every runner.
var (
	gooseConfigOnce sync.Once
	gooseConfigErr  error
)

// MigrationRunner applies the embedded migrations
type MigrationRunner struct {
	db     *sql.DB
	logger logging.Logger
}

var _ MigrationManager = (*MigrationRunner)(nil)

// NewMigrationRunner creates a new migration runner
func NewMigrationRunner(db *sql.DB, logger logging.Logger) *MigrationRunner {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	gooseConfigOnce.Do(func() {
		gooseConfigErr = configureGoose()
	})

	return &MigrationRunner{db: db, logger: logger}
}

func configureGoose() error {
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	return nil
}

// RunMigrations executes all pending migrations
func (mr *MigrationRunner) RunMigrations(ctx context.Context) error {
	if mr.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	if gooseConfigErr != nil {
		return fmt.Errorf("goose configuration failed: %w", gooseConfigErr)
	}

	if err := goose.UpContext(ctx, mr.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if version, err := goose.GetDBVersionContext(ctx, mr.db); err == nil {
		mr.logger.Info("Database migrated to version", "version", version)
	}
	return nil
}

// GetCurrentVersion returns the current migration version
func (mr *MigrationRunner) GetCurrentVersion(ctx context.Context) (int64, error) {
	if mr.db == nil {
		return 0, fmt.Errorf("database connection is nil")
	}
	if gooseConfigErr != nil {
		return 0, fmt.Errorf("goose configuration failed: %w", gooseConfigErr)
	}

	version, err := goose.GetDBVersionContext(ctx, mr.db)
	if err != nil {
		return 0, fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

// ValidateMigrations checks that the embedded migrations can be collected
func (mr *MigrationRunner) ValidateMigrations() error {
	if gooseConfigErr != nil {
		return fmt.Errorf("goose configuration failed: %w", gooseConfigErr)
	}

	migrations, err := goose.CollectMigrations("migrations", 0, goose.MaxVersion)
	if err != nil {
		return fmt.Errorf("failed to collect migrations: %w", err)
	}
	if len(migrations) == 0 {
		return fmt.Errorf("no migrations found in embedded filesystem")
	}

	mr.logger.Debug("Found embedded migrations", "count", len(migrations))
	return nil
}
