package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	dberrors "picviewer/internal/infrastructure/errors"
	"picviewer/internal/infrastructure/logging"
)

// SQLiteService implements Service for SQLite
//
// Lifecycle:
// 1. Create service with NewSQLiteService()
// 2. Connect to database with Connect()
// 3. Run migrations with Migrate()
// 4. Use DB() or WithTx() from repositories
// 5. Close service with Close()
type SQLiteService struct {
	mu              sync.RWMutex
	db              *sql.DB
	config          *Config
	migrationRunner MigrationManager
	logger          logging.Logger
}

var _ Service = (*SQLiteService)(nil)

// NewSQLiteService creates a new SQLite database service
func NewSQLiteService(logger logging.Logger) *SQLiteService {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &SQLiteService{logger: logger}
}

// Connect establishes a connection to the SQLite database, replacing any
// previous connection
func (s *SQLiteService) Connect(ctx context.Context, config *Config) error {
	if config == nil {
		return dberrors.HandleValidationError("Connect", "config", "nil", "configuration is required")
	}
	if err := config.Validate(); err != nil {
		return dberrors.HandleValidationError("Connect", "config", config.Path, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close existing database connection", "error", err)
		}
		s.db = nil
		s.migrationRunner = nil
	}

	db, err := sql.Open("sqlite3", config.GetConnectionString())
	if err != nil {
		return dberrors.HandleConnectionError("Connect", fmt.Sprintf("failed to open database: %v", err))
	}

	s.configureConnectionPool(db, config)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return dberrors.HandleConnectionError("Connect", fmt.Sprintf("failed to ping database: %v", err))
	}

	s.db = db
	s.config = config
	s.migrationRunner = NewMigrationRunner(db, s.logger)

	s.logger.Info("Connected to SQLite database", "path", config.Path)
	return nil
}

// Close closes the database connection
func (s *SQLiteService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return dberrors.HandleConnectionError("Close", fmt.Sprintf("failed to close database: %v", err))
	}
	s.db = nil
	s.migrationRunner = nil

	s.logger.Info("Closed SQLite database connection")
	return nil
}

// Migrate runs the embedded migrations
func (s *SQLiteService) Migrate(ctx context.Context) error {
	s.mu.RLock()
	db, runner := s.db, s.migrationRunner
	s.mu.RUnlock()

	if db == nil {
		return dberrors.HandleConnectionError("Migrate", "database not connected")
	}
	if runner == nil {
		return dberrors.HandleValidationError("Migrate", "migrationRunner", "nil", "migration runner not initialized")
	}

	if err := runner.ValidateMigrations(); err != nil {
		return dberrors.WrapDatabaseErrorWithContext("Migrate", err, map[string]string{"phase": "validation"})
	}
	if err := runner.RunMigrations(ctx); err != nil {
		return dberrors.WrapDatabaseErrorWithContext("Migrate", err, map[string]string{"phase": "execution"})
	}
	return nil
}

// Health checks the database connection
func (s *SQLiteService) Health(ctx context.Context) error {
	db := s.DB()
	if db == nil {
		return dberrors.HandleConnectionError("Health", "database not connected")
	}

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return dberrors.WrapDatabaseErrorWithContext("Health", err, map[string]string{"phase": "query"})
	}
	if result != 1 {
		return dberrors.HandleValidationError("Health", "query_result", fmt.Sprintf("%d", result), "expected result 1")
	}
	return nil
}

// DB returns the underlying connection pool
func (s *SQLiteService) DB() *sql.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

// WithTx runs fn in a transaction, committing when fn returns nil
func (s *SQLiteService) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	db := s.DB()
	if db == nil {
		return dberrors.HandleConnectionError("WithTx", "database not connected")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return dberrors.NewRepositoryError("WithTx", err, dberrors.ErrCodeTransaction)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("Failed to rollback transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return dberrors.WrapDatabaseErrorWithContext("WithTx", err, map[string]string{"phase": "commit"})
	}
	return nil
}

// GetMigrationVersion returns the current migration version
func (s *SQLiteService) GetMigrationVersion(ctx context.Context) (int64, error) {
	s.mu.RLock()
	db, runner := s.db, s.migrationRunner
	s.mu.RUnlock()

	if db == nil {
		return 0, dberrors.HandleConnectionError("GetMigrationVersion", "database not connected")
	}
	if runner == nil {
		return 0, dberrors.HandleValidationError("GetMigrationVersion", "migrationRunner", "nil", "migration runner not initialized")
	}

	version, err := runner.GetCurrentVersion(ctx)
	if err != nil {
		return 0, dberrors.WrapDatabaseError("GetMigrationVersion", err)
	}
	return version, nil
}

// configureConnectionPool sizes the pool for SQLite. In-memory and non-WAL
// databases use a single connection; WAL allows a few readers.
func (s *SQLiteService) configureConnectionPool(db *sql.DB, config *Config) {
	if config.IsInMemory() {
		// the database lives as long as its only connection
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return
	}

	if !strings.EqualFold(config.JournalMode, "WAL") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		s.logger.Debug("Configured SQLite for single connection mode", "journalMode", config.JournalMode)
	} else {
		maxConns := min(max(config.MaxConnections, 1), 4)
		idleConns := max(min(config.MaxIdleConns, maxConns), 1)
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(idleConns)
		s.logger.Debug("Configured SQLite connection pool", "maxOpenConns", maxConns, "maxIdleConns", idleConns)
	}

	db.SetConnMaxLifetime(config.ConnMaxLifetime)
}
