package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"picviewer/internal/database"
	repoerrors "picviewer/internal/infrastructure/errors"
	"picviewer/internal/infrastructure/logging"
	"picviewer/internal/types"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const (
	selectPreferences = `SELECT key, value FROM preferences`
	upsertPreference  = `INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	selectHistory = `SELECT directory, full_path FROM history`
	upsertHistory = `INSERT INTO history (directory, full_path, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(directory) DO UPDATE SET full_path = excluded.full_path, updated_at = excluded.updated_at`
	deleteHistory = `DELETE FROM history WHERE directory = ?`

	selectWindowState = `SELECT directory, full_path, width, height, x, y, is_maximized FROM window_state WHERE id = 1`
	upsertWindowState = `INSERT INTO window_state (id, directory, full_path, width, height, x, y, is_maximized, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET directory = excluded.directory, full_path = excluded.full_path,
			width = excluded.width, height = excluded.height, x = excluded.x, y = excluded.y,
			is_maximized = excluded.is_maximized, updated_at = excluded.updated_at`
)

// SQLiteRepository implements SettingsRepository using SQLite
type SQLiteRepository struct {
	db          *sql.DB
	q           dbtx
	inTx        bool
	retryConfig *repoerrors.RetryConfig
	logger      logging.Logger
}

var _ SettingsRepository = (*SQLiteRepository)(nil)

// NewSQLiteRepository creates a new SQLite repository instance
func NewSQLiteRepository(dbService database.Service, logger logging.Logger) *SQLiteRepository {
	return NewSQLiteRepositoryWithConfig(dbService, nil, logger)
}

// NewSQLiteRepositoryWithConfig creates a repository with a custom retry configuration
func NewSQLiteRepositoryWithConfig(dbService database.Service, retryConfig *repoerrors.RetryConfig, logger logging.Logger) *SQLiteRepository {
	if retryConfig == nil {
		retryConfig = repoerrors.DefaultRetryConfig()
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	repo := &SQLiteRepository{
		db:          dbService.DB(),
		retryConfig: retryConfig,
		logger:      logger,
	}
	if repo.db != nil {
		repo.q = repo.db
	}
	return repo
}

// run executes op with retries unless the repository is bound to a
// transaction, which is retried as a whole instead
func (r *SQLiteRepository) run(ctx context.Context, name string, op func() error) error {
	if r.q == nil {
		return repoerrors.HandleConnectionError(name, "database not connected")
	}
	if r.inTx {
		return op()
	}
	return repoerrors.WithRetryContext(ctx, r.retryConfig, op, name)
}

// GetPreferences returns every stored preference
func (r *SQLiteRepository) GetPreferences(ctx context.Context) (map[string]string, error) {
	var prefs map[string]string
	err := r.run(ctx, "GetPreferences", func() error {
		var err error
		prefs, err = r.queryPairs(ctx, "GetPreferences", selectPreferences)
		return err
	})
	return prefs, err
}

// SavePreferences upserts the given preferences, leaving other keys untouched
func (r *SQLiteRepository) SavePreferences(ctx context.Context, prefs map[string]string) error {
	for key := range prefs {
		if key == "" {
			return repoerrors.HandleValidationError("SavePreferences", "key", key, "preference key cannot be empty")
		}
	}
	return r.run(ctx, "SavePreferences", func() error {
		return r.execPairs(ctx, "SavePreferences", upsertPreference, prefs)
	})
}

// GetHistory returns the last viewed file of every directory
func (r *SQLiteRepository) GetHistory(ctx context.Context) (map[string]string, error) {
	var history map[string]string
	err := r.run(ctx, "GetHistory", func() error {
		var err error
		history, err = r.queryPairs(ctx, "GetHistory", selectHistory)
		return err
	})
	return history, err
}

// UpsertHistory merges entries into the stored history
func (r *SQLiteRepository) UpsertHistory(ctx context.Context, entries map[string]string) error {
	for directory := range entries {
		if directory == "" {
			return repoerrors.HandleValidationError("UpsertHistory", "directory", directory, "directory cannot be empty")
		}
	}
	return r.run(ctx, "UpsertHistory", func() error {
		return r.execPairs(ctx, "UpsertHistory", upsertHistory, entries)
	})
}

// DeleteHistory removes the history entry of a directory
func (r *SQLiteRepository) DeleteHistory(ctx context.Context, directory string) error {
	return r.run(ctx, "DeleteHistory", func() error {
		result, err := r.q.ExecContext(ctx, deleteHistory, directory)
		if err != nil {
			return repoerrors.WrapDatabaseErrorWithContext("DeleteHistory", err, map[string]string{"directory": directory})
		}
		if affected, err := result.RowsAffected(); err == nil && affected == 0 {
			return repoerrors.HandleNotFound("DeleteHistory", "history", directory)
		}
		return nil
	})
}

// GetWindowState returns the saved window state
func (r *SQLiteRepository) GetWindowState(ctx context.Context) (*types.WindowState, error) {
	var state *types.WindowState
	err := r.run(ctx, "GetWindowState", func() error {
		var s types.WindowState
		var maximized int
		err := r.q.QueryRowContext(ctx, selectWindowState).Scan(
			&s.Directory, &s.FullPath,
			&s.Bounds.Width, &s.Bounds.Height, &s.Bounds.X, &s.Bounds.Y,
			&maximized,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return repoerrors.HandleNotFound("GetWindowState", "window_state", "1")
		}
		if err != nil {
			return repoerrors.WrapDatabaseError("GetWindowState", err)
		}
		s.IsMaximized = maximized != 0
		state = &s
		return nil
	})
	return state, err
}

// SaveWindowState stores the window state
func (r *SQLiteRepository) SaveWindowState(ctx context.Context, state *types.WindowState) error {
	if state == nil {
		return repoerrors.HandleValidationError("SaveWindowState", "state", "nil", "window state is required")
	}
	if state.Bounds.Width < 0 || state.Bounds.Height < 0 {
		return repoerrors.HandleValidationError("SaveWindowState", "bounds", "negative", "width and height cannot be negative")
	}
	return r.run(ctx, "SaveWindowState", func() error {
		maximized := 0
		if state.IsMaximized {
			maximized = 1
		}
		_, err := r.q.ExecContext(ctx, upsertWindowState,
			state.Directory, state.FullPath,
			state.Bounds.Width, state.Bounds.Height, state.Bounds.X, state.Bounds.Y,
			maximized,
		)
		if err != nil {
			return repoerrors.WrapDatabaseError("SaveWindowState", err)
		}
		return nil
	})
}

// WithTransaction runs fn against a repository bound to one transaction.
// The whole transaction is retried on retryable errors.
func (r *SQLiteRepository) WithTransaction(ctx context.Context, fn func(repo SettingsRepository) error) error {
	if r.inTx {
		return fn(r)
	}
	if r.db == nil {
		return repoerrors.HandleConnectionError("WithTransaction", "database not connected")
	}
	start := time.Now()

	err := repoerrors.WithRetryContext(ctx, r.retryConfig, func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return repoerrors.NewRepositoryError("WithTransaction.Begin", err, repoerrors.ClassifyError(err))
		}

		txRepo := &SQLiteRepository{
			db:          r.db,
			q:           tx,
			inTx:        true,
			retryConfig: r.retryConfig,
			logger:      r.logger,
		}

		if err := fn(txRepo); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.logger.Debug("Failed to rollback transaction", "rollback_error", rbErr, "original_error", err)
			}
			return err
		}

		if err := tx.Commit(); err != nil {
			return repoerrors.NewRepositoryError("WithTransaction.Commit", err, repoerrors.ErrCodeTransaction)
		}
		return nil
	}, "WithTransaction")

	if err != nil {
		logging.LogError(r.logger, err, "WithTransaction", nil)
		return err
	}
	logging.LogOperation(r.logger, "WithTransaction", time.Since(start), nil)
	return nil
}

func (r *SQLiteRepository) queryPairs(ctx context.Context, op, query string) (map[string]string, error) {
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, repoerrors.WrapDatabaseError(op, err)
	}
	defer rows.Close()

	pairs := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, repoerrors.WrapDatabaseError(op, err)
		}
		pairs[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, repoerrors.WrapDatabaseError(op, err)
	}
	return pairs, nil
}

func (r *SQLiteRepository) execPairs(ctx context.Context, op, stmt string, pairs map[string]string) error {
	for key, value := range pairs {
		if _, err := r.q.ExecContext(ctx, stmt, key, value); err != nil {
			return repoerrors.WrapDatabaseErrorWithContext(op, err, map[string]string{"key": key})
		}
	}
	return nil
}
