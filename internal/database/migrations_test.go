package database

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrationRunner_NilDB(t *testing.T) {
	runner := NewMigrationRunner(nil, nil)
	ctx := context.Background()

	if err := runner.RunMigrations(ctx); err == nil || err.Error() != "database connection is nil" {
		t.Errorf("Unexpected error %v", err)
	}
	if _, err := runner.GetCurrentVersion(ctx); err == nil {
		t.Error("Expected error for nil database")
	}
}

func TestMigrationRunner_ValidateMigrations(t *testing.T) {
	runner := NewMigrationRunner(nil, nil)
	if err := runner.ValidateMigrations(); err != nil {
		t.Errorf("ValidateMigrations() error = %v", err)
	}
}

func TestMigrationRunner_CancelledContext(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewMigrationRunner(db, nil).RunMigrations(ctx); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
