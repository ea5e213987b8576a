// Package database provides the SQLite connection and schema.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the sql.DB connection with additional functionality.
type DB struct {
	*sql.DB
}

// New creates a new database connection at the specified path.
// It creates the parent directory if it doesn't exist.
func New(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// julianday() only understands the sqlite time layout
	sqlDB, err := sql.Open("sqlite", dbPath+"?_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &DB{DB: sqlDB}, nil
}

// RunMigrations executes all database migrations.
// Migrations are idempotent and can be run multiple times safely.
func (db *DB) RunMigrations() error {
	migrations := []string{
		migrationEquities,
		migrationBullion,
		migrationCash,
		migrationAPI,
		migrationPreferences,
		migrationViews,
		migrationSymbolNames,
		migrationSymbolMeta,
		migrationFetchHistory,
		migrationIndexes,
		migrationDefaults,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	alterMigrations := []string{
		migrationAddEquityCreatedAt,
	}
	for _, migration := range alterMigrations {
		// Ignore "duplicate column" errors for idempotency
		db.Exec(migration)
	}

	return nil
}

// InTx runs fn inside a transaction, rolling back when fn fails.
func (db *DB) InTx(fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
