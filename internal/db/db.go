// Package db owns the SQLite file behind the default state backend.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// FileName is the database file created inside the base directory.
const FileName = "tails.db"

// migrations[i] moves the schema from user_version i to i+1.
var migrations = []string{
	// 1: key/value state per workspace scope
	`
	CREATE TABLE IF NOT EXISTS state (
	  scope      TEXT NOT NULL,
	  key        TEXT NOT NULL,
	  value      BLOB NOT NULL,
	  updated_at INTEGER NOT NULL,
	  PRIMARY KEY (scope, key)
	);

	CREATE INDEX IF NOT EXISTS idx_state_updated
	ON state(updated_at DESC);
	`,
}

// CurrentSchemaVersion is the user_version after all migrations ran.
var CurrentSchemaVersion = len(migrations)

// Init opens baseDir/tails.db, creating baseDir and its exports directory
// with owner-only permissions, and migrates the schema.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.tails.
func Init(baseDir string) (*sql.DB, error) {
	if err := privateDir(baseDir); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	if err := privateDir(filepath.Join(baseDir, "exports")); err != nil {
		return nil, fmt.Errorf("failed to create exports directory: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection
	dbPath := filepath.Join(baseDir, FileName)
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// The file exists only after the first statement ran (best-effort)
	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// privateDir creates dir with mode 0700. The chmod is best-effort because
// MkdirAll leaves an existing directory's mode alone.
func privateDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	_ = os.Chmod(dir, 0700)
	return nil
}

// migrate applies every migration past the stored user_version, each in
// its own transaction.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	for v := version; v < len(migrations); v++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migration %d failed: %w", v+1, err)
		}
		if _, err := tx.Exec(migrations[v]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", v+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version=%d", v+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d failed: %w", v+1, err)
		}
	}
	return nil
}

func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
