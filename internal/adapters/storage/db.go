package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// DSN returns the modernc sqlite DSN for path with WAL, busy timeout and foreign keys on.
func DSN(path string) string {
	if path == ":memory:" {
		return path
	}
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
}

// migration is one forward-only schema step. Version N is applied by migrations[N-1].
type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "baseline",
		sql: `
		CREATE TABLE IF NOT EXISTS blackout (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL DEFAULT '',
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL
		);`,
	},
	{
		name: "blackout_range_index",
		sql: `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_blackout_range ON blackout (start_date, end_date);`,
	},
}

// LatestSchemaVersion is the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return len(migrations)
}

// SchemaVersion returns the applied schema version, 0 for an untracked database.
// PRE: db is a valid database connection
// POST: schema_version is not created
func SchemaVersion(db *sql.DB) (int, error) {
	var n int
	err := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect schema: %w", err)
	}
	if n == 0 {
		return 0, nil
	}
	var v sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB applies every pending migration, each in its own transaction.
// When an existing on-disk database is about to change, a copy is written to
// <dbPath>.bak-v<version> first.
// PRE: db is a valid database connection
// POST: SchemaVersion(db) == LatestSchemaVersion()
func MigrateDB(db *sql.DB, dbPath string) error {
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if current >= LatestSchemaVersion() {
		return nil
	}

	if current > 0 && isFileDB(dbPath) {
		backup := fmt.Sprintf("%s.bak-v%d", dbPath, current)
		_ = os.Remove(backup)
		if _, err := db.Exec("VACUUM INTO ?", backup); err != nil {
			return fmt.Errorf("failed to back up database before migration: %w", err)
		}
		slog.Info("db_backup_written", "path", backup, "version", current)
	}

	for v := current + 1; v <= LatestSchemaVersion(); v++ {
		m := migrations[v-1]
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: begin: %w", v, err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", v, m.name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version, name) VALUES (?, ?)", v, m.name); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: record version: %w", v, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: commit: %w", v, err)
		}
		slog.Info("db_migrated", "version", v, "name", m.name)
	}
	return nil
}

func isFileDB(path string) bool {
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file::memory:") {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
