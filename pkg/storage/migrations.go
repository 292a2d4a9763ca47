package storage

import (
	"database/sql"
	"fmt"
)

var migrations = []string{
	// Migration 1: cells and run history
	`CREATE TABLE IF NOT EXISTS cells (
		sheet_id   TEXT NOT NULL,
		tab        TEXT NOT NULL DEFAULT '',
		address    TEXT NOT NULL,
		value      TEXT NOT NULL,
		kind       TEXT NOT NULL CHECK(kind IN ('number', 'text', 'bool')),
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (sheet_id, tab, address)
	);

	CREATE TABLE IF NOT EXISTS runs (
		id             TEXT PRIMARY KEY,
		army           TEXT NOT NULL,
		ran_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		status         TEXT NOT NULL CHECK(status IN ('ok', 'error', 'dry_run', 'skipped')),
		previous       TEXT NOT NULL DEFAULT '0',
		new            TEXT NOT NULL DEFAULT '0',
		consumed       TEXT NOT NULL DEFAULT '0',
		days_remaining INTEGER NOT NULL DEFAULT 0,
		tier           TEXT NOT NULL DEFAULT '',
		variant        TEXT NOT NULL DEFAULT '',
		resting        INTEGER NOT NULL DEFAULT 0,
		over_capacity  INTEGER NOT NULL DEFAULT 0,
		persisted      INTEGER NOT NULL DEFAULT 0,
		notified       INTEGER NOT NULL DEFAULT 0,
		error          TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_runs_army ON runs(army);
	CREATE INDEX IF NOT EXISTS idx_runs_ran_at ON runs(ran_at);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);

	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
}

// runMigrations applies pending schema migrations.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create migration table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("check migration version: %w", err)
	}

	for i := currentVersion; i < len(migrations); i++ {
		if err := applyMigration(db, i+1, migrations[i]); err != nil {
			return err
		}
	}
	return nil
}

func applyMigration(db *sql.DB, version int, stmt string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", version, err)
	}
	if _, err := tx.Exec(stmt); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("run migration %d: %w", version, err)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %d: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", version, err)
	}
	return nil
}
