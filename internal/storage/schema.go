// Package storage persists extraction runs in SQLite so programs can be
// compared across edits and reloaded without re-running the compiler.
package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is written to store_metadata by CreateSchema.
const SchemaVersion = "1.0"

// CreateSchema creates all tables and indexes in one transaction.
// Must be called with SQLite PRAGMA foreign_keys = ON.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	tables := []struct {
		name string
		ddl  string
	}{
		{"runs", createRunsTable},
		{"items", createItemsTable},
		{"fields", createFieldsTable},
		{"store_metadata", createMetadataTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO store_metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)`,
		SchemaVersion, now,
	); err != nil {
		return fmt.Errorf("failed to bootstrap store_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// GetSchemaVersion returns the stored schema version, or "0" for a database
// that has never been initialised.
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='store_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check store_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM store_metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in store_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	file_path TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	item_count INTEGER NOT NULL,
	extracted_at TEXT NOT NULL
)`

const createItemsTable = `
CREATE TABLE IF NOT EXISTS items (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	ordinal INTEGER NOT NULL,
	kind TEXT NOT NULL,
	name TEXT NOT NULL,
	span_lo INTEGER NOT NULL,
	span_hi INTEGER NOT NULL,
	PRIMARY KEY (run_id, ordinal)
)`

const createFieldsTable = `
CREATE TABLE IF NOT EXISTS fields (
	run_id TEXT NOT NULL,
	item_ordinal INTEGER NOT NULL,
	ordinal INTEGER NOT NULL,
	name TEXT NOT NULL,
	span_lo INTEGER NOT NULL,
	span_hi INTEGER NOT NULL,
	ty_kind TEXT NOT NULL,
	ty_name TEXT NOT NULL,
	ty_lo INTEGER NOT NULL,
	ty_hi INTEGER NOT NULL,
	PRIMARY KEY (run_id, item_ordinal, ordinal),
	FOREIGN KEY (run_id, item_ordinal) REFERENCES items(run_id, ordinal) ON DELETE CASCADE
)`

const createMetadataTable = `
CREATE TABLE IF NOT EXISTS store_metadata (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_runs_file_path ON runs(file_path, extracted_at)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_content_hash ON runs(content_hash)`,
	`CREATE INDEX IF NOT EXISTS idx_items_name ON items(name)`,
}
