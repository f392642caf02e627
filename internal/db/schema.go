package db

import (
	"database/sql"
	"fmt"
)

const listingsTableDDL = `
CREATE TABLE IF NOT EXISTS listings (
    id INTEGER PRIMARY KEY,
    path TEXT NOT NULL,
    collected_at INTEGER NOT NULL,
    candidates INTEGER NOT NULL,
    strategy INTEGER NOT NULL
);
`

const entriesTableDDL = `
CREATE TABLE IF NOT EXISTS entries (
    id INTEGER PRIMARY KEY,
    listing_id INTEGER NOT NULL,
    slot INTEGER NOT NULL,
    name TEXT NOT NULL,
    full_path TEXT NOT NULL,
    kind INTEGER NOT NULL,
    mode INTEGER NOT NULL,
    uid INTEGER NOT NULL,
    gid INTEGER NOT NULL,
    size INTEGER NOT NULL,
    mtime INTEGER NOT NULL,
    link_target TEXT NOT NULL DEFAULT '',
    target_mode INTEGER NOT NULL DEFAULT 0,
    inode INTEGER NOT NULL DEFAULT 0,
    nlink INTEGER NOT NULL DEFAULT 0
);
`

const exportMetaTableDDL = `
CREATE TABLE IF NOT EXISTS export_meta (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    run_id TEXT NOT NULL,
    roots TEXT NOT NULL,
    start_time INTEGER NOT NULL,
    end_time INTEGER,
    workers INTEGER NOT NULL,
    threshold INTEGER NOT NULL,
    listing_count INTEGER DEFAULT 0,
    entry_count INTEGER DEFAULT 0,
    error_count INTEGER DEFAULT 0
);
`

const exportErrorsTableDDL = `
CREATE TABLE IF NOT EXISTS export_errors (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL,
    message TEXT NOT NULL
);
`

const listingsPathIndexDDL = `CREATE INDEX IF NOT EXISTS idx_listings_path ON listings(path);`
const entriesListingIndexDDL = `CREATE INDEX IF NOT EXISTS idx_entries_listing ON entries(listing_id, slot);`
const entriesSizeIndexDDL = `CREATE INDEX IF NOT EXISTS idx_entries_listing_size ON entries(listing_id, size DESC);`

// InitSchema creates all tables in the database.
func InitSchema(db *sql.DB) error {
	ddls := []string{
		listingsTableDDL,
		entriesTableDDL,
		exportMetaTableDDL,
		exportErrorsTableDDL,
	}

	for _, ddl := range ddls {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	return nil
}

// ApplyWritePragmas configures SQLite for bulk writes during export.
func ApplyWritePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -16000", // 16MB cache
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return nil
}

// ApplyReadPragmas configures SQLite for read-only sessions.
func ApplyReadPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA cache_size = -16000",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA query_only = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return nil
}

// BuildIndexes creates indexes after the data load.
func BuildIndexes(db *sql.DB) error {
	indexes := []string{
		listingsPathIndexDDL,
		entriesListingIndexDDL,
		entriesSizeIndexDDL,
	}

	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// Finalize prepares the database for read-only access.
func Finalize(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA optimize"); err != nil {
		return fmt.Errorf("failed to optimize: %w", err)
	}

	// Single-file snapshots are easier to copy around
	if _, err := db.Exec("PRAGMA journal_mode = DELETE"); err != nil {
		return fmt.Errorf("failed to set journal mode: %w", err)
	}

	return nil
}
