package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the sql.DB connection and provides access to stores
type DB struct {
	*sql.DB
	ScanCache *ScanCacheStore
}

// Open opens a database connection and initializes stores
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases shared across queries
	db.SetMaxOpenConns(1)

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &DB{
		DB:        db,
		ScanCache: NewScanCacheStore(db),
	}

	if err := database.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return database, nil
}

// migrate creates the database schema. A scan_cache table from before the
// version column is dropped; it only holds cached scans.
func (db *DB) migrate() error {
	hasVersion, err := db.hasColumn("scan_cache", "version")
	if err != nil {
		return err
	}
	if !hasVersion {
		if _, err := db.Exec(`DROP TABLE IF EXISTS scan_cache`); err != nil {
			return fmt.Errorf("failed to drop old scan cache: %w", err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS scan_cache (
		digest TEXT NOT NULL,
		chain TEXT NOT NULL,
		version TEXT NOT NULL,
		result_data TEXT NOT NULL,
		cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		expires_at DATETIME NOT NULL,
		PRIMARY KEY (digest, chain, version)
	);

	CREATE INDEX IF NOT EXISTS idx_scan_cache_expires ON scan_cache(expires_at);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// hasColumn reports whether table exists and has column
func (db *DB) hasColumn(table, column string) (bool, error) {
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, fmt.Errorf("failed to inspect %s: %w", table, err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
