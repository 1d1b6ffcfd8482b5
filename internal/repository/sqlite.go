package repository

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteDB creates and initializes a SQLite database
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Create tables
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	schema := `
	-- Auto-sync folder catalog, keyed by absolute path
	CREATE TABLE IF NOT EXISTS sync_folders (
		path TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		auto_sync INTEGER NOT NULL DEFAULT 0,
		last_sync_at DATETIME
	);

	-- Dedup ledger: one row per successfully uploaded item, append-only
	CREATE TABLE IF NOT EXISTS upload_records (
		id TEXT PRIMARY KEY,
		media_id INTEGER NOT NULL,
		locator TEXT NOT NULL,
		checksum TEXT,
		size INTEGER NOT NULL,
		uploaded_at DATETIME NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_upload_records_media_id ON upload_records(media_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_upload_records_locator ON upload_records(locator);
	CREATE INDEX IF NOT EXISTS idx_upload_records_checksum ON upload_records(checksum);
	`

	_, err := db.Exec(schema)
	return err
}
