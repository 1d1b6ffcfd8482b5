package repository

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// NewPostgresDB creates and initializes a PostgreSQL database connection
func NewPostgresDB(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	// Create tables
	if err := createPostgresTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func createPostgresTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sync_folders (
		path TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		auto_sync BOOLEAN NOT NULL DEFAULT FALSE,
		last_sync_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS upload_records (
		id TEXT PRIMARY KEY,
		media_id BIGINT NOT NULL,
		locator TEXT NOT NULL,
		checksum TEXT,
		size BIGINT NOT NULL,
		uploaded_at TIMESTAMP NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_upload_records_media_id ON upload_records(media_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_upload_records_locator ON upload_records(locator);
	CREATE INDEX IF NOT EXISTS idx_upload_records_checksum ON upload_records(checksum);
	`

	_, err := db.Exec(schema)
	return err
}
