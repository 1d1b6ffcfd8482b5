package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/teledrop/syncd/internal/models"
)

// SyncFolderRepository handles folder catalog persistence (SQLite)
type SyncFolderRepository struct {
	db DBTX
}

// NewSyncFolderRepository creates a new SyncFolderRepository
func NewSyncFolderRepository(db DBTX) *SyncFolderRepository {
	return &SyncFolderRepository{db: db}
}

// GetAll retrieves all persisted folders ordered by name
func (r *SyncFolderRepository) GetAll(ctx context.Context) ([]*models.SyncFolder, error) {
	query := `
		SELECT path, name, auto_sync, last_sync_at
		FROM sync_folders
		ORDER BY name
	`
	return r.queryFolders(ctx, query)
}

// GetAutoSync retrieves only folders with the auto-sync flag set. This
// is the set the orchestrator scans during an automatic run.
func (r *SyncFolderRepository) GetAutoSync(ctx context.Context) ([]*models.SyncFolder, error) {
	query := `
		SELECT path, name, auto_sync, last_sync_at
		FROM sync_folders
		WHERE auto_sync = 1
		ORDER BY name
	`
	return r.queryFolders(ctx, query)
}

func (r *SyncFolderRepository) queryFolders(ctx context.Context, query string, args ...interface{}) ([]*models.SyncFolder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []*models.SyncFolder
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, folder)
	}

	if folders == nil {
		folders = []*models.SyncFolder{}
	}

	return folders, rows.Err()
}

func scanFolder(rows *sql.Rows) (*models.SyncFolder, error) {
	var folder models.SyncFolder
	var lastSync sql.NullTime
	if err := rows.Scan(&folder.Path, &folder.Name, &folder.AutoSync, &lastSync); err != nil {
		return nil, err
	}
	if lastSync.Valid {
		folder.LastSyncAt = lastSync.Time
	}
	return &folder, nil
}

// Save upserts a folder keyed by path
func (r *SyncFolderRepository) Save(ctx context.Context, folder *models.SyncFolder) error {
	query := `
		INSERT INTO sync_folders (path, name, auto_sync, last_sync_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name = excluded.name,
			auto_sync = excluded.auto_sync,
			last_sync_at = excluded.last_sync_at
	`

	_, err := r.db.ExecContext(ctx, query,
		folder.Path,
		folder.Name,
		folder.AutoSync,
		nullableTime(folder.LastSyncAt),
	)

	return err
}

// Delete removes a folder by path
func (r *SyncFolderRepository) Delete(ctx context.Context, path string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sync_folders WHERE path = ?`, path)
	return err
}

// TouchLastSync updates the last-sync timestamp for a folder
func (r *SyncFolderRepository) TouchLastSync(ctx context.Context, path string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sync_folders SET last_sync_at = ? WHERE path = ?`, at, path)
	return err
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
