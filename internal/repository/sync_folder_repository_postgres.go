package repository

import (
	"context"
	"time"

	"github.com/teledrop/syncd/internal/models"
)

// SyncFolderRepositoryPostgres handles folder catalog persistence (PostgreSQL)
type SyncFolderRepositoryPostgres struct {
	db DBTX
}

// NewSyncFolderRepositoryPostgres creates a new PostgreSQL-backed folder repository
func NewSyncFolderRepositoryPostgres(db DBTX) *SyncFolderRepositoryPostgres {
	return &SyncFolderRepositoryPostgres{db: db}
}

// GetAll retrieves all persisted folders ordered by name
func (r *SyncFolderRepositoryPostgres) GetAll(ctx context.Context) ([]*models.SyncFolder, error) {
	query := `
		SELECT path, name, auto_sync, last_sync_at
		FROM sync_folders
		ORDER BY name
	`
	return r.queryFolders(ctx, query)
}

// GetAutoSync retrieves only folders with the auto-sync flag set
func (r *SyncFolderRepositoryPostgres) GetAutoSync(ctx context.Context) ([]*models.SyncFolder, error) {
	query := `
		SELECT path, name, auto_sync, last_sync_at
		FROM sync_folders
		WHERE auto_sync = TRUE
		ORDER BY name
	`
	return r.queryFolders(ctx, query)
}

func (r *SyncFolderRepositoryPostgres) queryFolders(ctx context.Context, query string, args ...interface{}) ([]*models.SyncFolder, error) {
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

// Save upserts a folder keyed by path
func (r *SyncFolderRepositoryPostgres) Save(ctx context.Context, folder *models.SyncFolder) error {
	query := `
		INSERT INTO sync_folders (path, name, auto_sync, last_sync_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (path) DO UPDATE SET
			name = EXCLUDED.name,
			auto_sync = EXCLUDED.auto_sync,
			last_sync_at = EXCLUDED.last_sync_at
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
func (r *SyncFolderRepositoryPostgres) Delete(ctx context.Context, path string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sync_folders WHERE path = $1`, path)
	return err
}

// TouchLastSync updates the last-sync timestamp for a folder
func (r *SyncFolderRepositoryPostgres) TouchLastSync(ctx context.Context, path string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sync_folders SET last_sync_at = $1 WHERE path = $2`, at, path)
	return err
}
