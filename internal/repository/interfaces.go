package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/teledrop/syncd/internal/models"
)

// DBTX is the querying surface the repositories need. Satisfied by
// *sql.DB and by observability.TraceDB.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// UploadRecordRepo is the dedup ledger: append-only records of
// transferred content, checked through three independent identity
// signals (media id, locator, checksum).
type UploadRecordRepo interface {
	ExistsByMediaID(ctx context.Context, mediaID int64) (bool, error)
	ExistsByLocator(ctx context.Context, locator string) (bool, error)
	ExistsByChecksum(ctx context.Context, checksum string) (bool, error)
	// Record inserts with insert-if-absent semantics: a conflicting
	// media id or locator is a no-op, not an error.
	Record(ctx context.Context, record *models.UploadRecord) error
	Count(ctx context.Context) (int, error)
}

// SyncFolderRepo persists the auto-sync folder catalog.
type SyncFolderRepo interface {
	GetAll(ctx context.Context) ([]*models.SyncFolder, error)
	GetAutoSync(ctx context.Context) ([]*models.SyncFolder, error)
	Save(ctx context.Context, folder *models.SyncFolder) error
	Delete(ctx context.Context, path string) error
	TouchLastSync(ctx context.Context, path string, at time.Time) error
}
