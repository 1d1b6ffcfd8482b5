package repository

import (
	"context"
	"strings"

	"github.com/teledrop/syncd/internal/models"
)

// UploadRecordRepository handles ledger persistence (SQLite)
type UploadRecordRepository struct {
	db DBTX
}

// NewUploadRecordRepository creates a new UploadRecordRepository
func NewUploadRecordRepository(db DBTX) *UploadRecordRepository {
	return &UploadRecordRepository{db: db}
}

// ExistsByMediaID reports whether a ledger entry exists for the media id
func (r *UploadRecordRepository) ExistsByMediaID(ctx context.Context, mediaID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM upload_records WHERE media_id = ?)`, mediaID,
	).Scan(&exists)
	return exists, err
}

// ExistsByLocator reports whether a ledger entry exists for the content locator
func (r *UploadRecordRepository) ExistsByLocator(ctx context.Context, locator string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM upload_records WHERE locator = ?)`, locator,
	).Scan(&exists)
	return exists, err
}

// ExistsByChecksum reports whether a ledger entry exists for the checksum
func (r *UploadRecordRepository) ExistsByChecksum(ctx context.Context, checksum string) (bool, error) {
	checksum = strings.ToLower(strings.TrimSpace(checksum))
	if checksum == "" {
		return false, nil
	}

	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM upload_records WHERE checksum = ?)`, checksum,
	).Scan(&exists)
	return exists, err
}

// Record inserts a ledger entry. Conflicts on media id or locator are
// silently ignored so concurrent runs stay idempotent.
func (r *UploadRecordRepository) Record(ctx context.Context, record *models.UploadRecord) error {
	query := `
		INSERT OR IGNORE INTO upload_records (id, media_id, locator, checksum, size, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.MediaID,
		record.Locator,
		nullableString(record.Checksum),
		record.Size,
		record.UploadedAt,
	)

	return err
}

// Count returns the total number of ledger entries
func (r *UploadRecordRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM upload_records`).Scan(&count)
	return count, err
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
