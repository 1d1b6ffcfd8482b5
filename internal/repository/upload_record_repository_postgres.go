package repository

import (
	"context"
	"strings"

	"github.com/teledrop/syncd/internal/models"
)

// UploadRecordRepositoryPostgres handles ledger persistence (PostgreSQL)
type UploadRecordRepositoryPostgres struct {
	db DBTX
}

// NewUploadRecordRepositoryPostgres creates a new PostgreSQL-backed ledger repository
func NewUploadRecordRepositoryPostgres(db DBTX) *UploadRecordRepositoryPostgres {
	return &UploadRecordRepositoryPostgres{db: db}
}

// ExistsByMediaID reports whether a ledger entry exists for the media id
func (r *UploadRecordRepositoryPostgres) ExistsByMediaID(ctx context.Context, mediaID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM upload_records WHERE media_id = $1)`, mediaID,
	).Scan(&exists)
	return exists, err
}

// ExistsByLocator reports whether a ledger entry exists for the content locator
func (r *UploadRecordRepositoryPostgres) ExistsByLocator(ctx context.Context, locator string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM upload_records WHERE locator = $1)`, locator,
	).Scan(&exists)
	return exists, err
}

// ExistsByChecksum reports whether a ledger entry exists for the checksum
func (r *UploadRecordRepositoryPostgres) ExistsByChecksum(ctx context.Context, checksum string) (bool, error) {
	checksum = strings.ToLower(strings.TrimSpace(checksum))
	if checksum == "" {
		return false, nil
	}

	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM upload_records WHERE checksum = $1)`, checksum,
	).Scan(&exists)
	return exists, err
}

// Record inserts a ledger entry with insert-if-absent semantics
func (r *UploadRecordRepositoryPostgres) Record(ctx context.Context, record *models.UploadRecord) error {
	query := `
		INSERT INTO upload_records (id, media_id, locator, checksum, size, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING
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
func (r *UploadRecordRepositoryPostgres) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM upload_records`).Scan(&count)
	return count, err
}
