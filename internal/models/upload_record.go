package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadRecord is the dedup ledger entry: proof that a specific piece
// of content has been transferred. Records are created exactly once per
// successfully uploaded item and never updated or deleted.
type UploadRecord struct {
	ID         string    `json:"id"`
	MediaID    int64     `json:"mediaId"`
	Locator    string    `json:"locator"`
	Checksum   string    `json:"checksum,omitempty"` // empty when computation failed
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// NewUploadRecord creates an UploadRecord for a transferred item. A zero
// media id is replaced with a synthesized unique fallback so the ledger's
// media-id uniqueness constraint still holds for id-less items.
func NewUploadRecord(mediaID int64, locator, checksum string, size int64) (*UploadRecord, error) {
	if strings.TrimSpace(locator) == "" {
		return nil, ErrEmptyLocator
	}
	if size < 0 {
		return nil, ErrInvalidFileSize
	}

	if mediaID == 0 {
		mediaID = time.Now().UnixNano()
	}

	return &UploadRecord{
		ID:         uuid.New().String(),
		MediaID:    mediaID,
		Locator:    locator,
		Checksum:   strings.ToLower(strings.TrimSpace(checksum)),
		Size:       size,
		UploadedAt: time.Now().UTC(),
	}, nil
}

// SyncError is a domain error with a stable message
type SyncError struct {
	Message string
}

func (e SyncError) Error() string {
	return e.Message
}

var (
	ErrNotConfigured   = SyncError{"bot token and chat id are not configured"}
	ErrEmptyLocator    = SyncError{"content locator cannot be empty"}
	ErrEmptyFolderPath = SyncError{"folder path cannot be empty"}
	ErrInvalidFileSize = SyncError{"file size cannot be negative"}
	ErrNotMedia        = SyncError{"file is not a photo or video"}
)
