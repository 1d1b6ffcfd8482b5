package models

import (
	"path/filepath"
	"strings"
	"time"
)

// MediaKind distinguishes photos from videos
type MediaKind string

const (
	KindPhoto MediaKind = "photo"
	KindVideo MediaKind = "video"
)

// MediaItem represents a candidate local file for upload. Items are
// reconstructed on every discovery pass and never persisted directly;
// only their upload outcome is recorded in the ledger.
type MediaItem struct {
	// ID is the platform-local media id. Zero for externally-picked files;
	// the ledger synthesizes a fallback id when recording such items.
	ID       int64         `json:"id"`
	Locator  string        `json:"locator"`
	Name     string        `json:"name"`
	MimeType string        `json:"mimeType"`
	Size     int64         `json:"size"`
	AddedAt  time.Time     `json:"addedAt"`
	Kind     MediaKind     `json:"kind"`
	Duration time.Duration `json:"duration,omitempty"` // videos only, best-effort
}

var photoExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".heic": "image/heic",
	".heif": "image/heif",
}

var videoExtensions = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".webm": "video/webm",
	".3gp":  "video/3gpp",
	".m4v":  "video/x-m4v",
}

// KindForPath reports the media kind for a file path based on its
// extension. The second return value is false for non-media files.
func KindForPath(path string) (MediaKind, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := photoExtensions[ext]; ok {
		return KindPhoto, true
	}
	if _, ok := videoExtensions[ext]; ok {
		return KindVideo, true
	}
	return "", false
}

// MimeForPath returns the MIME type for a media file path, falling back
// to application/octet-stream for unknown extensions.
func MimeForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if m, ok := photoExtensions[ext]; ok {
		return m
	}
	if m, ok := videoExtensions[ext]; ok {
		return m
	}
	return "application/octet-stream"
}

// IsHEIC reports whether the path refers to a HEIC/HEIF image, which
// needs a dedicated EXIF extraction path.
func IsHEIC(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".heic" || ext == ".heif"
}
