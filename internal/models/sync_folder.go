package models

import (
	"path/filepath"
	"strings"
	"time"
)

// SyncFolder identifies a directory the user has opted into for
// automatic upload. Path is the unique key; enabling auto-sync never
// changes path or name identity.
type SyncFolder struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	AutoSync   bool      `json:"autoSync"`
	LastSyncAt time.Time `json:"lastSyncAt,omitempty"`
}

// NewSyncFolder creates a SyncFolder from a directory path with
// auto-sync defaulted to off.
func NewSyncFolder(path string) (*SyncFolder, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrEmptyFolderPath
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(abs)
	if name == "." || name == string(filepath.Separator) {
		name = abs
	}

	return &SyncFolder{
		Path: abs,
		Name: name,
	}, nil
}
