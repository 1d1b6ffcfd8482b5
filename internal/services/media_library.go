package services

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/teledrop/syncd/internal/models"
)

// MediaLibrary enumerates photo/video files under the configured media
// roots. Items are rebuilt on every pass; nothing here is persisted.
type MediaLibrary struct {
	roots []string
}

// NewMediaLibrary creates a MediaLibrary over the given root directories
func NewMediaLibrary(roots []string) *MediaLibrary {
	return &MediaLibrary{roots: roots}
}

// Roots returns the configured media root directories
func (l *MediaLibrary) Roots() []string {
	return l.roots
}

// ListFolders walks the media roots and returns every directory that
// contains at least one photo or video, one entry per directory, sorted
// by display name.
func (l *MediaLibrary) ListFolders(ctx context.Context) ([]*models.SyncFolder, error) {
	seen := make(map[string]*models.SyncFolder)

	for _, root := range l.roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable subtrees are skipped, not fatal
				return fs.SkipDir
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && path != root {
					return fs.SkipDir
				}
				return nil
			}
			if _, ok := models.KindForPath(path); !ok {
				return nil
			}

			dir := filepath.Dir(path)
			if _, ok := seen[dir]; !ok {
				seen[dir] = &models.SyncFolder{
					Path: dir,
					Name: filepath.Base(dir),
				}
			}
			return nil
		})
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
	}

	folders := make([]*models.SyncFolder, 0, len(seen))
	for _, f := range seen {
		folders = append(folders, f)
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].Name < folders[j].Name })

	return folders, nil
}

// ListMediaInFolder returns the media files directly inside a folder,
// newest-first by modification time.
func (l *MediaLibrary) ListMediaInFolder(ctx context.Context, folderPath string) ([]*models.MediaItem, error) {
	entries, err := os.ReadDir(folderPath)
	if err != nil {
		return nil, err
	}

	var items []*models.MediaItem
	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(folderPath, entry.Name())
		item, err := l.ResolveItem(path)
		if err != nil {
			continue // unreadable or non-media, skip
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].AddedAt.After(items[j].AddedAt) })

	return items, nil
}

// ResolveItem builds a MediaItem for a single file path. Used both for
// folder enumeration and for manually selected locators.
func (l *MediaLibrary) ResolveItem(path string) (*models.MediaItem, error) {
	kind, ok := models.KindForPath(path)
	if !ok {
		return nil, models.ErrNotMedia
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	return &models.MediaItem{
		// Local files carry no platform media id; the ledger
		// synthesizes one at record time.
		ID:       0,
		Locator:  abs,
		Name:     info.Name(),
		MimeType: models.MimeForPath(path),
		Size:     info.Size(),
		AddedAt:  info.ModTime(),
		Kind:     kind,
	}, nil
}
