package services

import (
	"context"
	"sort"

	"github.com/teledrop/syncd/internal/models"
	"github.com/teledrop/syncd/internal/repository"
)

// CatalogService maintains the set of local directories configured for
// auto-sync, merging live on-device discovery with the persisted catalog.
type CatalogService struct {
	folderRepo repository.SyncFolderRepo
	library    *MediaLibrary
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(folderRepo repository.SyncFolderRepo, library *MediaLibrary) *CatalogService {
	return &CatalogService{
		folderRepo: folderRepo,
		library:    library,
	}
}

// ListSyncFolders merges the live device scan with the persisted
// catalog. For a folder present in both, the persisted record wins so
// the auto-sync flag carries forward. Folders present only in the
// persisted catalog are preserved: a user's explicit custom addition
// survives even when the live scan no longer finds it.
func (s *CatalogService) ListSyncFolders(ctx context.Context) ([]*models.SyncFolder, error) {
	discovered, err := s.library.ListFolders(ctx)
	if err != nil {
		return nil, err
	}

	saved, err := s.folderRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	savedByPath := make(map[string]*models.SyncFolder, len(saved))
	for _, f := range saved {
		savedByPath[f.Path] = f
	}

	merged := make([]*models.SyncFolder, 0, len(discovered)+len(saved))
	inMerged := make(map[string]bool, len(discovered))
	for _, f := range discovered {
		if persisted, ok := savedByPath[f.Path]; ok {
			merged = append(merged, persisted)
		} else {
			merged = append(merged, f)
		}
		inMerged[f.Path] = true
	}

	for _, f := range saved {
		if !inMerged[f.Path] {
			merged = append(merged, f)
		}
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Name < merged[j].Name })

	return merged, nil
}

// GetAutoSyncFolders returns persisted folders with the auto-sync flag
// set: the set the orchestrator scans during an automatic run.
func (s *CatalogService) GetAutoSyncFolders(ctx context.Context) ([]*models.SyncFolder, error) {
	return s.folderRepo.GetAutoSync(ctx)
}

// SetAutoSync persists the auto-sync flag for a folder, creating the
// record if the folder was only known from the live scan.
func (s *CatalogService) SetAutoSync(ctx context.Context, path string, enabled bool) (*models.SyncFolder, error) {
	folders, err := s.ListSyncFolders(ctx)
	if err != nil {
		return nil, err
	}

	var target *models.SyncFolder
	for _, f := range folders {
		if f.Path == path {
			target = f
			break
		}
	}
	if target == nil {
		target, err = models.NewSyncFolder(path)
		if err != nil {
			return nil, err
		}
	}

	target.AutoSync = enabled
	if err := s.folderRepo.Save(ctx, target); err != nil {
		return nil, err
	}

	return target, nil
}

// AddCustomFolder persists a user-supplied folder with auto-sync
// enabled, regardless of whether the live scan finds it.
func (s *CatalogService) AddCustomFolder(ctx context.Context, path string) (*models.SyncFolder, error) {
	folder, err := models.NewSyncFolder(path)
	if err != nil {
		return nil, err
	}
	folder.AutoSync = true

	if err := s.folderRepo.Save(ctx, folder); err != nil {
		return nil, err
	}

	return folder, nil
}

// RemoveFolder drops a persisted folder record. A live-scanned folder
// with the same path reappears on the next listing, without auto-sync.
func (s *CatalogService) RemoveFolder(ctx context.Context, path string) error {
	if path == "" {
		return models.ErrEmptyFolderPath
	}
	return s.folderRepo.Delete(ctx, path)
}
