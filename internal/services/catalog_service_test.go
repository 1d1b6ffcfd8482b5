package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teledrop/syncd/internal/models"
)

func TestCatalogService_ListSyncFolders(t *testing.T) {
	root := t.TempDir()
	camera := filepath.Join(root, "Camera")
	screenshots := filepath.Join(root, "Screenshots")
	require.NoError(t, os.MkdirAll(camera, 0o755))
	require.NoError(t, os.MkdirAll(screenshots, 0o755))
	writeMedia(t, camera, "a.jpg", 128)
	writeMedia(t, screenshots, "b.png", 128)
	// Directory without media never appears
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Documents"), 0o755))

	t.Run("live scan only", func(t *testing.T) {
		svc := NewCatalogService(newFakeFolderRepo(), NewMediaLibrary([]string{root}))

		folders, err := svc.ListSyncFolders(context.Background())
		require.NoError(t, err)

		require.Len(t, folders, 2)
		assert.Equal(t, "Camera", folders[0].Name)
		assert.False(t, folders[0].AutoSync)
		assert.Equal(t, "Screenshots", folders[1].Name)
	})

	t.Run("persisted record wins over live scan", func(t *testing.T) {
		persisted, err := models.NewSyncFolder(camera)
		require.NoError(t, err)
		persisted.AutoSync = true

		svc := NewCatalogService(newFakeFolderRepo(persisted), NewMediaLibrary([]string{root}))

		folders, err := svc.ListSyncFolders(context.Background())
		require.NoError(t, err)

		require.Len(t, folders, 2)
		assert.True(t, folders[0].AutoSync)
	})

	t.Run("persisted-only folder is preserved", func(t *testing.T) {
		gone := filepath.Join(root, "Removed")
		persisted := &models.SyncFolder{Path: gone, Name: "Removed", AutoSync: true}

		svc := NewCatalogService(newFakeFolderRepo(persisted), NewMediaLibrary([]string{root}))

		folders, err := svc.ListSyncFolders(context.Background())
		require.NoError(t, err)

		require.Len(t, folders, 3)
		var names []string
		for _, f := range folders {
			names = append(names, f.Name)
		}
		assert.Contains(t, names, "Removed")
	})
}

func TestCatalogService_SetAutoSync(t *testing.T) {
	root := t.TempDir()
	camera := filepath.Join(root, "Camera")
	require.NoError(t, os.MkdirAll(camera, 0o755))
	writeMedia(t, camera, "a.jpg", 128)

	t.Run("creates record for live-scanned folder", func(t *testing.T) {
		repo := newFakeFolderRepo()
		svc := NewCatalogService(repo, NewMediaLibrary([]string{root}))

		folder, err := svc.SetAutoSync(context.Background(), camera, true)
		require.NoError(t, err)
		assert.True(t, folder.AutoSync)

		persisted, err := repo.GetAutoSync(context.Background())
		require.NoError(t, err)
		require.Len(t, persisted, 1)
		assert.Equal(t, camera, persisted[0].Path)
	})

	t.Run("disables on existing record", func(t *testing.T) {
		existing, err := models.NewSyncFolder(camera)
		require.NoError(t, err)
		existing.AutoSync = true
		repo := newFakeFolderRepo(existing)
		svc := NewCatalogService(repo, NewMediaLibrary([]string{root}))

		folder, err := svc.SetAutoSync(context.Background(), camera, false)
		require.NoError(t, err)
		assert.False(t, folder.AutoSync)

		persisted, err := repo.GetAutoSync(context.Background())
		require.NoError(t, err)
		assert.Empty(t, persisted)
	})

	t.Run("rejects empty path", func(t *testing.T) {
		svc := NewCatalogService(newFakeFolderRepo(), NewMediaLibrary(nil))

		_, err := svc.SetAutoSync(context.Background(), "", true)
		assert.ErrorIs(t, err, models.ErrEmptyFolderPath)
	})
}

func TestCatalogService_AddCustomFolder(t *testing.T) {
	dir := t.TempDir()
	svc := NewCatalogService(newFakeFolderRepo(), NewMediaLibrary(nil))

	folder, err := svc.AddCustomFolder(context.Background(), dir)
	require.NoError(t, err)

	assert.True(t, folder.AutoSync)
	assert.Equal(t, filepath.Base(dir), folder.Name)
}

func TestCatalogService_RemoveFolder(t *testing.T) {
	dir := t.TempDir()
	folder, err := models.NewSyncFolder(dir)
	require.NoError(t, err)
	folder.AutoSync = true
	repo := newFakeFolderRepo(folder)
	svc := NewCatalogService(repo, NewMediaLibrary(nil))

	require.NoError(t, svc.RemoveFolder(context.Background(), dir))

	remaining, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, remaining)

	assert.ErrorIs(t, svc.RemoveFolder(context.Background(), ""), models.ErrEmptyFolderPath)
}
