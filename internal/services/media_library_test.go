package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teledrop/syncd/internal/models"
)

func seedLibrary(t *testing.T) (string, *MediaLibrary) {
	t.Helper()
	root := t.TempDir()

	for _, p := range []string{
		"Camera/IMG_0001.jpg",
		"Camera/VID_0001.mp4",
		"Screenshots/shot.png",
		"Documents/notes.txt",
		".thumbnails/thumb.jpg",
	} {
		full := filepath.Join(root, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	}

	return root, NewMediaLibrary([]string{root})
}

func TestMediaLibrary_ListFolders(t *testing.T) {
	root, lib := seedLibrary(t)

	folders, err := lib.ListFolders(context.Background())
	require.NoError(t, err)
	require.Len(t, folders, 2, "only folders with media, hidden dirs excluded")
	assert.Equal(t, "Camera", folders[0].Name)
	assert.Equal(t, filepath.Join(root, "Camera"), folders[0].Path)
	assert.Equal(t, "Screenshots", folders[1].Name)
}

func TestMediaLibrary_ListFoldersMissingRoot(t *testing.T) {
	lib := NewMediaLibrary([]string{"/does/not/exist"})

	folders, err := lib.ListFolders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, folders)
}

func TestMediaLibrary_ListMediaInFolder(t *testing.T) {
	root, lib := seedLibrary(t)
	camera := filepath.Join(root, "Camera")

	// Make the photo strictly newer than the video
	newer := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(camera, "IMG_0001.jpg"), newer, newer))

	items, err := lib.ListMediaInFolder(context.Background(), camera)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "IMG_0001.jpg", items[0].Name, "newest first")
	assert.Equal(t, models.KindPhoto, items[0].Kind)
	assert.Equal(t, models.KindVideo, items[1].Kind)
	assert.Equal(t, "video/mp4", items[1].MimeType)
}

func TestMediaLibrary_ResolveItem(t *testing.T) {
	root, lib := seedLibrary(t)

	t.Run("photo", func(t *testing.T) {
		item, err := lib.ResolveItem(filepath.Join(root, "Camera", "IMG_0001.jpg"))
		require.NoError(t, err)
		assert.Zero(t, item.ID)
		assert.True(t, filepath.IsAbs(item.Locator))
		assert.Equal(t, int64(1), item.Size)
		assert.Equal(t, "image/jpeg", item.MimeType)
	})

	t.Run("non-media rejected", func(t *testing.T) {
		_, err := lib.ResolveItem(filepath.Join(root, "Documents", "notes.txt"))
		assert.ErrorIs(t, err, models.ErrNotMedia)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := lib.ResolveItem(filepath.Join(root, "Camera", "gone.jpg"))
		assert.Error(t, err)
	})
}
