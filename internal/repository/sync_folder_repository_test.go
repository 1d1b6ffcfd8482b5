package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teledrop/syncd/internal/models"
)

func newFolderRepo(t *testing.T) *SyncFolderRepository {
	t.Helper()
	db, err := NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSyncFolderRepository(db)
}

func TestSyncFolderRepository_SaveAndGetAll(t *testing.T) {
	repo := newFolderRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.SyncFolder{
		Path: "/media/Screenshots", Name: "Screenshots", AutoSync: false,
	}))
	require.NoError(t, repo.Save(ctx, &models.SyncFolder{
		Path: "/media/Camera", Name: "Camera", AutoSync: true,
	}))

	folders, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, "Camera", folders[0].Name, "ordered by name")
	assert.Equal(t, "Screenshots", folders[1].Name)
	assert.True(t, folders[0].LastSyncAt.IsZero())
}

func TestSyncFolderRepository_SaveIsUpsert(t *testing.T) {
	repo := newFolderRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.SyncFolder{
		Path: "/media/Camera", Name: "Camera", AutoSync: false,
	}))
	require.NoError(t, repo.Save(ctx, &models.SyncFolder{
		Path: "/media/Camera", Name: "Camera Roll", AutoSync: true,
	}))

	folders, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "Camera Roll", folders[0].Name)
	assert.True(t, folders[0].AutoSync)
}

func TestSyncFolderRepository_GetAutoSync(t *testing.T) {
	repo := newFolderRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.SyncFolder{
		Path: "/media/Camera", Name: "Camera", AutoSync: true,
	}))
	require.NoError(t, repo.Save(ctx, &models.SyncFolder{
		Path: "/media/Downloads", Name: "Downloads", AutoSync: false,
	}))

	folders, err := repo.GetAutoSync(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "/media/Camera", folders[0].Path)
}

func TestSyncFolderRepository_GetAutoSyncEmpty(t *testing.T) {
	repo := newFolderRepo(t)

	folders, err := repo.GetAutoSync(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, folders)
	assert.Empty(t, folders)
}

func TestSyncFolderRepository_TouchLastSync(t *testing.T) {
	repo := newFolderRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.SyncFolder{
		Path: "/media/Camera", Name: "Camera", AutoSync: true,
	}))

	at := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, repo.TouchLastSync(ctx, "/media/Camera", at))

	folders, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.True(t, folders[0].LastSyncAt.Equal(at))
}

func TestSyncFolderRepository_Delete(t *testing.T) {
	repo := newFolderRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.SyncFolder{
		Path: "/media/Camera", Name: "Camera", AutoSync: true,
	}))
	require.NoError(t, repo.Delete(ctx, "/media/Camera"))

	folders, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, folders)

	t.Run("deleting a missing path is not an error", func(t *testing.T) {
		assert.NoError(t, repo.Delete(ctx, "/media/Nope"))
	})
}
