package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teledrop/syncd/internal/models"
)

func newTestDB(t *testing.T) *UploadRecordRepository {
	t.Helper()
	db, err := NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUploadRecordRepository(db)
}

func mustRecord(t *testing.T, mediaID int64, locator, checksum string, size int64) *models.UploadRecord {
	t.Helper()
	record, err := models.NewUploadRecord(mediaID, locator, checksum, size)
	require.NoError(t, err)
	return record
}

func TestUploadRecordRepository_RecordAndExists(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	record := mustRecord(t, 77, "/photos/a.jpg", "ab12", 1024)
	require.NoError(t, repo.Record(ctx, record))

	t.Run("by media id", func(t *testing.T) {
		exists, err := repo.ExistsByMediaID(ctx, 77)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByMediaID(ctx, 78)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("by locator", func(t *testing.T) {
		exists, err := repo.ExistsByLocator(ctx, "/photos/a.jpg")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByLocator(ctx, "/photos/b.jpg")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("by checksum", func(t *testing.T) {
		exists, err := repo.ExistsByChecksum(ctx, "ab12")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByChecksum(ctx, "AB12")
		require.NoError(t, err)
		assert.True(t, exists, "checksum lookup is case-insensitive")

		exists, err = repo.ExistsByChecksum(ctx, "cd34")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("empty checksum never matches", func(t *testing.T) {
		exists, err := repo.ExistsByChecksum(ctx, "")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestUploadRecordRepository_InsertIfAbsent(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	first := mustRecord(t, 5, "/p/x.jpg", "sum1", 100)
	require.NoError(t, repo.Record(ctx, first))

	t.Run("conflicting media id is a no-op", func(t *testing.T) {
		dup := mustRecord(t, 5, "/p/other.jpg", "sum2", 200)
		require.NoError(t, repo.Record(ctx, dup))

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("conflicting locator is a no-op", func(t *testing.T) {
		dup := mustRecord(t, 6, "/p/x.jpg", "sum3", 300)
		require.NoError(t, repo.Record(ctx, dup))

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("distinct record is inserted", func(t *testing.T) {
		other := mustRecord(t, 7, "/p/y.jpg", "sum4", 400)
		require.NoError(t, repo.Record(ctx, other))

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}

func TestUploadRecordRepository_NilChecksumStored(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	record := mustRecord(t, 9, "/p/nochecksum.jpg", "", 50)
	require.NoError(t, repo.Record(ctx, record))

	exists, err := repo.ExistsByLocator(ctx, "/p/nochecksum.jpg")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUploadRecordRepository_SynthesizedMediaIDs(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	// Zero media id items get unique fallbacks, so two of them never
	// collide on the media-id index
	a := mustRecord(t, 0, "/picked/a.jpg", "s1", 10)
	b := mustRecord(t, 0, "/picked/b.jpg", "s2", 20)
	require.NotEqual(t, a.MediaID, b.MediaID)

	require.NoError(t, repo.Record(ctx, a))
	require.NoError(t, repo.Record(ctx, b))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
