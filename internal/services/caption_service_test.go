package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teledrop/syncd/internal/models"
)

func TestCaptionMetadata_Render(t *testing.T) {
	taken := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

	t.Run("all fields", func(t *testing.T) {
		meta := CaptionMetadata{
			FileName: "beach.jpg",
			TakenAt:  &taken,
			Width:    4032,
			Height:   3024,
			ByteSize: 2 * 1024 * 1024,
		}

		caption := meta.Render()
		lines := strings.Split(caption, "\n")
		require.Len(t, lines, 4)
		assert.Equal(t, "\U0001F4C1 beach.jpg", lines[0])
		assert.Equal(t, "\U0001F4C5 2024-03-15 14:30:00", lines[1])
		assert.Equal(t, "\U0001F4D0 4032x3024", lines[2])
		assert.Equal(t, "\U0001F4BE 2.0 MB", lines[3])
	})

	t.Run("absent fields are skipped", func(t *testing.T) {
		meta := CaptionMetadata{FileName: "clip.mp4", ByteSize: 512}

		caption := meta.Render()
		lines := strings.Split(caption, "\n")
		require.Len(t, lines, 2)
		assert.NotContains(t, caption, "\U0001F4C5")
		assert.NotContains(t, caption, "\U0001F4D0")
	})

	t.Run("empty metadata renders empty", func(t *testing.T) {
		assert.Empty(t, CaptionMetadata{}.Render())
	})
}

func TestCaptionService_BuildCaption_NonExifFile(t *testing.T) {
	dir := t.TempDir()
	path := writeMedia(t, dir, "plain.jpg", 1024)

	item := &models.MediaItem{
		Name:    "plain.jpg",
		Locator: path,
		Size:    1024,
		Kind:    models.KindPhoto,
		AddedAt: time.Now(),
	}

	// Garbage bytes carry no EXIF and no decodable image header; the
	// caption still gets name, date and size
	caption := NewCaptionService().BuildCaption(path, item)
	assert.Contains(t, caption, "plain.jpg")
	assert.Contains(t, caption, "1.0 KB")
	assert.NotContains(t, caption, "\U0001F4D0")
}

func TestCaptionService_BuildCaption_Video(t *testing.T) {
	dir := t.TempDir()
	path := writeMedia(t, dir, "clip.mp4", 2048)

	item := &models.MediaItem{
		Name:    "clip.mp4",
		Locator: path,
		Size:    2048,
		Kind:    models.KindVideo,
		AddedAt: time.Now(),
	}

	caption := NewCaptionService().BuildCaption(path, item)
	assert.Contains(t, caption, "clip.mp4")
	assert.Contains(t, caption, "2.0 KB")
}
