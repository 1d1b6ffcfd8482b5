package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindForPath(t *testing.T) {
	tests := []struct {
		path  string
		kind  MediaKind
		media bool
	}{
		{"/dcim/IMG_0001.jpg", KindPhoto, true},
		{"/dcim/IMG_0002.HEIC", KindPhoto, true},
		{"/dcim/screenshot.png", KindPhoto, true},
		{"/dcim/VID_0001.mp4", KindVideo, true},
		{"/dcim/clip.MOV", KindVideo, true},
		{"/dcim/notes.txt", "", false},
		{"/dcim/archive.zip", "", false},
		{"/dcim/noextension", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			kind, ok := KindForPath(tt.path)
			assert.Equal(t, tt.media, ok)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestMimeForPath(t *testing.T) {
	assert.Equal(t, "image/jpeg", MimeForPath("/a/b.JPG"))
	assert.Equal(t, "video/quicktime", MimeForPath("/a/b.mov"))
	assert.Equal(t, "image/heic", MimeForPath("/a/b.heic"))
	assert.Equal(t, "application/octet-stream", MimeForPath("/a/b.doc"))
}

func TestIsHEIC(t *testing.T) {
	assert.True(t, IsHEIC("/a/photo.heic"))
	assert.True(t, IsHEIC("/a/photo.HEIF"))
	assert.False(t, IsHEIC("/a/photo.jpg"))
}
