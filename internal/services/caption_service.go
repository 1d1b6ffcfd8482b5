package services

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
	"time"

	"github.com/jdeng/goheif"
	"github.com/rwcarlsen/goexif/exif"

	"github.com/teledrop/syncd/internal/models"
)

// CaptionMetadata is the best-effort side data attached to an upload as
// a human-readable annotation. Any field may be absent; extraction
// failures degrade silently rather than blocking the item.
type CaptionMetadata struct {
	FileName string
	TakenAt  *time.Time
	Width    int
	Height   int
	ByteSize int64
}

// CaptionService extracts descriptive metadata for upload captions
type CaptionService struct{}

// NewCaptionService creates a new CaptionService
func NewCaptionService() *CaptionService {
	return &CaptionService{}
}

// BuildCaption produces the caption text for an item, or empty when no
// metadata could be gathered.
func (s *CaptionService) BuildCaption(path string, item *models.MediaItem) string {
	meta := s.extract(path, item)
	return meta.Render()
}

func (s *CaptionService) extract(path string, item *models.MediaItem) CaptionMetadata {
	meta := CaptionMetadata{
		FileName: item.Name,
		ByteSize: item.Size,
	}
	if !item.AddedAt.IsZero() {
		added := item.AddedAt
		meta.TakenAt = &added
	}

	if item.Kind != models.KindPhoto {
		return meta
	}

	f, err := os.Open(path)
	if err != nil {
		return meta
	}
	defer f.Close()

	if x := decodeExif(path, f); x != nil {
		if taken, err := x.DateTime(); err == nil {
			meta.TakenAt = &taken
		}
		if w, ok := exifInt(x, exif.PixelXDimension); ok {
			meta.Width = w
		}
		if h, ok := exifInt(x, exif.PixelYDimension); ok {
			meta.Height = h
		}
	}

	if meta.Width == 0 || meta.Height == 0 {
		// Rewind and fall back to decoding the image header
		if _, err := f.Seek(0, 0); err == nil {
			if cfg, _, err := image.DecodeConfig(f); err == nil {
				meta.Width = cfg.Width
				meta.Height = cfg.Height
			}
		}
	}

	return meta
}

// decodeExif reads EXIF from the stream, routing HEIC/HEIF containers
// through their dedicated extractor first.
func decodeExif(path string, f *os.File) *exif.Exif {
	if models.IsHEIC(path) {
		raw, err := goheif.ExtractExif(f)
		if err != nil || len(raw) == 0 {
			return nil
		}
		x, err := exif.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil
		}
		return x
	}

	x, err := exif.Decode(f)
	if err != nil {
		return nil
	}
	return x
}

func exifInt(x *exif.Exif, field exif.FieldName) (int, bool) {
	tag, err := x.Get(field)
	if err != nil {
		return 0, false
	}
	v, err := tag.Int(0)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Render formats the metadata as caption lines, skipping absent fields
func (m CaptionMetadata) Render() string {
	var b strings.Builder

	if m.FileName != "" {
		fmt.Fprintf(&b, "\U0001F4C1 %s\n", m.FileName)
	}
	if m.TakenAt != nil {
		fmt.Fprintf(&b, "\U0001F4C5 %s\n", m.TakenAt.Format("2006-01-02 15:04:05"))
	}
	if m.Width > 0 && m.Height > 0 {
		fmt.Fprintf(&b, "\U0001F4D0 %dx%d\n", m.Width, m.Height)
	}
	if m.ByteSize > 0 {
		fmt.Fprintf(&b, "\U0001F4BE %s", FormatFileSize(m.ByteSize))
	}

	return strings.TrimSpace(b.String())
}
