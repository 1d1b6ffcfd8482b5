package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teledrop/syncd/internal/models"
)

func TestClassifySize(t *testing.T) {
	tests := []struct {
		name    string
		kind    models.MediaKind
		size    int64
		verdict SizeVerdict
	}{
		{"photo at limit", models.KindPhoto, MaxPhotoSize, VerdictValid},
		{"photo one byte over", models.KindPhoto, MaxPhotoSize + 1, VerdictSendAsDocument},
		{"photo at document limit", models.KindPhoto, MaxDocumentSize, VerdictSendAsDocument},
		{"photo over document limit", models.KindPhoto, MaxDocumentSize + 1, VerdictTooLarge},
		{"video at limit", models.KindVideo, MaxVideoSize, VerdictValid},
		{"video one byte over", models.KindVideo, MaxVideoSize + 1, VerdictTooLarge},
		{"small photo", models.KindPhoto, 1024, VerdictValid},
		{"small video", models.KindVideo, 1024, VerdictValid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class := ClassifySize(tt.kind, tt.size)
			assert.Equal(t, tt.verdict, class.Verdict)
			assert.Equal(t, tt.kind, class.Kind)
		})
	}
}

func TestClassifySize_MaxAllowed(t *testing.T) {
	t.Run("rejected photo reports document limit", func(t *testing.T) {
		class := ClassifySize(models.KindPhoto, MaxDocumentSize+1)
		assert.Equal(t, int64(MaxDocumentSize), class.MaxAllowed)
	})

	t.Run("rejected video reports video limit", func(t *testing.T) {
		class := ClassifySize(models.KindVideo, MaxVideoSize+1)
		assert.Equal(t, int64(MaxVideoSize), class.MaxAllowed)
	})

	t.Run("accepted file reports no limit", func(t *testing.T) {
		class := ClassifySize(models.KindVideo, 1)
		assert.Zero(t, class.MaxAllowed)
	})
}

func TestSizeVerdict_String(t *testing.T) {
	assert.Equal(t, "valid", VerdictValid.String())
	assert.Equal(t, "send_as_document", VerdictSendAsDocument.String())
	assert.Equal(t, "too_large", VerdictTooLarge.String())
}
