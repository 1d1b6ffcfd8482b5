package services

import (
	"github.com/teledrop/syncd/internal/models"
)

// Transport per-message payload caps
const (
	MaxPhotoSize    = 10 * 1024 * 1024
	MaxVideoSize    = 50 * 1024 * 1024
	MaxDocumentSize = 50 * 1024 * 1024
)

// SizeVerdict is the outcome of classifying a file against the
// transport's payload caps.
type SizeVerdict int

const (
	// VerdictValid means the file fits the native transport path
	VerdictValid SizeVerdict = iota
	// VerdictSendAsDocument means the photo exceeds the native photo cap
	// but still fits as a generic document; delivery is preserved at the
	// cost of losing native preview.
	VerdictSendAsDocument
	// VerdictTooLarge means the file cannot be sent at all and is
	// skipped without a network attempt.
	VerdictTooLarge
)

func (v SizeVerdict) String() string {
	switch v {
	case VerdictValid:
		return "valid"
	case VerdictSendAsDocument:
		return "send_as_document"
	case VerdictTooLarge:
		return "too_large"
	default:
		return "unknown"
	}
}

// SizeClassification carries the verdict plus, for rejections, the
// limit that was exceeded.
type SizeClassification struct {
	Verdict    SizeVerdict
	Kind       models.MediaKind
	MaxAllowed int64
}

// ClassifySize is a pure function of (kind, size): it decides whether a
// file goes over the native path, the document path, or is rejected.
func ClassifySize(kind models.MediaKind, size int64) SizeClassification {
	switch kind {
	case models.KindVideo:
		if size <= MaxVideoSize {
			return SizeClassification{Verdict: VerdictValid, Kind: kind}
		}
		return SizeClassification{Verdict: VerdictTooLarge, Kind: kind, MaxAllowed: MaxVideoSize}
	default:
		if size <= MaxPhotoSize {
			return SizeClassification{Verdict: VerdictValid, Kind: kind}
		}
		if size <= MaxDocumentSize {
			return SizeClassification{Verdict: VerdictSendAsDocument, Kind: kind}
		}
		return SizeClassification{Verdict: VerdictTooLarge, Kind: kind, MaxAllowed: MaxDocumentSize}
	}
}
