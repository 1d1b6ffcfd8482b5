package services

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"regexp"
	"strings"
)

// checksumBufferSize bounds memory while streaming large files
const checksumBufferSize = 32 * 1024

// HashService computes content checksums for duplicate detection.
// Collisions are treated as identity; this is not a security property.
type HashService struct {
	sha256Regex *regexp.Regexp
}

// NewHashService creates a new HashService
func NewHashService() *HashService {
	return &HashService{
		sha256Regex: regexp.MustCompile(`^[a-f0-9]{64}$`),
	}
}

// ComputeChecksum computes the SHA256 digest of a reader, streamed in
// fixed-size chunks so large files are never buffered wholly in memory.
func (s *HashService) ComputeChecksum(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, checksumBufferSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ComputeFileChecksum computes the checksum of a file on disk
func (s *HashService) ComputeFileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return s.ComputeChecksum(f)
}

// NormalizeChecksum normalizes a checksum string to lowercase
func (s *HashService) NormalizeChecksum(checksum string) string {
	normalized := strings.TrimSpace(checksum)

	// Remove "sha256:" prefix if present
	if strings.HasPrefix(strings.ToLower(normalized), "sha256:") {
		normalized = normalized[7:]
	}

	return strings.ToLower(normalized)
}

// IsValidChecksum checks if a string is a valid SHA256 digest
func (s *HashService) IsValidChecksum(checksum string) bool {
	if strings.TrimSpace(checksum) == "" {
		return false
	}

	return s.sha256Regex.MatchString(s.NormalizeChecksum(checksum))
}
