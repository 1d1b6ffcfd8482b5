package services

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashService_ComputeChecksum(t *testing.T) {
	svc := NewHashService()

	t.Run("returns consistent checksum for same content", func(t *testing.T) {
		content := []byte("Hello, World!")

		sum1, err := svc.ComputeChecksum(bytes.NewReader(content))
		require.NoError(t, err)

		sum2, err := svc.ComputeChecksum(bytes.NewReader(content))
		require.NoError(t, err)

		assert.Equal(t, sum1, sum2)
		assert.Len(t, sum1, 64) // SHA256 = 64 hex chars
	})

	t.Run("returns different checksum for different content", func(t *testing.T) {
		sum1, err := svc.ComputeChecksum(bytes.NewReader([]byte("Content A")))
		require.NoError(t, err)

		sum2, err := svc.ComputeChecksum(bytes.NewReader([]byte("Content B")))
		require.NoError(t, err)

		assert.NotEqual(t, sum1, sum2)
	})

	t.Run("returns lowercase checksum", func(t *testing.T) {
		sum, err := svc.ComputeChecksum(bytes.NewReader([]byte("test")))
		require.NoError(t, err)

		assert.Equal(t, strings.ToLower(sum), sum)
	})
}

func TestHashService_ComputeFileChecksum(t *testing.T) {
	svc := NewHashService()

	t.Run("matches reader checksum", func(t *testing.T) {
		content := []byte("file content for hashing")
		path := filepath.Join(t.TempDir(), "sample.bin")
		require.NoError(t, os.WriteFile(path, content, 0o644))

		fromFile, err := svc.ComputeFileChecksum(path)
		require.NoError(t, err)

		fromReader, err := svc.ComputeChecksum(bytes.NewReader(content))
		require.NoError(t, err)

		assert.Equal(t, fromReader, fromFile)
	})

	t.Run("errors on missing file", func(t *testing.T) {
		_, err := svc.ComputeFileChecksum(filepath.Join(t.TempDir(), "missing"))
		assert.Error(t, err)
	})
}

func TestHashService_NormalizeChecksum(t *testing.T) {
	svc := NewHashService()

	assert.Equal(t, "abc123", svc.NormalizeChecksum("SHA256:ABC123"))
	assert.Equal(t, "abc123", svc.NormalizeChecksum("  abc123  "))
	assert.Equal(t, "", svc.NormalizeChecksum(""))
}

func TestHashService_IsValidChecksum(t *testing.T) {
	svc := NewHashService()

	valid, err := svc.ComputeChecksum(bytes.NewReader([]byte("x")))
	require.NoError(t, err)

	assert.True(t, svc.IsValidChecksum(valid))
	assert.False(t, svc.IsValidChecksum("not-a-checksum"))
	assert.False(t, svc.IsValidChecksum(valid[:32]))
}
