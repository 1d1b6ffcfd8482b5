package services

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressReader_EmitsFinalProgress(t *testing.T) {
	content := bytes.Repeat([]byte("a"), 1000)
	var snapshots []TransferProgress

	r := NewProgressReader(bytes.NewReader(content), int64(len(content)), func(p TransferProgress) {
		snapshots = append(snapshots, p)
	})

	_, err := io.Copy(io.Discard, r)
	require.NoError(t, err)

	require.NotEmpty(t, snapshots)
	last := snapshots[len(snapshots)-1]
	assert.Equal(t, 100, last.Percent)
	assert.Equal(t, int64(len(content)), last.UploadedBytes)
	assert.Equal(t, int64(len(content)), last.TotalBytes)
	assert.Equal(t, int64(len(content)), r.BytesRead())
}

func TestProgressReader_MonotonicBytes(t *testing.T) {
	content := bytes.Repeat([]byte("b"), 64*1024)
	var snapshots []TransferProgress

	r := NewProgressReader(bytes.NewReader(content), int64(len(content)), func(p TransferProgress) {
		snapshots = append(snapshots, p)
	})
	// Emit on every read so intermediate snapshots exist
	r.minInterval = 0

	buf := make([]byte, 4096)
	for {
		if _, err := r.Read(buf); err == io.EOF {
			break
		} else {
			require.NoError(t, err)
		}
	}

	require.NotEmpty(t, snapshots)
	var prevBytes int64
	var prevPercent int
	for _, p := range snapshots {
		assert.GreaterOrEqual(t, p.UploadedBytes, prevBytes)
		assert.GreaterOrEqual(t, p.Percent, prevPercent)
		assert.LessOrEqual(t, p.Percent, 100)
		prevBytes = p.UploadedBytes
		prevPercent = p.Percent
	}
}

func TestProgressReader_ThrottlesByInterval(t *testing.T) {
	content := bytes.Repeat([]byte("c"), 32*1024)
	emitted := 0

	now := time.Now()
	r := NewProgressReader(bytes.NewReader(content), int64(len(content)), func(TransferProgress) {
		emitted++
	})
	// Freeze the clock so no interval ever elapses
	r.now = func() time.Time { return now }

	buf := make([]byte, 1024)
	for {
		if _, err := r.Read(buf); err == io.EOF {
			break
		} else {
			require.NoError(t, err)
		}
	}

	// Only the final emission survives the gate
	assert.Equal(t, 1, emitted)
}

func TestProgressReader_ETAZeroWhenSpeedUnknown(t *testing.T) {
	content := bytes.Repeat([]byte("d"), 2048)
	var snapshots []TransferProgress

	now := time.Now()
	r := NewProgressReader(bytes.NewReader(content), int64(len(content)), func(p TransferProgress) {
		snapshots = append(snapshots, p)
	})
	r.minInterval = 0
	// Zero-length intervals give no throughput signal
	r.now = func() time.Time { return now }

	buf := make([]byte, 512)
	for {
		if _, err := r.Read(buf); err == io.EOF {
			break
		} else {
			require.NoError(t, err)
		}
	}

	require.NotEmpty(t, snapshots)
	for _, p := range snapshots {
		assert.Zero(t, p.ETASeconds)
	}
}

func TestProgressReader_NilCallback(t *testing.T) {
	content := bytes.Repeat([]byte("e"), 4096)
	r := NewProgressReader(bytes.NewReader(content), int64(len(content)), nil)

	n, err := io.Copy(io.Discard, r)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), n)
}

func TestProgressReader_UnknownTotal(t *testing.T) {
	content := bytes.Repeat([]byte("f"), 4096)
	var last TransferProgress

	r := NewProgressReader(bytes.NewReader(content), 0, func(p TransferProgress) {
		last = p
	})

	_, err := io.Copy(io.Discard, r)
	require.NoError(t, err)

	assert.Equal(t, int64(len(content)), last.UploadedBytes)
	assert.Zero(t, last.Percent)
}
