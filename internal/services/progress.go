package services

import (
	"io"
	"time"
)

// progressEmitInterval gates progress callbacks to avoid flooding consumers
const progressEmitInterval = 200 * time.Millisecond

// speedHistorySize is the number of interval samples used for smoothing
const speedHistorySize = 5

// TransferProgress is a point-in-time snapshot of a byte transfer.
type TransferProgress struct {
	UploadedBytes int64
	TotalBytes    int64
	Percent       int
	SpeedBps      int64
	ETASeconds    int64
}

// ProgressReader wraps a byte stream feeding a transfer and reports
// progress periodically: at most every progressEmitInterval, and always
// on the final byte. Smoothed throughput is a moving average over the
// last speedHistorySize interval samples; ETA is 0 when throughput is
// zero or unknown.
type ProgressReader struct {
	r          io.Reader
	total      int64
	onProgress func(TransferProgress)

	minInterval time.Duration
	now         func() time.Time

	read          int64
	started       bool
	finished      bool
	lastEmitAt    time.Time
	lastEmitBytes int64
	speedHistory  []int64
}

// NewProgressReader creates a ProgressReader over r with a known total
// size. onProgress may be nil.
func NewProgressReader(r io.Reader, total int64, onProgress func(TransferProgress)) *ProgressReader {
	return &ProgressReader{
		r:           r,
		total:       total,
		onProgress:  onProgress,
		minInterval: progressEmitInterval,
		now:         time.Now,
	}
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
	}

	now := p.now()
	if !p.started {
		p.started = true
		p.lastEmitAt = now
	}

	final := err == io.EOF || (p.total > 0 && p.read >= p.total)
	if p.onProgress != nil && !p.finished && (final || now.Sub(p.lastEmitAt) >= p.minInterval) {
		p.emit(now)
	}
	if final {
		p.finished = true
	}

	return n, err
}

func (p *ProgressReader) emit(now time.Time) {
	elapsed := now.Sub(p.lastEmitAt)
	bytesInInterval := p.read - p.lastEmitBytes

	// Instantaneous speed, tolerating zero-length intervals
	var instant int64
	if elapsed > 0 {
		instant = int64(float64(bytesInInterval) / elapsed.Seconds())
	}

	p.speedHistory = append(p.speedHistory, instant)
	if len(p.speedHistory) > speedHistorySize {
		p.speedHistory = p.speedHistory[1:]
	}

	var sum int64
	for _, s := range p.speedHistory {
		sum += s
	}
	avg := sum / int64(len(p.speedHistory))

	percent := 0
	if p.total > 0 {
		percent = int(p.read * 100 / p.total)
		if percent > 100 {
			percent = 100
		}
		if percent < 0 {
			percent = 0
		}
	}

	var eta int64
	if avg > 0 && p.total > p.read {
		eta = (p.total - p.read) / avg
	}

	p.onProgress(TransferProgress{
		UploadedBytes: p.read,
		TotalBytes:    p.total,
		Percent:       percent,
		SpeedBps:      avg,
		ETASeconds:    eta,
	})

	p.lastEmitAt = now
	p.lastEmitBytes = p.read
}

// BytesRead returns the number of bytes consumed so far
func (p *ProgressReader) BytesRead() int64 {
	return p.read
}
