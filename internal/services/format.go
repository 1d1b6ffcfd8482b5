package services

import "fmt"

// FormatFileSize renders a byte count for humans
func FormatFileSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	case bytes < 1024*1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	default:
		return fmt.Sprintf("%.2f GB", float64(bytes)/(1024*1024*1024))
	}
}

// FormatSpeed renders a transfer rate for humans
func FormatSpeed(bytesPerSecond int64) string {
	switch {
	case bytesPerSecond < 1024:
		return fmt.Sprintf("%d B/s", bytesPerSecond)
	case bytesPerSecond < 1024*1024:
		return fmt.Sprintf("%.1f KB/s", float64(bytesPerSecond)/1024)
	default:
		return fmt.Sprintf("%.1f MB/s", float64(bytesPerSecond)/(1024*1024))
	}
}

// FormatDuration renders a second count as a compact h/m/s string
func FormatDuration(seconds int64) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		mins := seconds / 60
		secs := seconds % 60
		if secs == 0 {
			return fmt.Sprintf("%dm", mins)
		}
		return fmt.Sprintf("%dm %ds", mins, secs)
	default:
		hours := seconds / 3600
		mins := (seconds % 3600) / 60
		if mins == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
}
