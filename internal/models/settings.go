package models

import (
	"strings"
	"time"
)

// BackupInterval is the user's schedule preference for automatic sync.
type BackupInterval string

const (
	IntervalManual    BackupInterval = "manual"
	IntervalWhenAdded BackupInterval = "when_added"
	Interval15Min     BackupInterval = "15m"
	Interval30Min     BackupInterval = "30m"
	Interval1Hour     BackupInterval = "1h"
	Interval6Hours    BackupInterval = "6h"
	IntervalDaily     BackupInterval = "24h"
)

// ParseBackupInterval returns the interval for a stored string,
// defaulting to manual for unknown values.
func ParseBackupInterval(s string) BackupInterval {
	switch BackupInterval(strings.TrimSpace(strings.ToLower(s))) {
	case IntervalWhenAdded:
		return IntervalWhenAdded
	case Interval15Min:
		return Interval15Min
	case Interval30Min:
		return Interval30Min
	case Interval1Hour:
		return Interval1Hour
	case Interval6Hours:
		return Interval6Hours
	case IntervalDaily:
		return IntervalDaily
	default:
		return IntervalManual
	}
}

// Duration returns the timer period for periodic intervals and zero for
// manual and content-triggered modes.
func (i BackupInterval) Duration() time.Duration {
	switch i {
	case Interval15Min:
		return 15 * time.Minute
	case Interval30Min:
		return 30 * time.Minute
	case Interval1Hour:
		return time.Hour
	case Interval6Hours:
		return 6 * time.Hour
	case IntervalDaily:
		return 24 * time.Hour
	default:
		return 0
	}
}

// Periodic reports whether the interval maps to a recurring timer slot.
func (i BackupInterval) Periodic() bool {
	return i.Duration() > 0
}

// Settings holds user credentials and preferences read by the scheduler
// and the orchestrator.
type Settings struct {
	BotToken       string         `json:"botToken"`
	ChatID         string         `json:"chatId"`
	BotUsername    string         `json:"botUsername,omitempty"`
	BackupInterval BackupInterval `json:"backupInterval"`
	WiFiOnly       bool           `json:"wifiOnly"`
}

// Configured reports whether both credentials are present. A run
// requested without them fails fast.
func (s Settings) Configured() bool {
	return strings.TrimSpace(s.BotToken) != "" && strings.TrimSpace(s.ChatID) != ""
}
