package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/teledrop/syncd/internal/models"
)

// SettingsService is the file-backed store for credentials and user
// preferences. Values are observable: subscribers are notified after
// every successful write.
type SettingsService struct {
	path string

	mu          sync.RWMutex
	current     models.Settings
	subscribers []func(models.Settings)
}

// NewSettingsService loads settings from path, starting from defaults
// when the file does not exist yet.
func NewSettingsService(path string) (*SettingsService, error) {
	s := &SettingsService{
		path: path,
		current: models.Settings{
			BackupInterval: models.IntervalManual,
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, &s.current); err != nil {
		return nil, err
	}
	s.current.BackupInterval = models.ParseBackupInterval(string(s.current.BackupInterval))

	return s, nil
}

// Get returns a snapshot of the current settings
func (s *SettingsService) Get() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// IsConfigured reports whether both bot token and chat id are set
func (s *SettingsService) IsConfigured() bool {
	return s.Get().Configured()
}

// Subscribe registers a callback invoked after every settings change.
// Callbacks run synchronously on the writing goroutine.
func (s *SettingsService) Subscribe(fn func(models.Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// SaveCredentials stores the bot token, chat id and bot username
func (s *SettingsService) SaveCredentials(token, chatID, username string) error {
	return s.update(func(st *models.Settings) {
		st.BotToken = token
		st.ChatID = chatID
		st.BotUsername = username
	})
}

// SaveBackupInterval stores the schedule preference
func (s *SettingsService) SaveBackupInterval(interval models.BackupInterval) error {
	return s.update(func(st *models.Settings) {
		st.BackupInterval = interval
	})
}

// SaveWiFiOnly stores the network constraint preference
func (s *SettingsService) SaveWiFiOnly(wifiOnly bool) error {
	return s.update(func(st *models.Settings) {
		st.WiFiOnly = wifiOnly
	})
}

func (s *SettingsService) update(mutate func(*models.Settings)) error {
	s.mu.Lock()
	next := s.current
	mutate(&next)

	if err := s.persist(next); err != nil {
		s.mu.Unlock()
		return err
	}

	s.current = next
	subscribers := make([]func(models.Settings), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(next)
	}
	return nil
}

// persist writes atomically: temp file then rename
func (s *SettingsService) persist(st models.Settings) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
