package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teledrop/syncd/internal/models"
)

func TestSettingsService_DefaultsWhenFileMissing(t *testing.T) {
	svc, err := NewSettingsService(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)

	st := svc.Get()
	assert.False(t, st.Configured())
	assert.Equal(t, models.IntervalManual, st.BackupInterval)
	assert.False(t, svc.IsConfigured())
}

func TestSettingsService_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	svc, err := NewSettingsService(path)
	require.NoError(t, err)
	require.NoError(t, svc.SaveCredentials("123:abc", "42", "mybot"))
	require.NoError(t, svc.SaveBackupInterval(models.Interval6Hours))
	require.NoError(t, svc.SaveWiFiOnly(true))

	reloaded, err := NewSettingsService(path)
	require.NoError(t, err)

	st := reloaded.Get()
	assert.Equal(t, "123:abc", st.BotToken)
	assert.Equal(t, "42", st.ChatID)
	assert.Equal(t, "mybot", st.BotUsername)
	assert.Equal(t, models.Interval6Hours, st.BackupInterval)
	assert.True(t, st.WiFiOnly)
	assert.True(t, reloaded.IsConfigured())
}

func TestSettingsService_NotifiesSubscribers(t *testing.T) {
	svc, err := NewSettingsService(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)

	var seen []models.Settings
	svc.Subscribe(func(st models.Settings) {
		seen = append(seen, st)
	})

	require.NoError(t, svc.SaveBackupInterval(models.Interval15Min))
	require.NoError(t, svc.SaveWiFiOnly(true))

	require.Len(t, seen, 2)
	assert.Equal(t, models.Interval15Min, seen[0].BackupInterval)
	assert.True(t, seen[1].WiFiOnly)
}

func TestSettingsService_FilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	svc, err := NewSettingsService(path)
	require.NoError(t, err)
	require.NoError(t, svc.SaveCredentials("123:secret", "42", "bot"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	// Token is a credential; the store must not be world-readable
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSettingsService_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewSettingsService(path)
	assert.Error(t, err)
}

func TestSettingsService_NormalizesUnknownInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"backupInterval":"fortnightly"}`), 0o600))

	svc, err := NewSettingsService(path)
	require.NoError(t, err)
	assert.Equal(t, models.IntervalManual, svc.Get().BackupInterval)
}
