package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	require.Equal(t, 30, cfg.Notifications.PollIntervalSec)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  base_url: https://taskhub.example.com
notifications:
  poll_interval_sec: 60
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "https://taskhub.example.com", cfg.Server.BaseURL)
	require.Equal(t, 60, cfg.Notifications.PollIntervalSec)
	require.Equal(t, "debug", cfg.Logging.Level)
	// Keys absent from the file keep their defaults.
	require.Equal(t, "default", cfg.Display.Theme)
}

func TestLoadConfigRejectsNonPositiveInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
notifications:
  poll_interval_sec: -5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 30, cfg.Notifications.PollIntervalSec)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	saved := &AppConfig{
		Server:        ServerConfig{BaseURL: "https://hub.internal"},
		Notifications: NotificationsConfig{PollIntervalSec: 15},
		Display:       DisplayConfig{Theme: "dark"},
		Logging:       LoggingConfig{Level: "warn"},
	}
	require.NoError(t, SaveConfig(path, saved))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, saved, loaded)
}
