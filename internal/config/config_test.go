package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bryanchriswhite/WindowShot/internal/capture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	m, err := NewManager(path)
	require.NoError(t, err)

	assert.Equal(t, Defaults(), m.Get())
	assert.Equal(t, path, m.GetConfigPath())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "missing config must not be created")
}

func TestNewManager_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_port: 9090\ncapture:\n  interval: 30s\n"), 0644))

	m, err := NewManager(path)
	require.NoError(t, err)

	cfg := m.Get()
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, 30*time.Second, cfg.Capture.Interval)
	assert.Equal(t, 200*time.Millisecond, cfg.Capture.SettleDelay)
	assert.Equal(t, "test", cfg.Capture.FilenamePrefix)
}

func TestNewManager_RejectsInvalidFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "server_port: [\n"},
		{"bad grabber", "capture:\n  grabber: gdi\n"},
		{"bad level", "log_level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := NewManager(path)
			assert.Error(t, err)
		})
	}
}

func TestManager_SetValidates(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	tests := []struct {
		key     string
		value   string
		wantErr bool
	}{
		{"server_port", "9090", false},
		{"server_port", "http", true},
		{"server_port", "70000", true},
		{"log_level", "debug", false},
		{"log_level", "verbose", true},
		{"capture.interval", "5s", false},
		{"capture.interval", "10ms", true},
		{"capture.settle_delay", "0s", false},
		{"capture.settle_delay", "soon", true},
		{"capture.filename_prefix", "shot", false},
		{"capture.filename_prefix", "../shot", true},
		{"capture.filename_prefix", "", true},
		{"capture.grabber", capture.GrabberScreenshot, false},
		{"capture.grabber", capture.GrabberX11, false},
		{"capture.grabber", "gdi", true},
		{"capture.self_title", "My Shell", false},
		{"nope", "1", true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			before, _ := m.Value(tt.key)
			err := m.Set(tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				after, _ := m.Value(tt.key)
				assert.Equal(t, before, after, "rejected value must not be stored")
				return
			}
			require.NoError(t, err)
			got, err := m.Value(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestManager_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	m, err := NewManager(path)
	require.NoError(t, err)

	require.NoError(t, m.Set("capture.interval", "15s"))
	require.NoError(t, m.Set("capture.grabber", "screenshot"))
	require.NoError(t, m.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "interval: 15s")

	reloaded, err := NewManager(path)
	require.NoError(t, err)
	assert.Equal(t, m.Get(), reloaded.Get())
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "server_port")
	assert.Contains(t, keys, "capture.interval")
	assert.IsIncreasing(t, keys)
}
