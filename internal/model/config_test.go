package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
	assert.Equal(t, 30, cfg.API.TimeoutSec)
	assert.Equal(t, UnmatchedDrop, cfg.Board.Unmatched)
}

func TestLoadConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`api:
  base_url: https://tracker.example.com/api
board:
  unmatched: overflow
  project_id: 4
refresh:
  interval_sec: 60
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://tracker.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 30, cfg.API.TimeoutSec)
	assert.Equal(t, UnmatchedOverflow, cfg.Board.Unmatched)
	assert.Equal(t, int64(4), cfg.Board.ProjectID)
	assert.Equal(t, 60, cfg.Refresh.IntervalSec)
}

func TestLoadConfigRejectsUnknownPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("board:\n  unmatched: hide\n"), 0o600))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "board.unmatched")
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("TASKBOARD_API_BASE_URL", "http://10.0.0.5:8080/api")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8080/api", cfg.API.BaseURL)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultAppConfig()
	cfg.Board.Unmatched = UnmatchedOverflow
	cfg.Refresh.IntervalSec = 90

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, UnmatchedOverflow, loaded.Board.Unmatched)
	assert.Equal(t, 90, loaded.Refresh.IntervalSec)
}
