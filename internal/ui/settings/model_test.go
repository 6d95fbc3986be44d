package settings

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
)

func baseConfig(t *testing.T) *model.AppConfig {
	t.Helper()
	cfg, err := model.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	return cfg
}

func TestApplyFormValues(t *testing.T) {
	base := baseConfig(t)
	fb := &formBindings{
		baseURL:   " http://example.com/api/ ",
		timeout:   "10",
		interval:  "60",
		unmatched: model.UnmatchedOverflow,
		theme:     "mono",
	}

	cfg, err := fb.apply(base)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 10, cfg.API.TimeoutSec)
	assert.Equal(t, 60, cfg.Refresh.IntervalSec)
	assert.Equal(t, model.UnmatchedOverflow, cfg.Board.Unmatched)
	assert.Equal(t, "mono", cfg.Display.Theme)
	assert.NotEqual(t, cfg.API.BaseURL, base.API.BaseURL, "base must not be modified")
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateURL("https://tasks.example.com/api"))
	assert.Error(t, validateURL(""))
	assert.Error(t, validateURL("localhost:8080"))
	assert.Error(t, validateURL("ftp://host/api"))

	assert.NoError(t, validateSeconds("0"))
	assert.Error(t, validateSeconds("-1"))
	assert.Error(t, validateSeconds("abc"))
}

func TestSaveWritesFileAndAnnounces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	base := baseConfig(t)
	var probed string
	m := New(path, base, func(ctx context.Context, u string) error {
		probed = u
		return nil
	}, keys.DefaultKeyMap(), 100, 30)

	next := *base
	next.API.BaseURL = "http://other:9090/api"
	next.Board.Unmatched = model.UnmatchedOverflow
	m.mode = ModeValidating
	msg := m.validateAndSave(&next)()

	m, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	saved, ok := cmd().(SavedMsg)
	require.True(t, ok)

	assert.Equal(t, "http://other:9090/api", probed)
	assert.Equal(t, ModeView, m.mode)
	assert.Contains(t, m.statusMsg, "próxima execução")
	assert.Equal(t, model.UnmatchedOverflow, saved.Config.Board.Unmatched)

	reloaded, err := model.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://other:9090/api", reloaded.API.BaseURL)
	assert.Equal(t, model.UnmatchedOverflow, reloaded.Board.Unmatched)
}

func TestUnreachableAPIIsNotSaved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	base := baseConfig(t)
	m := New(path, base, func(ctx context.Context, u string) error {
		return errors.New("dial tcp: connection refused")
	}, keys.DefaultKeyMap(), 100, 30)

	next := *base
	next.API.BaseURL = "http://nowhere:1/api"
	m.mode = ModeValidating
	m, cmd := m.Update(m.validateAndSave(&next)())

	assert.Nil(t, cmd)
	assert.Contains(t, m.errMsg, "API indisponível")
	assert.NoFileExists(t, path)
}

func TestEscapeCancelsSave(t *testing.T) {
	m := New("unused.yaml", baseConfig(t), nil, keys.DefaultKeyMap(), 100, 30)
	m.mode = ModeValidating
	pending := m.validateAndSave(m.cfg)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeView, m.mode)

	m, cmd := m.Update(pending())
	assert.Nil(t, cmd)
	assert.Empty(t, m.errMsg)
}
