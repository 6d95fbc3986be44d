package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Unmatched-status policies for the board.
const (
	UnmatchedDrop     = "drop"
	UnmatchedOverflow = "overflow"
)

// APIConfig holds the backend connection settings.
type APIConfig struct {
	// BaseURL is the API root, including the /api prefix.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds each HTTP request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// BoardConfig holds kanban board behaviour.
type BoardConfig struct {
	// Unmatched is "drop" (tasks with an unknown status are hidden) or
	// "overflow" (they are collected in an extra column).
	Unmatched string `mapstructure:"unmatched" yaml:"unmatched"`

	// ProjectID preselects a project filter; 0 shows all projects.
	ProjectID int64 `mapstructure:"project_id" yaml:"project_id"`
}

// RefreshConfig controls background full reloads.
type RefreshConfig struct {
	// IntervalSec is the time between automatic reloads; 0 disables them.
	IntervalSec int `mapstructure:"interval_sec" yaml:"interval_sec"`
}

// CacheConfig locates the offline snapshot database.
type CacheConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Board   BoardConfig   `mapstructure:"board" yaml:"board"`
	Refresh RefreshConfig `mapstructure:"refresh" yaml:"refresh"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// ConfigDir returns ~/.config/taskboard, or the working directory when
// the home directory cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "taskboard")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskboard/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://localhost:8080/api",
			TimeoutSec: 30,
		},
		Board: BoardConfig{
			Unmatched: UnmatchedDrop,
		},
		Refresh: RefreshConfig{
			IntervalSec: 0,
		},
		Cache: CacheConfig{
			Path: filepath.Join(ConfigDir(), "cache.db"),
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(ConfigDir(), "taskboard.log"),
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// newViper builds a viper instance bound to path with defaults and the
// TASKBOARD_ environment prefix (e.g. TASKBOARD_API_BASE_URL).
func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	def := defaultAppConfig()
	v.SetDefault("api.base_url", def.API.BaseURL)
	v.SetDefault("api.timeout_sec", def.API.TimeoutSec)
	v.SetDefault("board.unmatched", def.Board.Unmatched)
	v.SetDefault("board.project_id", def.Board.ProjectID)
	v.SetDefault("refresh.interval_sec", def.Refresh.IntervalSec)
	v.SetDefault("cache.path", def.Cache.Path)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("display.theme", def.Display.Theme)

	v.SetEnvPrefix("TASKBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, defaults (plus environment overrides) apply.
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	return decodeConfig(v, path)
}

func decodeConfig(v *viper.Viper, path string) (*AppConfig, error) {
	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url must not be empty")
	}
	switch c.Board.Unmatched {
	case UnmatchedDrop, UnmatchedOverflow:
	default:
		return fmt.Errorf("board.unmatched must be %q or %q, got %q",
			UnmatchedDrop, UnmatchedOverflow, c.Board.Unmatched)
	}
	if c.API.TimeoutSec < 0 || c.Refresh.IntervalSec < 0 {
		return errors.New("timeouts and intervals must not be negative")
	}
	return nil
}

// WatchConfig re-reads the file at path whenever it changes and passes
// the new configuration to onChange. Invalid edits are reported through
// onError and the previous configuration stays in effect.
func WatchConfig(path string, onChange func(*AppConfig), onError func(error)) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil && onError != nil {
		onError(fmt.Errorf("reading config %s: %w", path, err))
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decodeConfig(v, path)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("board", cfg.Board)
	v.Set("refresh", cfg.Refresh)
	v.Set("cache", cfg.Cache)
	v.Set("log", cfg.Log)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
