package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Backend names accepted by the "backend" config key.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendRemote = "remote"
)

// DatabaseConfig holds the SQLite backend settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// RemoteConfig holds settings for the HTTP record API backend.
type RemoteConfig struct {
	// BaseURL is the root of the record API, e.g. http://localhost:8080.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds each HTTP request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// LogConfig controls the application logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// ServerConfig holds settings for `taskboard serve`.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`

	// RequireToken enables bearer-token checks on the record API.
	RequireToken bool `mapstructure:"require_token" yaml:"require_token"`
}

// DisplayConfig holds UI preferences.
type DisplayConfig struct {
	Theme       string `mapstructure:"theme" yaml:"theme"`
	DefaultSort string `mapstructure:"default_sort" yaml:"default_sort"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend  string         `mapstructure:"backend" yaml:"backend"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Remote   RemoteConfig   `mapstructure:"remote" yaml:"remote"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
}

// ConfigDir returns ~/.config/taskboard, or "." if the home directory
// cannot be resolved.
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

// DefaultDatabasePath returns ~/.config/taskboard/taskboard.db.
func DefaultDatabasePath() string {
	return filepath.Join(ConfigDir(), "taskboard.db")
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Backend:  BackendSQLite,
		Database: DatabaseConfig{Path: DefaultDatabasePath()},
		Remote: RemoteConfig{
			BaseURL:    "http://localhost:8080",
			TimeoutSec: 10,
		},
		Log:     LogConfig{Level: "info"},
		Server:  ServerConfig{Addr: ":8080"},
		Display: DisplayConfig{Theme: "default", DefaultSort: "dueDate"},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultAppConfig()
	v.SetDefault("backend", d.Backend)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("remote.base_url", d.Remote.BaseURL)
	v.SetDefault("remote.timeout_sec", d.Remote.TimeoutSec)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.require_token", d.Server.RequireToken)
	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("display.default_sort", d.Display.DefaultSort)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with TASKBOARD_ override file values
// (e.g. TASKBOARD_BACKEND, TASKBOARD_LOG_LEVEL). A missing file yields
// the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("taskboard")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	switch cfg.Backend {
	case BackendSQLite, BackendMemory, BackendRemote:
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	return cfg, nil
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

	v.Set("backend", cfg.Backend)
	v.Set("database", cfg.Database)
	v.Set("remote", cfg.Remote)
	v.Set("log", cfg.Log)
	v.Set("server", cfg.Server)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
