// Package config loads and saves the scorebook configuration file,
// a TOML document at ~/.scorebook/config.toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the application configuration.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	API      APIConfig      `toml:"api"`
	Import   ImportConfig   `toml:"import"`
	Export   ExportConfig   `toml:"export"`
	App      AppConfig      `toml:"app"`
}

// DatabaseConfig locates the database and its backups.
type DatabaseConfig struct {
	Path           string `toml:"path"`            // empty = ~/.scorebook/scorebook.db
	BackupDir      string `toml:"backup_dir"`      // empty = backups/ next to the database
	BackupInterval string `toml:"backup_interval"` // scheduler interval, e.g. "24h"
}

// APIConfig holds the HTTP server settings.
type APIConfig struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	RateLimit      float64  `toml:"rate_limit"` // requests per second per client
	RateBurst      int      `toml:"rate_burst"`
}

// ImportConfig holds the score sheet drop directory settings.
type ImportConfig struct {
	WatchDir     string `toml:"watch_dir"`     // empty disables the watcher
	PollInterval string `toml:"poll_interval"` // fallback scan interval
	UseFsnotify  bool   `toml:"use_fsnotify"`  // file system events when available
}

// ExportConfig holds export destinations.
type ExportConfig struct {
	Dir string `toml:"dir"` // empty = current directory
}

// AppConfig holds general settings.
type AppConfig struct {
	Debug bool `toml:"debug"`
}

// DefaultConfig returns the defaults written on first save.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			BackupInterval: "24h",
		},
		API: APIConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
			RateLimit:      10,
			RateBurst:      20,
		},
		Import: ImportConfig{
			PollInterval: "30s",
			UseFsnotify:  true,
		},
	}
}

// Dir returns the scorebook config directory, creating it if missing.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	dir := filepath.Join(home, ".scorebook")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return dir, nil
}

func defaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads ~/.scorebook/config.toml, returning defaults when the
// file does not exist yet.
func Load() (*Config, error) {
	path, err := defaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration at path, returning defaults when
// the file does not exist.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return config, nil
}

// Save writes the configuration to ~/.scorebook/config.toml.
func (c *Config) Save() error {
	path, err := defaultPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ApplyEnv overlays SCOREBOOK_* environment variables on the loaded
// file, so deployments can override without editing it.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("SCOREBOOK_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("SCOREBOOK_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.API.Port = port
		}
	}
	if v := os.Getenv("SCOREBOOK_IMPORT_DIR"); v != "" {
		c.Import.WatchDir = v
	}
	if v := os.Getenv("SCOREBOOK_EXPORT_DIR"); v != "" {
		c.Export.Dir = v
	}
	if v := os.Getenv("SCOREBOOK_DEBUG"); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			c.App.Debug = debug
		}
	}
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("invalid api port: %d", c.API.Port)
	}
	if c.API.RateLimit <= 0 {
		return fmt.Errorf("api rate limit must be positive: %v", c.API.RateLimit)
	}
	if c.API.RateBurst < 1 {
		return fmt.Errorf("api rate burst must be at least 1: %d", c.API.RateBurst)
	}
	if _, err := time.ParseDuration(c.Import.PollInterval); err != nil {
		return fmt.Errorf("invalid import poll interval %q: %w", c.Import.PollInterval, err)
	}
	if _, err := time.ParseDuration(c.Database.BackupInterval); err != nil {
		return fmt.Errorf("invalid backup interval %q: %w", c.Database.BackupInterval, err)
	}
	return nil
}

// DatabasePath resolves the database file, defaulting to
// ~/.scorebook/scorebook.db.
func (c *Config) DatabasePath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "scorebook.db"), nil
}

// PollInterval returns the import poll interval as a duration.
func (c *Config) PollInterval() (time.Duration, error) {
	return time.ParseDuration(c.Import.PollInterval)
}

// BackupInterval returns the backup scheduler interval as a duration.
func (c *Config) BackupInterval() (time.Duration, error) {
	return time.ParseDuration(c.Database.BackupInterval)
}
