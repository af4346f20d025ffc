package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.API.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", config.API.Port)
	}
	if config.Database.BackupInterval != "24h" {
		t.Errorf("expected default backup interval 24h, got %s", config.Database.BackupInterval)
	}
	if config.Import.PollInterval != "30s" {
		t.Errorf("expected default poll interval 30s, got %s", config.Import.PollInterval)
	}
	if !config.Import.UseFsnotify {
		t.Error("expected fsnotify enabled by default")
	}
	if err := config.Validate(); err != nil {
		t.Errorf("expected defaults to validate: %v", err)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	config, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected defaults for missing file, got error: %v", err)
	}
	if config.API.Port != 8080 {
		t.Errorf("expected default config, got port %d", config.API.Port)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	config := DefaultConfig()
	config.Database.Path = "/data/scores.db"
	config.API.Port = 9000
	config.API.AllowedOrigins = []string{"https://scores.example.com"}
	config.Import.WatchDir = "/data/sheets"
	config.App.Debug = true

	if err := config.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if loaded.Database.Path != "/data/scores.db" {
		t.Errorf("expected database path round trip, got %s", loaded.Database.Path)
	}
	if loaded.API.Port != 9000 {
		t.Errorf("expected port 9000, got %d", loaded.API.Port)
	}
	if len(loaded.API.AllowedOrigins) != 1 || loaded.API.AllowedOrigins[0] != "https://scores.example.com" {
		t.Errorf("expected origins round trip, got %v", loaded.API.AllowedOrigins)
	}
	if loaded.Import.WatchDir != "/data/sheets" {
		t.Errorf("expected watch dir round trip, got %s", loaded.Import.WatchDir)
	}
	if !loaded.App.Debug {
		t.Error("expected debug flag round trip")
	}
}

func TestLoadFromPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	partial := DefaultConfig()
	partial.API.Port = 9000
	if err := partial.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if loaded.API.Port != 9000 {
		t.Errorf("expected overridden port, got %d", loaded.API.Port)
	}
	if loaded.Import.PollInterval != "30s" {
		t.Errorf("expected untouched defaults to survive, got %s", loaded.Import.PollInterval)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SCOREBOOK_DB_PATH", "/env/scores.db")
	t.Setenv("SCOREBOOK_API_PORT", "7000")
	t.Setenv("SCOREBOOK_DEBUG", "true")
	t.Setenv("SCOREBOOK_IMPORT_DIR", "/env/sheets")

	config := DefaultConfig()
	config.ApplyEnv()

	if config.Database.Path != "/env/scores.db" {
		t.Errorf("expected env database path, got %s", config.Database.Path)
	}
	if config.API.Port != 7000 {
		t.Errorf("expected env port 7000, got %d", config.API.Port)
	}
	if !config.App.Debug {
		t.Error("expected env debug flag")
	}
	if config.Import.WatchDir != "/env/sheets" {
		t.Errorf("expected env import dir, got %s", config.Import.WatchDir)
	}
}

func TestApplyEnvIgnoresBadValues(t *testing.T) {
	t.Setenv("SCOREBOOK_API_PORT", "not-a-port")

	config := DefaultConfig()
	config.ApplyEnv()
	if config.API.Port != 8080 {
		t.Errorf("expected bad port value ignored, got %d", config.API.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "bad port", mutate: func(c *Config) { c.API.Port = 0 }},
		{name: "negative rate", mutate: func(c *Config) { c.API.RateLimit = -1 }},
		{name: "zero burst", mutate: func(c *Config) { c.API.RateBurst = 0 }},
		{name: "bad poll interval", mutate: func(c *Config) { c.Import.PollInterval = "sometimes" }},
		{name: "bad backup interval", mutate: func(c *Config) { c.Database.BackupInterval = "daily" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("expected validation to fail")
			}
		})
	}
}

func TestDurationGetters(t *testing.T) {
	config := DefaultConfig()

	poll, err := config.PollInterval()
	if err != nil || poll != 30*time.Second {
		t.Errorf("expected 30s poll interval, got %v (err %v)", poll, err)
	}
	backup, err := config.BackupInterval()
	if err != nil || backup != 24*time.Hour {
		t.Errorf("expected 24h backup interval, got %v (err %v)", backup, err)
	}
}
