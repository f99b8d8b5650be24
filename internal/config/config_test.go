package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "verso", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"VERSO_PLAYER", "VERSO_PROVIDERS", "VERSO_MUSIXMATCH_TOKEN",
		"VERSO_LRCLIB_URL", "VERSO_CACHE_PATH", "VERSO_SYNC_OFFSET",
		"VERSO_HIDE_HEADER", "VERSO_LOG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("PollInterval = %v, want %v", cfg.PollInterval, DefaultPollInterval)
	}
	if len(cfg.Providers) != 3 || cfg.Providers[0] != "lrclib" {
		t.Errorf("Providers = %v, want default order", cfg.Providers)
	}
	if cfg.MusixmatchToken != "" {
		t.Errorf("MusixmatchToken = %q, want empty", cfg.MusixmatchToken)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	writeConfig(t, `
[player]
name = "spotify"
poll_interval = "250ms"

[providers]
order = ["netease", "lrclib"]

[musixmatch]
token = "file-token"

[ui]
sync_offset = 0.5
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Player != "spotify" {
		t.Errorf("Player = %q", cfg.Player)
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Errorf("PollInterval = %v", cfg.PollInterval)
	}
	if len(cfg.Providers) != 2 || cfg.Providers[0] != "netease" {
		t.Errorf("Providers = %v", cfg.Providers)
	}
	if cfg.MusixmatchToken != "file-token" {
		t.Errorf("MusixmatchToken = %q", cfg.MusixmatchToken)
	}
	if cfg.SyncOffset != 0.5 {
		t.Errorf("SyncOffset = %v", cfg.SyncOffset)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	writeConfig(t, `
[musixmatch]
token = "file-token"

[providers]
order = ["lrclib"]
`)
	t.Setenv("VERSO_MUSIXMATCH_TOKEN", "env-token")
	t.Setenv("VERSO_PROVIDERS", "musixmatch, netease")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MusixmatchToken != "env-token" {
		t.Errorf("MusixmatchToken = %q, want env-token", cfg.MusixmatchToken)
	}
	if len(cfg.Providers) != 2 || cfg.Providers[0] != "musixmatch" {
		t.Errorf("Providers = %v, want env order", cfg.Providers)
	}
}

func TestLoadBrokenFile(t *testing.T) {
	clearEnv(t)
	writeConfig(t, `this is not toml = = =`)

	if _, err := Load(); err == nil {
		t.Fatal("Load() with a broken file should error, not fall back silently")
	}
}
