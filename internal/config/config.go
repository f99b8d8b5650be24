// Package config layers settings: built-in defaults, then the TOML file,
// then environment variables. Command flags override on top via the
// cobra bindings in cmd.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPollInterval  = 100 * time.Millisecond
	DefaultFetchTimeout  = 10 * time.Second
	DefaultProviderOrder = "lrclib,musixmatch,netease"
)

var configLogger = log.With().Str("component", "config").Logger()

// Config is the resolved runtime configuration.
type Config struct {
	Player          string
	Providers       []string
	MusixmatchToken string
	LrclibURL       string
	NeteaseSearch   string
	NeteaseLyric    string
	CachePath       string
	PollInterval    time.Duration
	FetchTimeout    time.Duration
	SyncOffset      float64
	HideHeader      bool
	LogFile         string
}

// fileConfig mirrors the TOML layout.
type fileConfig struct {
	Player struct {
		Name         string `toml:"name"`
		PollInterval string `toml:"poll_interval"`
	} `toml:"player"`

	Providers struct {
		Order        []string `toml:"order"`
		FetchTimeout string   `toml:"fetch_timeout"`
	} `toml:"providers"`

	Lrclib struct {
		URL string `toml:"url"`
	} `toml:"lrclib"`

	Musixmatch struct {
		Token string `toml:"token"`
	} `toml:"musixmatch"`

	Netease struct {
		SearchURL string `toml:"search_url"`
		LyricURL  string `toml:"lyric_url"`
	} `toml:"netease"`

	Cache struct {
		Path string `toml:"path"`
	} `toml:"cache"`

	UI struct {
		SyncOffset float64 `toml:"sync_offset"`
		HideHeader bool    `toml:"hide_header"`
	} `toml:"ui"`

	Log struct {
		File string `toml:"file"`
	} `toml:"log"`
}

// Path returns the config file location, honoring XDG_CONFIG_HOME.
func Path() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "verso", "config.toml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "verso", "config.toml")
}

// Load resolves the configuration. A missing file is fine; a broken one
// is an error so typos do not silently fall back to defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Providers:    splitList(DefaultProviderOrder),
		PollInterval: DefaultPollInterval,
		FetchTimeout: DefaultFetchTimeout,
	}

	if err := cfg.applyFile(Path()); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if len(cfg.Providers) == 0 {
		cfg.Providers = splitList(DefaultProviderOrder)
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	var file fileConfig
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	configLogger.Debug().Str("path", path).Msg("loaded config file")

	if file.Player.Name != "" {
		c.Player = file.Player.Name
	}
	if file.Player.PollInterval != "" {
		if d, err := time.ParseDuration(file.Player.PollInterval); err == nil && d > 0 {
			c.PollInterval = d
		}
	}
	if len(file.Providers.Order) > 0 {
		c.Providers = file.Providers.Order
	}
	if file.Providers.FetchTimeout != "" {
		if d, err := time.ParseDuration(file.Providers.FetchTimeout); err == nil && d > 0 {
			c.FetchTimeout = d
		}
	}
	if file.Lrclib.URL != "" {
		c.LrclibURL = file.Lrclib.URL
	}
	if file.Musixmatch.Token != "" {
		c.MusixmatchToken = file.Musixmatch.Token
	}
	if file.Netease.SearchURL != "" {
		c.NeteaseSearch = file.Netease.SearchURL
	}
	if file.Netease.LyricURL != "" {
		c.NeteaseLyric = file.Netease.LyricURL
	}
	if file.Cache.Path != "" {
		c.CachePath = file.Cache.Path
	}
	if file.UI.SyncOffset != 0 {
		c.SyncOffset = file.UI.SyncOffset
	}
	if file.UI.HideHeader {
		c.HideHeader = true
	}
	if file.Log.File != "" {
		c.LogFile = file.Log.File
	}

	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("VERSO_PLAYER"); v != "" {
		c.Player = v
	}
	if v := os.Getenv("VERSO_PROVIDERS"); v != "" {
		c.Providers = splitList(v)
	}
	if v := os.Getenv("VERSO_MUSIXMATCH_TOKEN"); v != "" {
		c.MusixmatchToken = v
	}
	if v := os.Getenv("VERSO_LRCLIB_URL"); v != "" {
		c.LrclibURL = v
	}
	if v := os.Getenv("VERSO_CACHE_PATH"); v != "" {
		c.CachePath = v
	}
	if v := os.Getenv("VERSO_SYNC_OFFSET"); v != "" {
		if offset, err := strconv.ParseFloat(v, 64); err == nil {
			c.SyncOffset = offset
		}
	}
	if v := os.Getenv("VERSO_HIDE_HEADER"); v != "" {
		c.HideHeader = v == "1" || v == "true" || v == "yes"
	}
	if v := os.Getenv("VERSO_LOG_FILE"); v != "" {
		c.LogFile = v
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
