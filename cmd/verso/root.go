package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"verso.dev/verso/internal/cache"
	"verso.dev/verso/internal/config"
	"verso.dev/verso/internal/providers"
)

var (
	// global flags
	playerName      string
	providerOrder   string
	musixmatchToken string
	lrclibURL       string
	syncOffset      float64
	hideHeader      bool
	cachePath       string
	logFile         string
	verbose         bool
)

var rootCmd = &cobra.Command{
	Use:   "verso",
	Short: "synchronized lyrics for mpris players",
	Long: `verso shows time-synchronized lyrics for whatever your linux music
player is playing, with word-level karaoke highlighting when a provider
has it.

when run without a subcommand, it starts the interactive TUI viewer.`,
	Version: "1.0.0",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runViewer(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&playerName, "player", "p", "", "player to follow, matched against the mpris bus name (e.g. spotify)")
	rootCmd.PersistentFlags().StringVar(&providerOrder, "providers", "", "comma-separated provider priority (lrclib,musixmatch,netease)")
	rootCmd.PersistentFlags().StringVar(&musixmatchToken, "musixmatch-token", "", "musixmatch usertoken")
	rootCmd.PersistentFlags().StringVar(&lrclibURL, "lrclib-url", "", "custom lrclib api url")
	rootCmd.PersistentFlags().Float64VarP(&syncOffset, "sync-offset", "s", 0, "initial sync offset in seconds")
	rootCmd.PersistentFlags().BoolVarP(&hideHeader, "hide-header", "H", false, "hide the track header")
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache-path", "", "lyrics cache file location")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves defaults, file, and environment, then lays the
// command flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if playerName != "" {
		cfg.Player = playerName
	}
	if providerOrder != "" {
		cfg.Providers = splitList(providerOrder)
	}
	if musixmatchToken != "" {
		cfg.MusixmatchToken = musixmatchToken
	}
	if lrclibURL != "" {
		cfg.LrclibURL = lrclibURL
	}
	if cmd.Flags().Changed("sync-offset") {
		cfg.SyncOffset = syncOffset
	}
	if cmd.Flags().Changed("hide-header") {
		cfg.HideHeader = hideHeader
	}
	if cachePath != "" {
		cfg.CachePath = cachePath
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}

	return cfg, nil
}

// setupLogging routes zerolog. The TUI owns the terminal, so without a
// log file everything is discarded; quiet is for CLI subcommands that
// print their own output.
func setupLogging(cfg *config.Config, fallback io.Writer) error {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	writer := fallback
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		writer = f
	}
	if writer == nil {
		writer = io.Discard
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
	return nil
}

func openStore(cfg *config.Config) (*cache.Store, error) {
	path := cfg.CachePath
	if path == "" {
		var err error
		path, err = cache.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve cache path: %w", err)
		}
	}
	return cache.Open(path), nil
}

// buildProviders turns the configured priority list into provider
// instances. Unknown names are rejected so config typos surface.
func buildProviders(cfg *config.Config) ([]providers.Provider, error) {
	out := make([]providers.Provider, 0, len(cfg.Providers))
	for _, name := range cfg.Providers {
		switch strings.ToLower(name) {
		case "lrclib":
			out = append(out, providers.NewLrclib(cfg.LrclibURL))
		case "musixmatch":
			out = append(out, providers.NewMusixmatch(cfg.MusixmatchToken, ""))
		case "netease":
			out = append(out, providers.NewNetease(cfg.NeteaseSearch, cfg.NeteaseLyric))
		default:
			return nil, fmt.Errorf("unknown provider %q", name)
		}
	}
	return out, nil
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
