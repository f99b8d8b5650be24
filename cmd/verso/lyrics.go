package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"verso.dev/verso/internal/lyrics"
	"verso.dev/verso/internal/providers"
	"verso.dev/verso/internal/track"
)

var lyricsDuration float64

var lyricsCmd = &cobra.Command{
	Use:   "lyrics",
	Short: "lyrics search and management",
	Long:  `search providers for lyrics, pre-fetch to the cache, or print them.`,
}

var lyricsSearchCmd = &cobra.Command{
	Use:   "search <artist> <title>",
	Short: "check which providers have lyrics for a song",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := setupLogging(cfg, nil); err != nil {
			return err
		}

		provs, err := buildProviders(cfg)
		if err != nil {
			return err
		}

		id := identityFromArgs(args)
		fmt.Printf("searching for: %s - %s\n\n", id.Artist, id.Title)

		found := false
		for _, p := range provs {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout)
			result, err := p.Lookup(ctx, id)
			cancel()

			switch {
			case err == nil:
				doc, parseErr := lyrics.Parse(result.Format, result.Raw, p.Name())
				if parseErr != nil {
					fmt.Printf("  %-12s payload found but unparseable (%v)\n", p.Name(), parseErr)
					continue
				}
				sync := "line"
				if doc.WordSynced() {
					sync = "word"
				}
				fmt.Printf("  %-12s %d lines, %s-synced (%s)\n", p.Name(), len(doc.Lines), sync, result.Format)
				found = true
			case errors.Is(err, providers.ErrNotConfigured):
				fmt.Printf("  %-12s not configured\n", p.Name())
			case errors.Is(err, providers.ErrNoMatch):
				fmt.Printf("  %-12s no match\n", p.Name())
			default:
				fmt.Printf("  %-12s error: %v\n", p.Name(), err)
			}
		}

		if found {
			fmt.Println("\nuse 'verso lyrics fetch' to save to cache")
		}
		return nil
	},
}

var lyricsFetchCmd = &cobra.Command{
	Use:   "fetch <artist> <title>",
	Short: "fetch lyrics and store them in the cache",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := setupLogging(cfg, nil); err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		provs, err := buildProviders(cfg)
		if err != nil {
			return err
		}

		orchestrator := providers.NewOrchestrator(provs, store)
		orchestrator.SetTimeout(cfg.FetchTimeout)

		id := identityFromArgs(args)
		doc, err := orchestrator.Fetch(context.Background(), id)
		if err != nil {
			return fmt.Errorf("lyrics not found: %w", err)
		}

		fmt.Printf("fetched %d lines from %s\n", len(doc.Lines), doc.Provider)
		if store.Disabled() {
			fmt.Println("warning: cache is disabled, nothing was saved")
		}
		return nil
	},
}

var lyricsShowCmd = &cobra.Command{
	Use:   "show <artist> <title>",
	Short: "print lyrics with timestamps",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := setupLogging(cfg, nil); err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		provs, err := buildProviders(cfg)
		if err != nil {
			return err
		}

		orchestrator := providers.NewOrchestrator(provs, store)
		orchestrator.SetTimeout(cfg.FetchTimeout)

		id := identityFromArgs(args)
		doc, err := orchestrator.Fetch(context.Background(), id)
		if err != nil {
			return fmt.Errorf("lyrics not found: %w", err)
		}

		fmt.Print(lyrics.SerializeLRC(doc))
		return nil
	},
}

func identityFromArgs(args []string) *track.Identity {
	return &track.Identity{
		Artist:   args[0],
		Title:    args[1],
		Duration: lyricsDuration,
	}
}

func init() {
	durationFlag := func(cmd *cobra.Command) {
		cmd.Flags().Float64Var(&lyricsDuration, "duration", 0, "track duration in seconds, improves matching")
	}
	durationFlag(lyricsSearchCmd)
	durationFlag(lyricsFetchCmd)
	durationFlag(lyricsShowCmd)

	lyricsCmd.AddCommand(lyricsSearchCmd)
	lyricsCmd.AddCommand(lyricsFetchCmd)
	lyricsCmd.AddCommand(lyricsShowCmd)
	rootCmd.AddCommand(lyricsCmd)
}
