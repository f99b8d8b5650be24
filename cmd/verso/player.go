package main

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"verso.dev/verso/internal/player"
)

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "mpris player utilities",
	Long:  `discover and inspect mpris-compatible players on the session bus.`,
}

var playerListCmd = &cobra.Command{
	Use:   "list",
	Short: "list available mpris players",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := setupLogging(cfg, nil); err != nil {
			return err
		}

		bus, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		defer bus.Close()

		var names []string
		if err := bus.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
			return fmt.Errorf("failed to list bus names: %w", err)
		}

		var found int
		for _, name := range names {
			if !strings.HasPrefix(name, "org.mpris.MediaPlayer2.") {
				continue
			}
			found++
			fmt.Printf("  %s (%s)\n", name, playerIdentity(bus, name))
		}

		if found == 0 {
			fmt.Println("no mpris players found")
			fmt.Println("\ncheck that your music player is running and supports mpris")
		}
		return nil
	},
}

var playerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "show what the followed player is doing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := setupLogging(cfg, nil); err != nil {
			return err
		}

		bus, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		defer bus.Close()

		name, err := player.Discover(bus, cfg.Player)
		if err != nil {
			return err
		}

		service, err := player.NewService(bus, name)
		if err != nil {
			return err
		}

		state, err := service.Poll()
		if err != nil {
			return fmt.Errorf("failed to read player state: %w", err)
		}

		status := "paused"
		if state.Playing {
			status = "playing"
		}

		fmt.Printf("player:   %s\n", name)
		fmt.Printf("status:   %s\n", status)
		if state.Track != nil {
			fmt.Printf("artist:   %s\n", state.Track.Artist)
			fmt.Printf("title:    %s\n", state.Track.Title)
			if state.Track.Album != "" {
				fmt.Printf("album:    %s\n", state.Track.Album)
			}
			if state.Track.Duration > 0 {
				fmt.Printf("position: %.0fs / %.0fs\n", state.Position, state.Track.Duration)
			} else {
				fmt.Printf("position: %.0fs\n", state.Position)
			}
		}
		return nil
	},
}

// playerIdentity asks the player for its human-readable name.
func playerIdentity(bus *dbus.Conn, name string) string {
	obj := bus.Object(name, "/org/mpris/MediaPlayer2")
	prop, err := obj.GetProperty("org.mpris.MediaPlayer2.Identity")
	if err != nil {
		return "unknown"
	}
	if identity, ok := prop.Value().(string); ok {
		return identity
	}
	return "unknown"
}

func init() {
	playerCmd.AddCommand(playerListCmd)
	playerCmd.AddCommand(playerStatusCmd)
	rootCmd.AddCommand(playerCmd)
}
