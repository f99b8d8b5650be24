package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"verso.dev/verso/internal/config"
	"verso.dev/verso/internal/engine"
	"verso.dev/verso/internal/player"
	"verso.dev/verso/internal/providers"
	"verso.dev/verso/internal/terminal"
	"verso.dev/verso/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "start the interactive lyrics viewer",
	Long:  `starts the terminal viewer with real-time synchronized lyrics.`,
	RunE:  runViewer,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// buildEngine wires the shared player-to-engine pipeline used by both
// the TUI and pipe mode. The returned cleanup closes the bus connection.
func buildEngine(cfg *config.Config) (*engine.Coordinator, *player.Service, func(), error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	provs, err := buildProviders(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	orchestrator := providers.NewOrchestrator(provs, store)
	orchestrator.SetTimeout(cfg.FetchTimeout)

	bus, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	name, err := player.Discover(bus, cfg.Player)
	if err != nil {
		bus.Close()
		return nil, nil, nil, err
	}

	service, err := player.NewService(bus, name)
	if err != nil {
		bus.Close()
		return nil, nil, nil, err
	}
	if err := service.Start(); err != nil {
		bus.Close()
		return nil, nil, nil, fmt.Errorf("failed to subscribe to player signals: %w", err)
	}

	coordinator := engine.NewCoordinator(service.Events(), orchestrator, store)
	coordinator.SetTick(cfg.PollInterval)

	if seed, err := service.Poll(); err == nil {
		coordinator.Seed(seed)
	}
	if cfg.SyncOffset != 0 {
		coordinator.AdjustOffset(cfg.SyncOffset)
	}

	cleanup := func() {
		service.Stop()
		bus.Close()
	}
	return coordinator, service, cleanup, nil
}

func runViewer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg, nil); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		<-sigChan
		cancel()
		terminal.Reset()
		os.Exit(0)
	}()
	defer terminal.Reset()

	coordinator, _, cleanup, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	go coordinator.Run(ctx)

	model := ui.NewModel(ui.ModelConfig{
		Coordinator: coordinator,
		TermCaps:    terminal.DetectCapabilities(),
		HideHeader:  cfg.HideHeader,
	})

	program := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run ui: %w", err)
	}
	return nil
}
