package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"verso.dev/verso/internal/pipe"
)

var pipeCmd = &cobra.Command{
	Use:   "pipe",
	Short: "print the current lyric line to stdout",
	Long: `follows the player and writes the active lyric line to stdout, one
line per change. suitable for status bars and scripts.`,
	RunE: runPipe,
}

func init() {
	rootCmd.AddCommand(pipeCmd)
}

func runPipe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// stdout carries lyrics, logs go to stderr
	if err := setupLogging(cfg, os.Stderr); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	coordinator, _, cleanup, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	go coordinator.Run(ctx)

	err = pipe.Run(ctx, coordinator.Snapshots(), os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
