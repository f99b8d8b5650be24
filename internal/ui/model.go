// Package ui renders the synchronized lyric view. The engine owns all
// playback and lyric state; the model here only consumes snapshots and
// turns key presses into engine calls.
package ui

import (
	"image"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"verso.dev/verso/internal/artwork"
	"verso.dev/verso/internal/engine"
	"verso.dev/verso/internal/terminal"
)

type tickMsg time.Time

type snapshotMsg engine.Snapshot

type artworkMsg struct {
	url     string
	image   image.Image
	palette *artwork.Palette
	err     error
}

type Model struct {
	coordinator *engine.Coordinator
	termCaps    *terminal.Capabilities

	snap       engine.Snapshot
	cover      image.Image
	coverLines []string
	palette    *artwork.Palette
	artFor     string

	width      int
	height     int
	hideHeader bool
	quitting   bool
}

type ModelConfig struct {
	Coordinator *engine.Coordinator
	TermCaps    *terminal.Capabilities
	HideHeader  bool
}

func NewModel(cfg ModelConfig) Model {
	return Model{
		coordinator: cfg.Coordinator,
		termCaps:    cfg.TermCaps,
		hideHeader:  cfg.HideHeader,
		palette:     artwork.DefaultPalette(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitForSnapshot(),
		tickCmd(),
	)
}

// waitForSnapshot blocks on the engine's snapshot channel and hands the
// result back to Update as a message.
func (m Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-m.coordinator.Snapshots()
		if !ok {
			return tea.Quit()
		}
		return snapshotMsg(snap)
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchArtworkCmd(url string) tea.Cmd {
	return func() tea.Msg {
		img, err := artwork.Fetch(url)
		if err != nil {
			return artworkMsg{url: url, err: err}
		}
		return artworkMsg{url: url, image: img, palette: artwork.ExtractPalette(img)}
	}
}
