package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"verso.dev/verso/internal/artwork"
	"verso.dev/verso/internal/engine"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.coverLines = m.renderCover()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case snapshotMsg:
		return m.handleSnapshot(msg)

	case artworkMsg:
		return m.handleArtwork(msg)

	case tickMsg:
		return m, tickCmd()
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "up", "k", "+", "=":
		m.coordinator.AdjustOffset(0.1)
	case "down", "j", "-":
		m.coordinator.AdjustOffset(-0.1)
	case "right", "l":
		m.coordinator.AdjustOffset(0.5)
	case "left", "h":
		m.coordinator.AdjustOffset(-0.5)
	case "0":
		m.coordinator.AdjustOffset(-m.snap.Offset)

	case "tab", "i":
		m.hideHeader = !m.hideHeader
	}

	return m, nil
}

func (m Model) handleSnapshot(msg snapshotMsg) (tea.Model, tea.Cmd) {
	m.snap = engine.Snapshot(msg)

	cmds := []tea.Cmd{m.waitForSnapshot()}

	if m.snap.ArtURL != m.artFor {
		m.artFor = m.snap.ArtURL
		m.cover = nil
		m.coverLines = nil
		m.palette = artwork.DefaultPalette()
		if m.snap.ArtURL != "" {
			cmds = append(cmds, fetchArtworkCmd(m.snap.ArtURL))
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleArtwork(msg artworkMsg) (tea.Model, tea.Cmd) {
	// a slow fetch for a previous track may land after a change
	if msg.url != m.artFor {
		return m, nil
	}
	if msg.err != nil {
		return m, nil
	}

	m.cover = msg.image
	m.palette = msg.palette
	m.coverLines = m.renderCover()
	return m, nil
}

func (m Model) renderCover() []string {
	if m.cover == nil || m.width == 0 {
		return nil
	}

	size := m.height / 3
	if size < 8 {
		return nil
	}
	return artwork.RenderHalfBlock(m.cover, size*2, size)
}
