package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"

	"verso.dev/verso/internal/lyrics"
	"verso.dev/verso/internal/player"
)

const lyricContext = 4 // lines shown above and below the active one

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.snap.Status == player.StatusNoPlayer {
		return m.viewBanner("no player", "start a media player to see lyrics")
	}

	var sections []string
	if !m.hideHeader {
		sections = append(sections, m.viewHeader())
	}
	if len(m.coverLines) > 0 {
		sections = append(sections, strings.Join(m.coverLines, "\n"))
	}
	sections = append(sections, m.viewLyrics())

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) viewBanner(title, subtitle string) string {
	banner := figure.NewFigure(title, "", true).String()

	bannerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Dim))
	subStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Secondary)).Italic(true)

	content := lipgloss.JoinVertical(lipgloss.Center,
		bannerStyle.Render(banner),
		subStyle.Render(subtitle),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) viewHeader() string {
	if m.snap.Track == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Primary)).Bold(true)
	metaStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Dim))

	title := titleStyle.Render(fmt.Sprintf("%s - %s", m.snap.Track.Artist, m.snap.Track.Title))

	var parts []string
	parts = append(parts, m.snap.Status.String())
	if m.snap.Doc != nil {
		parts = append(parts, m.snap.Doc.Provider)
	}
	if m.snap.Offset != 0 {
		parts = append(parts, fmt.Sprintf("offset %+.1fs", m.snap.Offset))
	}
	meta := metaStyle.Render(strings.Join(parts, " · "))

	return lipgloss.JoinVertical(lipgloss.Center, title, meta)
}

func (m Model) viewLyrics() string {
	doc := m.snap.Doc
	if doc == nil {
		if m.snap.Err != nil {
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Dim)).Italic(true)
			return style.Render("no lyrics found")
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Dim))
		return style.Render("searching for lyrics...")
	}

	active := m.snap.Highlight.Line
	start := active - lyricContext
	if start < 0 {
		start = 0
	}
	end := active + lyricContext
	if active < 0 {
		start, end = 0, 2*lyricContext
	}
	if end >= len(doc.Lines) {
		end = len(doc.Lines) - 1
	}

	rendered := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		rendered = append(rendered, m.renderLine(&doc.Lines[i], i == active))
	}

	return lipgloss.JoinVertical(lipgloss.Center, rendered...)
}

// renderLine styles one lyric line. On word-synced documents the active
// line gets karaoke treatment: sung words bright, upcoming words dim.
func (m Model) renderLine(line *lyrics.Line, active bool) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Dim))
	if !active {
		return dimStyle.Render(line.Text)
	}

	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Primary)).Bold(true)
	if !line.HasWords() || m.snap.Highlight.Word < 0 {
		return activeStyle.Render(line.Text)
	}

	upcomingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Secondary))

	var sung, upcoming []string
	for i := range line.Words {
		if i <= m.snap.Highlight.Word {
			sung = append(sung, line.Words[i].Text)
		} else {
			upcoming = append(upcoming, line.Words[i].Text)
		}
	}

	parts := []string{activeStyle.Render(strings.Join(sung, " "))}
	if len(upcoming) > 0 {
		parts = append(parts, upcomingStyle.Render(strings.Join(upcoming, " ")))
	}
	return strings.Join(parts, " ")
}
