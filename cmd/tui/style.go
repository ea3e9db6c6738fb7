package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/vancomm/lifesweeper/internal/mines"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	lowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	winStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	loseStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boardStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	menuStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("11")).
			Padding(1, 4)
	choiceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("201")).Bold(true)

	hiddenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	flagStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	mineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	spentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	clueColors  = []lipgloss.Color{"8", "12", "10", "9", "4", "1", "6", "13", "7"}
)

// glyph is how a cell is drawn on the board.
func glyph(s mines.CellState) string {
	switch s {
	case mines.Hidden:
		return hiddenStyle.Render("■")
	case mines.Flagged, mines.CorrectFlag:
		return flagStyle.Render("⚑")
	case mines.WrongFlag:
		return mineStyle.Render("✗")
	case mines.ExposedMineSurvived:
		return spentStyle.Render("✱")
	case mines.ExposedMineFatal:
		return mineStyle.Reverse(true).Render("✱")
	case mines.UnflaggedMine:
		return mineStyle.Render("✱")
	}
	if clue, ok := s.Clue(); ok {
		if clue == 0 {
			return hiddenStyle.Render("·")
		}
		return lipgloss.NewStyle().Foreground(clueColors[clue]).Render(s.String())
	}
	return s.String()
}

func helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return helpStyle.Render(strings.Join(parts, " • "))
}
