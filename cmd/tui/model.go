package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vancomm/lifesweeper/internal/clock"
	"github.com/vancomm/lifesweeper/internal/config"
	"github.com/vancomm/lifesweeper/internal/mines"
)

type screen int

const (
	menuScreen screen = iota
	gameScreen
)

// tickMsg carries the generation of the clock that sent it. Ticks from a
// clock that has since been replaced are ignored.
type tickMsg struct{ gen int }

type model struct {
	ctx      context.Context
	presets  config.Presets
	interval time.Duration
	rnd      *rand.Rand
	logger   *slog.Logger
	send     func(tea.Msg)

	screen     screen
	menuCursor int

	preset config.Preset
	game   *mines.Game
	cursor mines.Point
	ticker *clock.Ticker
	gen    int

	width, height int
}

func newModel(
	ctx context.Context,
	presets config.Presets,
	interval time.Duration,
	rnd *rand.Rand,
	logger *slog.Logger,
) *model {
	return &model{
		ctx:      ctx,
		presets:  presets,
		interval: interval,
		rnd:      rnd,
		logger:   logger,
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tickMsg:
		m.onTick(msg)
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.stopClock()
			return m, tea.Quit
		}
		if m.screen == menuScreen {
			return m.updateMenu(msg)
		}
		return m.updateGame(msg)
	}
	return m, nil
}

func (m *model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.menuCursor < len(m.presets)-1 {
			m.menuCursor++
		}
	case key.Matches(msg, keys.Reveal):
		if err := m.startRound(m.presets[m.menuCursor]); err != nil {
			m.logger.Error("unable to start round", slog.Any("error", err))
		}
	}
	return m, nil
}

func (m *model) updateGame(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.game.Params()
	switch {
	case key.Matches(msg, keys.Menu):
		m.toMenu()
	case key.Matches(msg, keys.Retry):
		if err := m.startRound(m.preset); err != nil {
			m.logger.Error("unable to start round", slog.Any("error", err))
		}
	case key.Matches(msg, keys.Up):
		m.cursor.Row = max(m.cursor.Row-1, 0)
	case key.Matches(msg, keys.Down):
		m.cursor.Row = min(m.cursor.Row+1, p.Rows-1)
	case key.Matches(msg, keys.Left):
		m.cursor.Col = max(m.cursor.Col-1, 0)
	case key.Matches(msg, keys.Right):
		m.cursor.Col = min(m.cursor.Col+1, p.Cols-1)
	case key.Matches(msg, keys.Reveal):
		before := m.game.Phase()
		out := m.game.Reveal(m.cursor)
		if before == mines.NotStarted && out.Phase == mines.Playing {
			m.startClock()
		}
		m.afterAction(out)
	case key.Matches(msg, keys.Flag):
		m.afterAction(m.game.ToggleFlag(m.cursor))
	}
	return m, nil
}

func (m *model) afterAction(out mines.Outcome) {
	if out.Phase.Terminal() {
		m.stopClock()
		m.logger.Debug(
			"round over",
			slog.String("result", out.Phase.Result()),
			slog.Int("lives", out.Lives),
			slog.Int("timeRemaining", out.TimeRemaining),
		)
	}
}

func (m *model) onTick(msg tickMsg) {
	if m.game == nil || msg.gen != m.gen {
		return
	}
	m.afterAction(m.game.Tick())
}

func (m *model) startRound(preset config.Preset) error {
	m.stopClock()
	game, err := mines.Start(preset.GameParams, m.rnd)
	if err != nil {
		return err
	}
	m.preset = preset
	m.game = game
	m.cursor = mines.Point{Row: preset.Rows / 2, Col: preset.Cols / 2}
	m.screen = gameScreen
	return nil
}

func (m *model) toMenu() {
	m.stopClock()
	m.game = nil
	m.screen = menuScreen
}

func (m *model) startClock() {
	if m.send == nil {
		return
	}
	m.gen++
	gen, send := m.gen, m.send
	m.ticker = clock.Start(m.ctx, m.interval, func() bool {
		send(tickMsg{gen: gen})
		return true
	})
}

// stopClock invalidates outstanding ticks. The ticker is stopped in the
// background since its callback may be blocked handing a tick to the
// program loop that is running this very update.
func (m *model) stopClock() {
	m.gen++
	if m.ticker == nil {
		return
	}
	t := m.ticker
	m.ticker = nil
	go t.Stop()
}

func (m *model) View() string {
	var body string
	if m.screen == menuScreen {
		body = m.menuView()
	} else {
		body = m.gameView()
	}
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m *model) menuView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("LIFESWEEPER") + "\n\n")
	b.WriteString("Select difficulty:\n")
	for i, p := range m.presets {
		line := fmt.Sprintf(
			"%-8s %2dx%-2d %3d mines  %d %s  %s",
			p.Name, p.Rows, p.Cols, p.MineCount, p.Lives,
			plural(p.Lives, "life", "lives"), formatTime(p.TimeLimit, m.interval),
		)
		if i == m.menuCursor {
			b.WriteString(choiceStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	b.WriteString("\n" + helpLine([]key.Binding{keys.Up, keys.Down, keys.Reveal, keys.Quit}))
	return menuStyle.Render(b.String())
}

func (m *model) gameView() string {
	p := m.game.Params()
	phase := m.game.Phase()
	grid := m.game.Disclosure()

	var board strings.Builder
	for row := range p.Rows {
		for col := range p.Cols {
			pt := mines.Point{Row: row, Col: col}
			cell := glyph(grid.At(p.Cols, pt))
			if pt == m.cursor && !phase.Terminal() {
				cell = lipgloss.NewStyle().Reverse(true).Render(cell)
			}
			board.WriteString(cell)
			if col < p.Cols-1 {
				board.WriteString(" ")
			}
		}
		if row < p.Rows-1 {
			board.WriteString("\n")
		}
	}

	timeLeft := formatTime(m.game.TimeRemaining(), m.interval)
	if m.game.TimeRemaining()*3 <= p.TimeLimit {
		timeLeft = lowStyle.Render(timeLeft)
	}
	status := statusStyle.Render(fmt.Sprintf(
		"%s | LIVES: %s | MINES: %d/%d | TIME: ",
		strings.ToUpper(m.preset.Name),
		strings.Repeat("♥", m.game.Lives())+strings.Repeat("♡", p.Lives-m.game.Lives()),
		m.game.FlagCount(), p.MineCount,
	)) + timeLeft

	parts := []string{status, boardStyle.Render(board.String())}
	if msg := resultMessage(phase, m.game.Lives(), m.game.TimeRemaining(), m.interval); msg != "" {
		parts = append(parts, msg)
	}
	parts = append(parts, helpLine(keys.gameHelp()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func resultMessage(phase mines.Phase, lives, timeLeft int, interval time.Duration) string {
	switch phase {
	case mines.Won:
		return winStyle.Render(fmt.Sprintf(
			"Cleared! %d %s and %s to spare.",
			lives, plural(lives, "life", "lives"), formatTime(timeLeft, interval),
		))
	case mines.LostLives:
		return loseStyle.Render("Boom! Out of lives.")
	case mines.LostTime:
		return loseStyle.Render("Time's up!")
	}
	return ""
}

func formatTime(ticks int, interval time.Duration) string {
	d := time.Duration(ticks) * interval
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
