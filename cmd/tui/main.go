package main

import (
	"context"
	"fmt"
	"hash/maphash"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lmittmann/tint"

	"github.com/vancomm/lifesweeper/internal/config"
	"github.com/vancomm/lifesweeper/internal/mines"
)

// setupLogging keeps log output off the terminal the game is drawn on. With
// LOG_FILE set both loggers write there.
func setupLogging() (*slog.Logger, func(), error) {
	mines.Log.SetOutput(io.Discard)
	if err := config.SetupEngineLog(mines.Log); err != nil {
		return nil, nil, err
	}

	path, ok := os.LookupEnv("LOG_FILE")
	if !ok || path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path+".tui", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	level := slog.LevelInfo
	if config.Development() {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(f, &tint.Options{Level: level, NoColor: true}))
	return logger, func() { f.Close() }, nil
}

func run() error {
	logger, closeLog, err := setupLogging()
	if err != nil {
		return fmt.Errorf("unable to set up logging: %w", err)
	}
	defer closeLog()

	presets, err := config.LoadPresets()
	if err != nil {
		return err
	}
	interval, err := config.TickInterval()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rnd := rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
	m := newModel(ctx, presets, interval, rnd, logger)
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.send = p.Send

	_, err = p.Run()
	return err
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "lifesweeper:", err)
		os.Exit(1)
	}
}
