// cmd/lodestar/main.go
//
// This is the entry point for the Lodestar CLI.
// When you run `lodestar` from any directory, this is what executes.
//
// Flow:
// 1. Initialize the .lodestar folder in the working directory
// 2. Start the local completion-signal receiver (unless disabled)
// 3. Launch the journey TUI

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/lodestar/internal/config"
	"github.com/kingrea/lodestar/internal/logbook"
	"github.com/kingrea/lodestar/internal/signals"
	"github.com/kingrea/lodestar/internal/store"
	"github.com/kingrea/lodestar/internal/tui"
)

func main() {
	// The current working directory is the "project" we're working in
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
		os.Exit(1)
	}

	if err := config.InitLodestarDir(cwd); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing .lodestar directory: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.NewConfig(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	journey, err := logbook.New(cfg.JourneyLogPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening journey log: %v\n", err)
		os.Exit(1)
	}

	// The instrument surfaces post completion signals back to this
	// process; the receiver records them so the phase rail advances.
	receiver := signals.NewServer(
		signals.SettingsFromConfig(cfg),
		signals.WithProcessor(signals.NewRecorder(store.Open(cfg.RecordsPath()), signalLogger{journey})),
		signals.WithLogger(signalLogger{journey}),
	)
	if err := receiver.Start(context.Background()); err != nil {
		if !errors.Is(err, signals.ErrDisabled) {
			fmt.Fprintf(os.Stderr, "Error starting signal receiver: %v\n", err)
			os.Exit(1)
		}
	} else {
		journey.Info("completion signals accepted at %s", receiver.BaseURL())
	}
	defer func() {
		_ = receiver.Shutdown(context.Background())
	}()

	app, err := tui.NewApp(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting Lodestar: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(), // Use alternate screen buffer (like vim does)
	)

	// Run blocks until the user quits
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// signalLogger adapts the journey logbook to the signals.Logger interface.
type signalLogger struct {
	journey *logbook.Logbook
}

func (l signalLogger) Printf(format string, args ...any) {
	l.journey.Info(format, args...)
}
