package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jmhodges/clock"
	"github.com/notexe/reminder-cli/internal/config"
	"github.com/notexe/reminder-cli/internal/daemon"
	"github.com/notexe/reminder-cli/internal/logging"
	"github.com/notexe/reminder-cli/internal/reminder"
	"github.com/notexe/reminder-cli/internal/ui"
	"go.uber.org/zap"
)

// AppOptions wires an App to its environment.
type AppOptions struct {
	ConfigPath  string
	Out         io.Writer
	ErrOut      io.Writer
	In          io.Reader
	Clock       clock.Clock
	Interactive bool // Stdin is a terminal; enables pickers and confirmations
}

// App holds what every command needs. The store is opened on first use so
// commands like version and help work without a data directory.
type App struct {
	cfg         *config.Config
	configPath  string
	out         io.Writer
	errOut      io.Writer
	in          io.Reader
	clock       clock.Clock
	interactive bool
	formatter   *ui.Formatter
	logger      *zap.Logger
	closeLog    func() error
	root        *command

	store   *reminder.Store
	service *reminder.Service
}

func NewApp(cfg *config.Config, opts AppOptions) (*App, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.New(logging.Options{
		Path:      cfg.LogPath(),
		Level:     cfg.Log.Level,
		MaxSizeMB: cfg.Log.MaxSizeMB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}

	a := &App{
		cfg:         cfg,
		configPath:  opts.ConfigPath,
		out:         opts.Out,
		errOut:      opts.ErrOut,
		in:          opts.In,
		clock:       clk,
		interactive: opts.Interactive,
		formatter:   ui.NewFormatter(cfg.UI.ColoredOutput, cfg.UI.TimeFormat),
		logger:      logger.Named("cli"),
		closeLog:    closeLog,
	}
	a.root = a.commands()
	return a, nil
}

// Execute runs one command line. It also serves the interactive shell.
func (a *App) Execute(ctx context.Context, args []string) error {
	return a.root.execute(ctx, a.out, "", args)
}

func (a *App) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	errs = append(errs, a.closeLog())
	return errors.Join(errs...)
}

func (a *App) openStore() (*reminder.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := reminder.NewStore(a.cfg.DatabasePath())
	if err != nil {
		return nil, err
	}
	a.store = store
	return store, nil
}

func (a *App) reminders() (*reminder.Service, error) {
	if a.service != nil {
		return a.service, nil
	}
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	a.service = reminder.NewService(store, a.clock, a.logger)
	return a.service, nil
}

func (a *App) controller() (*daemon.Controller, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	return daemon.NewController(a.cfg.PIDPath(), store, a.logger), nil
}

func (a *App) println(s string) {
	fmt.Fprintln(a.out, s)
}
