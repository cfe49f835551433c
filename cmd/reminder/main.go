package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/notexe/reminder-cli/internal/config"
	"github.com/notexe/reminder-cli/internal/schedule"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const formatsHint = `Supported time formats:
  Absolute:  "2025-12-25 10:00", "2025-12-25T10:00", RFC 3339
  Relative:  "30m", "2h", "1d", "1w", "in 45 minutes"
  Natural:   "today 18:30", "tomorrow 9am", "next monday 14:00", "friday"
Supported recurring formats:
  Cron:      "0 0 9 * * *" (sec min hour day month weekday)
  Phrases:   "every day at 9am", "every weekday at 8:30", "every 15 minutes"`

func main() {
	flags := pflag.NewFlagSet("reminder", pflag.ContinueOnError)
	flags.SetInterspersed(false)
	configPath := flags.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	noColor := flags.Bool("no-color", false, "Disable colored output")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stdout, "Global flags:\n%s", flags.FlagUsages())
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if *noColor {
		cfg.UI.ColoredOutput = false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	opts := AppOptions{
		Out:         os.Stdout,
		ErrOut:      os.Stderr,
		In:          os.Stdin,
		Interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
	if flags.Changed("config") {
		opts.ConfigPath = *configPath
	}

	app, err := NewApp(cfg, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = app.Execute(ctx, flags.Args())
	stop()
	if closeErr := app.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var parseErr *schedule.ParseError
		if errors.As(err, &parseErr) {
			fmt.Fprintf(os.Stderr, "\n%s\n", formatsHint)
		}
		os.Exit(1)
	}
}
