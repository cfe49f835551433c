package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/notexe/reminder-cli/internal/daemon"
	"github.com/notexe/reminder-cli/internal/logging"
	"github.com/notexe/reminder-cli/internal/notify"
	"github.com/notexe/reminder-cli/internal/shell"
	"github.com/notexe/reminder-cli/internal/ui"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const stopTimeout = 10 * time.Second

func (a *App) pollInterval() time.Duration {
	return time.Duration(a.cfg.Daemon.PollInterval) * time.Second
}

func (a *App) daemonCommand() *command {
	return &command{
		name:    "daemon",
		summary: "Manage the background daemon",
		subs: []*command{
			{
				name:    "start",
				summary: "Start the daemon in the background",
				run:     a.daemonStart,
			},
			{
				name:    "stop",
				summary: "Stop the running daemon",
				run:     a.daemonStop,
			},
			{
				name:    "status",
				summary: "Show daemon status",
				run:     a.daemonStatus,
			},
			{
				name:    "run",
				summary: "Run the daemon in the foreground",
				run:     a.daemonRun,
			},
			{
				name:    "install",
				summary: "Install a login service that keeps the daemon running",
				run:     a.daemonInstall,
			},
		},
	}
}

// daemonOptions locates this binary and the absolute config path for a
// detached or service-managed daemon.
func (a *App) daemonOptions() (daemon.AutostartOptions, error) {
	executable, err := os.Executable()
	if err != nil {
		return daemon.AutostartOptions{}, fmt.Errorf("failed to locate executable: %w", err)
	}
	opts := daemon.AutostartOptions{Executable: executable}
	if a.configPath != "" {
		if opts.ConfigPath, err = filepath.Abs(a.configPath); err != nil {
			return daemon.AutostartOptions{}, err
		}
	}
	return opts, nil
}

func (a *App) daemonStart(context.Context, *pflag.FlagSet, []string) error {
	ctl, err := a.controller()
	if err != nil {
		return err
	}
	opts, err := a.daemonOptions()
	if err != nil {
		return err
	}

	var args []string
	if opts.ConfigPath != "" {
		args = append(args, "--config", opts.ConfigPath)
	}
	args = append(args, "daemon", "run")

	pid, err := ctl.Start(opts.Executable, args...)
	if err != nil {
		return err
	}
	a.println(a.formatter.FormatSuccess(fmt.Sprintf("Daemon started (PID: %d)", pid)))
	a.println(a.formatter.FormatDim("Logs: " + a.cfg.LogPath()))
	return nil
}

func (a *App) daemonStop(ctx context.Context, _ *pflag.FlagSet, _ []string) error {
	ctl, err := a.controller()
	if err != nil {
		return err
	}

	spinner := ui.NewSpinner(a.out, a.formatter, a.interactive)
	spinner.Start("Stopping daemon...")
	pid, err := ctl.Stop(ctx, stopTimeout)
	if errors.Is(err, daemon.ErrNotRunning) {
		spinner.Stop()
		a.println(a.formatter.FormatWarning("Daemon is not running"))
		return nil
	}
	if err != nil {
		spinner.StopWithError("Failed to stop daemon")
		return err
	}
	spinner.StopWithMessage(fmt.Sprintf("Daemon stopped (PID: %d)", pid))
	return nil
}

func (a *App) daemonStatus(ctx context.Context, _ *pflag.FlagSet, _ []string) error {
	ctl, err := a.controller()
	if err != nil {
		return err
	}
	st, err := ctl.Status(ctx)
	if err != nil {
		return err
	}
	a.println(a.formatter.FormatDaemonStatus(st, a.clock.Now(), a.pollInterval()))
	return nil
}

// daemonRun hosts the loop in this process until ctx is cancelled. Log
// lines also go to stderr so service managers capture them.
func (a *App) daemonRun(ctx context.Context, _ *pflag.FlagSet, _ []string) error {
	// Replace the file-only CLI logger so a single handle owns rotation.
	if err := a.closeLog(); err != nil {
		return err
	}
	logger, closeLog, err := logging.New(logging.Options{
		Path:      a.cfg.LogPath(),
		Level:     a.cfg.Log.Level,
		MaxSizeMB: a.cfg.Log.MaxSizeMB,
		Console:   a.errOut,
	})
	if err != nil {
		return err
	}
	a.logger, a.closeLog = logger, closeLog

	notifier, err := notify.FromConfig(a.cfg.Notify, logger)
	if err != nil {
		return err
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	ctl := daemon.NewController(a.cfg.PIDPath(), store, logger)
	if err := ctl.WritePID(os.Getpid()); err != nil {
		return err
	}
	defer func() {
		if err := ctl.RemovePID(); err != nil {
			logger.Warn("failed to remove pid file", zap.Error(err))
		}
	}()
	if err := store.ClearHeartbeat(ctx); err != nil {
		logger.Warn("failed to clear previous heartbeat", zap.Error(err))
	}

	logger.Info("notification backends", zap.Strings("backends", notifier.Backends()))

	loop := daemon.New(store, notifier, a.clock, a.pollInterval(), logger)
	loop.SetHeartbeat(store)
	return loop.Run(ctx)
}

func (a *App) daemonInstall(context.Context, *pflag.FlagSet, []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to locate home directory: %w", err)
	}
	opts, err := a.daemonOptions()
	if err != nil {
		return err
	}

	inst, err := daemon.InstallAutostart(runtime.GOOS, home, opts)
	if err != nil {
		return err
	}
	a.println(a.formatter.FormatSuccess("Wrote " + inst.Path))
	a.println("Enable it with:")
	a.println("  " + inst.Enable)
	return nil
}

func (a *App) logsCommand() *command {
	return &command{
		name:    "logs",
		summary: "Inspect the daemon log",
		subs: []*command{
			{
				name:    "show",
				summary: "Print the last log lines",
				flags: func(fs *pflag.FlagSet) {
					fs.IntP("lines", "n", 50, "number of lines to show")
				},
				run: func(_ context.Context, fs *pflag.FlagSet, _ []string) error {
					n, _ := fs.GetInt("lines")
					lines, err := logging.Tail(a.cfg.LogPath(), n)
					if err != nil {
						return err
					}
					a.println(a.formatter.FormatLogLines(lines))
					return nil
				},
			},
			{
				name:    "info",
				summary: "Show log location and size",
				run: func(context.Context, *pflag.FlagSet, []string) error {
					current, rotated, err := logging.Size(a.cfg.LogPath())
					if err != nil {
						return err
					}
					a.println(a.formatter.FormatLogInfo(a.cfg.LogPath(), current, rotated, a.cfg.Log.MaxSizeMB))
					return nil
				},
			},
			{
				name:    "clear",
				summary: "Empty the log",
				run: func(context.Context, *pflag.FlagSet, []string) error {
					if err := logging.Clear(a.cfg.LogPath()); err != nil {
						return err
					}
					a.println(a.formatter.FormatSuccess("Logs cleared"))
					return nil
				},
			},
		},
	}
}

func (a *App) shellCommand() *command {
	return &command{
		name:    "shell",
		summary: "Start the interactive shell",
		run: func(ctx context.Context, _ *pflag.FlagSet, _ []string) error {
			sh, err := shell.New(a, a.formatter, filepath.Join(a.cfg.DataDir, "shell_history"), version)
			if err != nil {
				return err
			}
			return sh.Run(ctx)
		},
	}
}
