// Package logging builds the zap loggers used by the CLI and the daemon and
// manages the rotating log file behind them.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	Path      string // Log file; empty disables file output
	Level     string // debug, info, warn or error
	MaxSizeMB int    // Rotation threshold for Path
	Console   io.Writer
}

// New returns a logger writing console-encoded lines to the rotating file
// at opts.Path and, when set, to opts.Console. The returned close function
// flushes and closes the file.
func New(opts Options) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	var syncers []zapcore.WriteSyncer
	closeFn := func() error { return nil }

	if opts.Path != "" {
		file := newFile(opts.Path, opts.MaxSizeMB)
		syncers = append(syncers, zapcore.AddSync(file))
		closeFn = file.Close
	}
	if opts.Console != nil {
		syncers = append(syncers, zapcore.AddSync(opts.Console))
	}
	if len(syncers) == 0 {
		return zap.NewNop(), closeFn, nil
	}

	logger := zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.NewMultiWriteSyncer(syncers...),
		level,
	))

	return logger, func() error {
		logger.Sync()
		return closeFn()
	}, nil
}

// newFile returns the size-rotated log at path. One backup is kept, named
// by lumberjack as <name>-<UTC timestamp><ext> next to path.
func newFile(path string, maxSizeMB int) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: 1,
	}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}

// Stderr returns a logger for commands that run without a log file.
func Stderr(level string) *zap.Logger {
	logger, _, err := New(Options{Level: level, Console: os.Stderr})
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
