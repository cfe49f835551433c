package daemon

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/notexe/reminder-cli/internal/reminder"
	"go.uber.org/zap"
)

// ErrNotRunning is returned by Stop when no live daemon holds the pid file.
var ErrNotRunning = errors.New("daemon is not running")

// HeartbeatReader exposes the health row written by a running loop.
type HeartbeatReader interface {
	ReadHeartbeat(ctx context.Context) (reminder.Heartbeat, bool, error)
}

// Status describes the background daemon as seen from another process.
type Status struct {
	Running      bool
	PID          int
	Heartbeat    reminder.Heartbeat
	HasHeartbeat bool
}

// Stale reports whether a running daemon has missed its last cycles.
func (s Status) Stale(now time.Time, interval time.Duration) bool {
	if !s.Running || !s.HasHeartbeat || s.Heartbeat.LastCycleAt.IsZero() {
		return false
	}
	return now.Sub(s.Heartbeat.LastCycleAt) > 3*interval
}

// Controller starts, stops and inspects the daemon through its pid file.
type Controller struct {
	pidPath    string
	heartbeats HeartbeatReader
	logger     *zap.Logger
}

func NewController(pidPath string, heartbeats HeartbeatReader, logger *zap.Logger) *Controller {
	return &Controller{
		pidPath:    pidPath,
		heartbeats: heartbeats,
		logger:     logger.Named("control"),
	}
}

// ReadPID returns the pid recorded in the pid file, or 0 when there is
// none. A malformed pid file is removed.
func (c *Controller) ReadPID() (int, error) {
	data, err := os.ReadFile(c.pidPath)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read pid file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		c.logger.Warn("removing malformed pid file", zap.String("path", c.pidPath))
		return 0, c.RemovePID()
	}
	return pid, nil
}

// WritePID records pid, refusing when another live process already holds
// the file.
func (c *Controller) WritePID(pid int) error {
	current, err := c.ReadPID()
	if err != nil {
		return err
	}
	if current != 0 && current != pid && processAlive(current) {
		return fmt.Errorf("daemon already running (pid %d)", current)
	}

	if err := os.MkdirAll(filepath.Dir(c.pidPath), 0o755); err != nil {
		return fmt.Errorf("failed to create pid directory: %w", err)
	}
	if err := os.WriteFile(c.pidPath, []byte(strconv.Itoa(pid)+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	return nil
}

func (c *Controller) RemovePID() error {
	if err := os.Remove(c.pidPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove pid file: %w", err)
	}
	return nil
}

// Status reports liveness from the pid file and the last heartbeat. A pid
// file naming a dead process is cleaned up.
func (c *Controller) Status(ctx context.Context) (Status, error) {
	pid, err := c.ReadPID()
	if err != nil {
		return Status{}, err
	}

	var st Status
	if pid != 0 {
		if processAlive(pid) {
			st.Running = true
			st.PID = pid
		} else if err := c.RemovePID(); err != nil {
			return Status{}, err
		}
	}

	if c.heartbeats != nil {
		hb, ok, err := c.heartbeats.ReadHeartbeat(ctx)
		if err != nil {
			return st, err
		}
		st.Heartbeat, st.HasHeartbeat = hb, ok
	}
	return st, nil
}

// Start launches executable with args as a detached background process
// with its output discarded, and records its pid.
func (c *Controller) Start(executable string, args ...string) (int, error) {
	st, err := c.Status(context.Background())
	if err != nil {
		return 0, err
	}
	if st.Running {
		return 0, fmt.Errorf("daemon already running (pid %d)", st.PID)
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", os.DevNull, err)
	}
	defer devNull.Close()

	cmd := exec.Command(executable, args...)
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start daemon process: %w", err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		c.logger.Warn("failed to release daemon process", zap.Error(err))
	}

	if err := c.WritePID(pid); err != nil {
		return pid, err
	}
	c.logger.Info("daemon started", zap.Int("pid", pid))
	return pid, nil
}

// Stop sends SIGTERM to the daemon and waits up to timeout for it to
// exit before removing the pid file.
func (c *Controller) Stop(ctx context.Context, timeout time.Duration) (int, error) {
	pid, err := c.ReadPID()
	if err != nil {
		return 0, err
	}
	if pid == 0 || !processAlive(pid) {
		if err := c.RemovePID(); err != nil {
			return 0, err
		}
		return 0, ErrNotRunning
	}

	if err := terminate(pid); err != nil {
		return pid, fmt.Errorf("failed to signal daemon (pid %d): %w", pid, err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for processAlive(pid) {
		select {
		case <-ctx.Done():
			return pid, fmt.Errorf("daemon (pid %d) did not exit within %s", pid, timeout)
		case <-ticker.C:
		}
	}

	c.logger.Info("daemon stopped", zap.Int("pid", pid))
	return pid, c.RemovePID()
}
