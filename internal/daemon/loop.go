// Package daemon runs the reconciliation loop that fires due reminders and
// controls the background process that hosts it.
package daemon

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmhodges/clock"
	"github.com/notexe/reminder-cli/internal/notify"
	"github.com/notexe/reminder-cli/internal/reminder"
	"go.uber.org/zap"
)

// HeartbeatWriter records loop health after every cycle.
type HeartbeatWriter interface {
	WriteHeartbeat(ctx context.Context, hb reminder.Heartbeat) error
}

// Report summarizes one reconciliation cycle.
type Report struct {
	Due     int // Records due at the start of the cycle
	Fired   int // Delivered and persisted as fired
	Failed  int // Delivery failed; left due for the next cycle
	Skipped int // Delivered, but rescheduled or deleted before persisting
}

// Loop polls storage, fires due reminders and persists the outcome. It
// runs one cycle at a time.
type Loop struct {
	storage   reminder.Storage
	notifier  notify.Notifier
	clock     clock.Clock
	interval  time.Duration
	logger    *zap.Logger
	heartbeat HeartbeatWriter

	pid         int
	startedAt   time.Time
	lastCycleAt time.Time
	fired       int
}

func New(storage reminder.Storage, notifier notify.Notifier, clk clock.Clock, interval time.Duration, logger *zap.Logger) *Loop {
	return &Loop{
		storage:  storage,
		notifier: notifier,
		clock:    clk,
		interval: interval,
		logger:   logger.Named("daemon"),
		pid:      os.Getpid(),
	}
}

// SetHeartbeat makes the loop report its health to w after each cycle.
func (l *Loop) SetHeartbeat(w HeartbeatWriter) {
	l.heartbeat = w
}

// Run executes a cycle immediately and then once per interval until ctx is
// cancelled. Cancellation takes effect between cycles; a running cycle
// always completes.
func (l *Loop) Run(ctx context.Context) error {
	if l.interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", l.interval)
	}

	l.startedAt = l.clock.Now()
	l.logger.Info("started", zap.Duration("interval", l.interval), zap.Int("pid", l.pid))

	l.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("shutting down", zap.Int("fired", l.fired))
			return nil
		case <-l.clock.After(l.interval):
			l.runCycle(ctx)
		}
	}
}

func (l *Loop) runCycle(ctx context.Context) {
	cycleCtx := context.WithoutCancel(ctx)

	report, err := l.Cycle(cycleCtx)
	l.fired += report.Fired

	hb := reminder.Heartbeat{
		PID:       l.pid,
		StartedAt: l.startedAt,
		Fired:     l.fired,
	}
	if err != nil {
		l.logger.Error("cycle failed", zap.Error(err))
		hb.LastError = err.Error()
	} else {
		l.lastCycleAt = l.clock.Now()
		if report.Due > 0 {
			l.logger.Info("cycle finished",
				zap.Int("due", report.Due),
				zap.Int("fired", report.Fired),
				zap.Int("failed", report.Failed),
				zap.Int("skipped", report.Skipped))
		}
	}
	hb.LastCycleAt = l.lastCycleAt

	if l.heartbeat != nil {
		if err := l.heartbeat.WriteHeartbeat(cycleCtx, hb); err != nil {
			l.logger.Warn("failed to write heartbeat", zap.Error(err))
		}
	}
}

// Cycle performs one reconciliation pass: load, compute due records,
// notify each in order, then persist the fired ones in a single update.
// Records whose notification fails stay due. Records rescheduled, paused
// or deleted while notifications were in flight keep that state; other
// edits are kept and the firing still applies.
func (l *Loop) Cycle(ctx context.Context) (Report, error) {
	now := l.clock.Now()

	records, err := l.storage.Load(ctx)
	if err != nil {
		return Report{}, err
	}
	due := reminder.NewRegistry(records).Due(now)
	report := Report{Due: len(due)}
	if len(due) == 0 {
		return report, nil
	}

	var delivered []reminder.Record
	for _, rec := range due {
		l.logger.Info("firing reminder", zap.String("id", rec.ShortID()), zap.String("title", rec.Title))
		if err := l.notifier.Notify(ctx, rec.Title, rec.Description); err != nil {
			report.Failed++
			l.logger.Warn("notification failed, will retry",
				zap.String("id", rec.ShortID()), zap.Error(err))
			continue
		}
		delivered = append(delivered, rec)
	}
	if len(delivered) == 0 {
		return report, nil
	}

	var fired, skipped int
	err = l.storage.Update(ctx, func(reg *reminder.Registry) error {
		fired, skipped = 0, 0
		for _, rec := range delivered {
			if !reg.MarkFired(rec, now) {
				skipped++
				l.logger.Info("reminder rescheduled during cycle, keeping edit", zap.String("id", rec.ShortID()))
				continue
			}
			fired++
			if updated, err := reg.Get(rec.ID); err == nil && updated.Schedule.IsRecurring() && updated.Completed {
				l.logger.Warn("recurring reminder has no further occurrence, marked completed",
					zap.String("id", rec.ShortID()), zap.Stringer("schedule", updated.Schedule))
			}
		}
		return nil
	})
	if err != nil {
		report.Failed += len(delivered)
		return report, err
	}

	report.Fired = fired
	report.Skipped = skipped
	return report, nil
}
