// Package notify delivers fired reminders to the user through desktop
// notifications, a Telegram chat or the log.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/notexe/reminder-cli/internal/config"
	"go.uber.org/zap"
)

// Notifier delivers a single reminder.
type Notifier interface {
	Notify(ctx context.Context, title, description string) error
}

// NotificationError reports a delivery failure on one backend.
type NotificationError struct {
	Backend string
	Err     error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("%s notification failed: %v", e.Backend, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

// Multi fans a notification out to every backend. Delivery succeeds when at
// least one backend succeeds. When all fail and FallbackToLog is set the
// reminder is written to the log and counted as delivered.
type Multi struct {
	backends      []namedNotifier
	fallback      *Log
	fallbackToLog bool
	logger        *zap.Logger
}

type namedNotifier struct {
	name string
	Notifier
}

func NewMulti(logger *zap.Logger, fallbackToLog bool) *Multi {
	return &Multi{
		fallback:      NewLog(logger),
		fallbackToLog: fallbackToLog,
		logger:        logger.Named("notify"),
	}
}

// Add registers a backend under name.
func (m *Multi) Add(name string, n Notifier) *Multi {
	m.backends = append(m.backends, namedNotifier{name: name, Notifier: n})
	return m
}

// Backends returns the registered backend names in order.
func (m *Multi) Backends() []string {
	names := make([]string, 0, len(m.backends))
	for _, b := range m.backends {
		names = append(names, b.name)
	}
	return names
}

func (m *Multi) Notify(ctx context.Context, title, description string) error {
	var errs []error
	delivered := 0

	for _, b := range m.backends {
		if err := b.Notify(ctx, title, description); err != nil {
			var ne *NotificationError
			if !errors.As(err, &ne) {
				err = &NotificationError{Backend: b.name, Err: err}
			}
			m.logger.Warn("backend failed", zap.String("backend", b.name), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		delivered++
	}

	if delivered > 0 {
		return nil
	}
	if m.fallbackToLog {
		m.logger.Warn("all backends failed, falling back to log", zap.String("title", title))
		return m.fallback.Notify(ctx, title, description)
	}
	if len(errs) == 0 {
		return &NotificationError{Backend: "none", Err: errors.New("no notification backends configured")}
	}
	return errors.Join(errs...)
}

// FromConfig builds the notifier chain for the configured backends.
func FromConfig(cfg config.NotifyConfig, logger *zap.Logger) (*Multi, error) {
	multi := NewMulti(logger, cfg.FallbackToLog)

	for _, backend := range cfg.Backends {
		switch backend {
		case config.BackendDesktop:
			multi.Add(backend, NewDesktop())
		case config.BackendTelegram:
			if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == 0 {
				return nil, fmt.Errorf("telegram backend requires bot_token and chat_id")
			}
			multi.Add(backend, NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.APIEndpoint))
		case config.BackendLog:
			multi.Add(backend, NewLog(logger))
		default:
			return nil, fmt.Errorf("unknown notification backend %q", backend)
		}
	}

	return multi, nil
}
