package notify

import (
	"context"

	"go.uber.org/zap"
)

// Log writes reminders to the daemon log. It never fails.
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger.Named("reminder")}
}

func (l *Log) Notify(_ context.Context, title, description string) error {
	fields := []zap.Field{zap.String("title", title)}
	if description != "" {
		fields = append(fields, zap.String("description", description))
	}
	l.logger.Info("reminder fired", fields...)
	return nil
}
