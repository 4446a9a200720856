// Package notify provides the notification channels alert messages are
// dispatched through.
package notify

import (
	"context"
	"log/slog"
)

// Notifier accepts a formatted alert message for delivery.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// LogNotifier writes messages to a logger instead of an external channel.
// Used when no Telegram credentials are configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, message string) error {
	n.logger.Info("Notification (log only)", "message", message)
	return nil
}
