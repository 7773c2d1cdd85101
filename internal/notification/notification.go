package notification

import (
	"context"
	"log/slog"
)

const (
	// KindDeposit indicates funds recorded into a client wallet.
	KindDeposit = "deposit"
	// KindWithdrawal indicates funds recorded out of a client wallet.
	KindWithdrawal = "withdrawal"
	// KindTaskAssigned indicates a task was assigned to a team member.
	KindTaskAssigned = "task_assigned"
	// KindCrossClosed indicates a cross position was closed with a result.
	KindCrossClosed = "cross_closed"
)

// Message describes a notification payload.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers notifications to downstream systems. The desk's Telegram
// sender plugs in behind this interface.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes notifications to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "destination", message.Destination, "body", message.Body)
	return nil
}
