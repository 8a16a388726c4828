// Package notifier delivers notices.
package notifier

import (
	"context"
	"log/slog"

	"github.com/agrilink/marketplace/modules/notifications/domain"
)

// Log writes notices to the structured log. Email delivery belongs to the
// BaaS; this records what the user was told.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(ctx context.Context, n domain.Notice) error {
	l.logger.InfoContext(ctx, "notice sent",
		slog.String("kind", string(n.Kind)),
		slog.String("event_id", n.EventID),
		slog.String("user_id", n.UserID),
		slog.String("recipient", n.Recipient),
		slog.String("subject", n.Subject),
		slog.String("body", n.Body),
	)
	return nil
}
