// Package notifications tells users about things that happened to them.
// It has no HTTP surface; it only subscribes to events.
package notifications

import (
	"log/slog"

	"github.com/agrilink/marketplace/modules/notifications/application/eventhandlers"
	"github.com/agrilink/marketplace/modules/notifications/domain"
	"github.com/agrilink/marketplace/modules/notifications/infrastructure/dedup"
	"github.com/agrilink/marketplace/modules/notifications/infrastructure/notifier"
	"github.com/agrilink/marketplace/modules/shared/events"
	"github.com/agrilink/marketplace/modules/shared/events/contracts"
)

// Module represents the notification module entry point.
type Module struct{}

type Config struct {
	EventSubscriber events.Subscriber
	// Deduplicator defaults to a process-local claim set.
	Deduplicator domain.Deduplicator
	// Notifier defaults to the structured log.
	Notifier domain.Notifier
	Logger   *slog.Logger
}

// New initializes the notification module and subscribes to events.
func New(cfg Config) *Module {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "notifications")

	dd := cfg.Deduplicator
	if dd == nil {
		dd = dedup.NewMemory(dedup.DefaultTTL)
	}
	n := cfg.Notifier
	if n == nil {
		n = notifier.NewLog(logger)
	}

	subscriptions := []struct {
		eventType events.EventType
		handler   events.Handler
	}{
		{contracts.OrderPlacedEventType, eventhandlers.NewOrderPlacedHandler(dd, n, logger)},
		{contracts.UserRegisteredEventType, eventhandlers.NewUserRegisteredHandler(dd, n, logger)},
	}
	for _, s := range subscriptions {
		if err := cfg.EventSubscriber.Subscribe(s.eventType, s.handler); err != nil {
			logger.Error("failed to subscribe", slog.String("event_type", s.eventType.String()), slog.Any("error", err))
		}
	}

	return &Module{}
}
