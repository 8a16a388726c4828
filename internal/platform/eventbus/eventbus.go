package eventbus

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/agrilink/marketplace/modules/shared/events"
)

// DefaultMaxConcurrency bounds how many handlers run at once per event.
const DefaultMaxConcurrency = 8

// InMemoryEventBus delivers events to registered handlers immediately.
// Handlers for one event run concurrently; Publish returns once all of
// them have finished. Handler failures are logged and do not stop the others.
type InMemoryEventBus struct {
	registry       HandlerRegistry
	logger         *slog.Logger
	maxConcurrency int
}

func New(registry HandlerRegistry, logger *slog.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventBus{
		registry:       registry,
		logger:         logger,
		maxConcurrency: DefaultMaxConcurrency,
	}
}

// Publish implements events.Publisher.
func (b *InMemoryEventBus) Publish(ctx context.Context, evts ...events.Event) error {
	for _, event := range evts {
		b.dispatch(ctx, event)
	}
	return nil
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, event events.Event) {
	handlers := b.registry.HandlersFor(event.EventType())

	b.logger.Debug("publishing event",
		slog.String("event_type", event.EventType().String()),
		slog.String("event_id", event.EventID()),
		slog.Int("handler_count", len(handlers)),
	)

	var g errgroup.Group
	g.SetLimit(b.maxConcurrency)
	for _, handler := range handlers {
		g.Go(func() error {
			if err := handler.Handle(ctx, event); err != nil {
				b.logger.Error("event handler failed",
					slog.String("event_type", event.EventType().String()),
					slog.String("event_id", event.EventID()),
					slog.Any("error", err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Compile-time interface check.
var _ events.Publisher = (*InMemoryEventBus)(nil)
