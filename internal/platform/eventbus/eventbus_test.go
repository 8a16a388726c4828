package eventbus_test

import (
	"context"
	"errors"
	"log/slog"
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/agrilink/marketplace/internal/platform/eventbus"
	"github.com/agrilink/marketplace/modules/shared/events"
)

const testEventType events.EventType = "test.Happened"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInMemoryEventBus_DeliversToAllHandlers(t *testing.T) {
	defer goleak.VerifyNone(t)

	registry := eventbus.NewEventHandlerRegistry(discardLogger())
	bus := eventbus.New(registry, discardLogger())

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, registry.Subscribe(testEventType, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
			calls.Add(1)
			return nil
		})))
	}

	err := bus.Publish(context.Background(), events.NewBaseEvent(testEventType, "agg-1"), events.NewBaseEvent(testEventType, "agg-2"))

	require.NoError(t, err)
	assert.Equal(t, int32(10), calls.Load())
}

func TestInMemoryEventBus_HandlerFailureDoesNotStopOthers(t *testing.T) {
	defer goleak.VerifyNone(t)

	registry := eventbus.NewEventHandlerRegistry(discardLogger())
	bus := eventbus.New(registry, discardLogger())

	var succeeded atomic.Bool
	_ = registry.Subscribe(testEventType, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		return errors.New("handler exploded")
	}))
	_ = registry.Subscribe(testEventType, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		succeeded.Store(true)
		return nil
	}))

	require.NoError(t, bus.Publish(context.Background(), events.NewBaseEvent(testEventType, "agg-1")))
	assert.True(t, succeeded.Load())
}

func TestTransactionalEventBus_BuffersUntilFlush(t *testing.T) {
	registry := eventbus.NewEventHandlerRegistry(discardLogger())

	var handled []string
	_ = registry.Subscribe(testEventType, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		handled = append(handled, event.AggregateID())
		return nil
	}))

	bus := eventbus.NewTransactional(registry, 10)
	require.NoError(t, bus.Publish(context.Background(), events.NewBaseEvent(testEventType, "first"), events.NewBaseEvent(testEventType, "second")))

	assert.Empty(t, handled)
	assert.Equal(t, 2, bus.PendingCount())

	require.NoError(t, bus.Flush(context.Background()))
	assert.Equal(t, []string{"first", "second"}, handled)
	assert.Equal(t, 0, bus.PendingCount())
}

func TestTransactionalEventBus_DepthExceeded(t *testing.T) {
	registry := eventbus.NewEventHandlerRegistry(discardLogger())
	bus := eventbus.NewTransactional(registry, 3)

	// Every handled event raises another one.
	_ = registry.Subscribe(testEventType, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		return bus.Publish(ctx, events.NewBaseEvent(testEventType, event.AggregateID()))
	}))

	require.NoError(t, bus.Publish(context.Background(), events.NewBaseEvent(testEventType, "loop")))
	err := bus.Flush(context.Background())

	assert.ErrorIs(t, err, eventbus.ErrEventProcessingDepthExceeded)
}

func TestTransactionalEventBus_HandlerError(t *testing.T) {
	registry := eventbus.NewEventHandlerRegistry(discardLogger())
	errHandler := errors.New("handler failed")
	_ = registry.Subscribe(testEventType, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		return errHandler
	}))

	bus := eventbus.NewTransactional(registry, 0)
	_ = bus.Publish(context.Background(), events.NewBaseEvent(testEventType, "agg"))

	assert.ErrorIs(t, bus.Flush(context.Background()), errHandler)
}
