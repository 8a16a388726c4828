package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agrilink/marketplace/modules/orders/application/commands"
	"github.com/agrilink/marketplace/modules/orders/domain"
	"github.com/agrilink/marketplace/modules/shared/events"
	"github.com/agrilink/marketplace/modules/shared/events/contracts"
	"github.com/agrilink/marketplace/modules/shared/types"
)

type placeOrderFixture struct {
	repo     *mockOrderRepository
	catalog  *mockCatalog
	placer   *mockPlacer
	txScope  *mockTransactionScope
	registry *mockRegistry

	saved   []*domain.Order
	flushed []events.Event
	placed  int
}

func newPlaceOrderFixture() *placeOrderFixture {
	f := &placeOrderFixture{catalog: stubCatalog(), txScope: passthroughScope()}
	f.repo = &mockOrderRepository{
		saveFn: func(ctx context.Context, order *domain.Order) error {
			f.saved = append(f.saved, order)
			return nil
		},
	}
	f.placer = &mockPlacer{
		placeFn: func(ctx context.Context) (types.OrderID, error) {
			f.placed++
			return types.ParseOrderID("AGL-0123456789AB")
		},
	}
	f.registry = &mockRegistry{handlers: map[events.EventType][]events.Handler{
		contracts.OrderPlacedEventType: {events.HandlerFunc(func(ctx context.Context, e events.Event) error {
			f.flushed = append(f.flushed, e)
			return nil
		})},
	}}
	return f
}

func (f *placeOrderFixture) handler() *commands.PlaceOrderHandler {
	return commands.NewPlaceOrderHandler(commands.PlaceOrderDeps{
		Repository:      f.repo,
		Catalog:         f.catalog,
		Policies:        testPolicies(),
		Placer:          f.placer,
		Currency:        testCurrency,
		TxScope:         f.txScope,
		HandlerRegistry: f.registry,
		Logger:          discardLogger(),
	})
}

func TestPlaceOrderHandler_Handle_Success(t *testing.T) {
	// Arrange
	f := newPlaceOrderFixture()
	cmd := commands.PlaceOrderCommand{
		UserID: testBuyerID,
		Items: []domain.CartItem{
			{ProductID: testCarrots, Quantity: 2},
			{ProductID: testHoney, Quantity: 1},
			{ProductID: testHoney, Quantity: 1},
		},
		Form: validForm(),
	}

	// Act
	result, err := f.handler().Handle(context.Background(), cmd)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Order.ID().String() != "AGL-0123456789AB" {
		t.Errorf("expected placer-issued id, got %s", result.Order.ID())
	}
	if f.placed != 1 {
		t.Errorf("expected one placement, got %d", f.placed)
	}
	if len(f.saved) != 1 {
		t.Fatalf("expected order to be saved once, got %d", len(f.saved))
	}

	// 2 x 2.99 + 2 x 12.00 + 2 sellers x 4.00 delivery
	if got := result.Order.Total().Amount(); got != 598+2400+800 {
		t.Errorf("expected total 38.98, got %s", result.Order.Total())
	}
	if len(result.Quote.Groups) != 2 {
		t.Errorf("expected 2 seller groups, got %d", len(result.Quote.Groups))
	}

	if len(f.flushed) != 1 {
		t.Fatalf("expected OrderPlaced to reach subscribers, got %d events", len(f.flushed))
	}
	placed := f.flushed[0].(contracts.OrderPlacedEvent)
	if placed.UserID != testBuyerID || placed.Email != "grace@example.com" {
		t.Errorf("unexpected event payload: %+v", placed)
	}
	if len(result.Order.DomainEvents()) != 0 {
		t.Error("expected domain events to be drained")
	}
}

func TestPlaceOrderHandler_Handle_InvalidForm(t *testing.T) {
	f := newPlaceOrderFixture()
	f.catalog.lookupFn = func(ctx context.Context, ids []string) (map[string]domain.CatalogProduct, error) {
		t.Error("catalog should not be consulted for an invalid form")
		return nil, nil
	}

	form := validForm()
	form.Email = "not-an-email"
	form.DeliveryAddress = ""

	_, err := f.handler().Handle(context.Background(), commands.PlaceOrderCommand{
		UserID: testBuyerID,
		Items:  []domain.CartItem{{ProductID: testCarrots, Quantity: 2}},
		Form:   form,
	})

	var formErr *domain.FormError
	if !errors.As(err, &formErr) {
		t.Fatalf("expected *FormError, got %v", err)
	}
	if len(formErr.Fields) != 2 {
		t.Errorf("expected email and delivery_address errors, got %v", formErr.Fields)
	}
}

func TestPlaceOrderHandler_Handle_BelowMinimum(t *testing.T) {
	f := newPlaceOrderFixture()

	_, err := f.handler().Handle(context.Background(), commands.PlaceOrderCommand{
		UserID: testBuyerID,
		Items:  []domain.CartItem{{ProductID: testCarrots, Quantity: 1}},
		Form:   validForm(),
	})

	if !errors.Is(err, domain.ErrBelowMinimum) {
		t.Fatalf("expected ErrBelowMinimum, got %v", err)
	}
	if f.placed != 0 || len(f.saved) != 0 {
		t.Error("expected nothing to be placed or saved")
	}
}

func TestPlaceOrderHandler_Handle_PickupIgnoresMinimum(t *testing.T) {
	f := newPlaceOrderFixture()
	form := validForm()
	form.Fulfillment = "pickup"

	result, err := f.handler().Handle(context.Background(), commands.PlaceOrderCommand{
		UserID: testBuyerID,
		Items:  []domain.CartItem{{ProductID: testCarrots, Quantity: 1}},
		Form:   form,
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Order.DeliveryFee().IsZero() {
		t.Errorf("expected no delivery fee for pickup, got %s", result.Order.DeliveryFee())
	}
}

func TestPlaceOrderHandler_Handle_UnavailableProduct(t *testing.T) {
	f := newPlaceOrderFixture()

	_, err := f.handler().Handle(context.Background(), commands.PlaceOrderCommand{
		UserID: testBuyerID,
		Items:  []domain.CartItem{{ProductID: testCarrots, Quantity: 2}, {ProductID: testSoldOut, Quantity: 2}},
		Form:   validForm(),
	})

	if !errors.Is(err, domain.ErrProductUnavailable) {
		t.Fatalf("expected ErrProductUnavailable, got %v", err)
	}
	if f.placed != 0 {
		t.Error("expected no placement")
	}
}

func TestPlaceOrderHandler_Handle_PlacementCancelled(t *testing.T) {
	f := newPlaceOrderFixture()
	f.placer.placeFn = func(ctx context.Context) (types.OrderID, error) {
		<-ctx.Done()
		return types.OrderID{}, ctx.Err()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.handler().Handle(ctx, commands.PlaceOrderCommand{
		UserID: testBuyerID,
		Items:  []domain.CartItem{{ProductID: testCarrots, Quantity: 2}},
		Form:   validForm(),
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if len(f.saved) != 0 {
		t.Error("expected nothing to be saved")
	}
}

func TestPlaceOrderHandler_Handle_SaveErrorSkipsSubscribers(t *testing.T) {
	f := newPlaceOrderFixture()
	saveErr := errors.New("ledger unavailable")
	f.repo.saveFn = func(ctx context.Context, order *domain.Order) error {
		return saveErr
	}

	_, err := f.handler().Handle(context.Background(), commands.PlaceOrderCommand{
		UserID: testBuyerID,
		Items:  []domain.CartItem{{ProductID: testCarrots, Quantity: 2}},
		Form:   validForm(),
	})

	if !errors.Is(err, saveErr) {
		t.Fatalf("expected save error, got %v", err)
	}
	if len(f.flushed) != 0 {
		t.Error("expected no events to reach subscribers")
	}
}

func TestPlaceOrderHandler_Handle_SubscriberFailureKeepsOrder(t *testing.T) {
	f := newPlaceOrderFixture()
	f.registry.handlers[contracts.OrderPlacedEventType] = []events.Handler{
		events.HandlerFunc(func(ctx context.Context, e events.Event) error {
			return errors.New("mailer down")
		}),
	}

	result, err := f.handler().Handle(context.Background(), commands.PlaceOrderCommand{
		UserID: testBuyerID,
		Items:  []domain.CartItem{{ProductID: testCarrots, Quantity: 2}},
		Form:   validForm(),
	})

	if err != nil {
		t.Fatalf("expected order to be placed despite subscriber failure, got %v", err)
	}
	if result.Order.Status() != domain.StatusPlaced {
		t.Errorf("expected placed, got %s", result.Order.Status())
	}
}

func TestPlaceOrderHandler_Handle_InvalidUserID(t *testing.T) {
	f := newPlaceOrderFixture()

	_, err := f.handler().Handle(context.Background(), commands.PlaceOrderCommand{
		UserID: "nobody",
		Items:  []domain.CartItem{{ProductID: testCarrots, Quantity: 2}},
		Form:   validForm(),
	})

	if !errors.Is(err, types.ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
}
