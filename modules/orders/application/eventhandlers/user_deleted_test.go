package eventhandlers_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/agrilink/marketplace/modules/orders/application/eventhandlers"
	"github.com/agrilink/marketplace/modules/orders/domain"
	"github.com/agrilink/marketplace/modules/orders/infrastructure/persistence"
	"github.com/agrilink/marketplace/modules/shared/events"
	"github.com/agrilink/marketplace/modules/shared/events/contracts"
	"github.com/agrilink/marketplace/modules/shared/types"
)

const (
	deletedUser = "5e4d3c2b-1a09-4f8e-9d7c-6b5a4f3e2d1c"
	otherUser   = "0f1e2d3c-4b5a-4968-8776-a5b4c3d2e1f0"
)

type recordingPublisher struct {
	published []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, evts ...events.Event) error {
	p.published = append(p.published, evts...)
	return nil
}

func placeOrder(t *testing.T, repo domain.OrderRepository, user string) *domain.Order {
	t.Helper()
	userID, _ := types.ParseUserID(user)
	quote, err := domain.BuildQuote([]domain.LineItem{{
		ProductID: "p1", SellerID: "s1", Quantity: 1, UnitPrice: types.MustNewMoney(500, "USD"),
	}}, domain.FulfillmentPickup, domain.StaticPolicies{}, "USD")
	if err != nil {
		t.Fatalf("failed to build quote: %v", err)
	}
	order, err := domain.PlaceOrder(types.NewOrderID(), userID, domain.Contact{
		FullName: "Del Eted", Email: "del@example.com", Phone: "5550100000", Fulfillment: domain.FulfillmentPickup,
	}, quote)
	if err != nil {
		t.Fatalf("failed to place order: %v", err)
	}
	order.ClearDomainEvents()
	if err := repo.Save(context.Background(), order); err != nil {
		t.Fatalf("failed to save order: %v", err)
	}
	return order
}

func TestUserDeletedHandler_CancelsPlacedOrders(t *testing.T) {
	repo := persistence.NewInMemoryRepository()
	first := placeOrder(t, repo, deletedUser)
	second := placeOrder(t, repo, deletedUser)
	untouched := placeOrder(t, repo, otherUser)

	// Already cancelled orders are skipped.
	_ = second.Cancel()
	second.ClearDomainEvents()
	_ = repo.Save(context.Background(), second)

	publisher := &recordingPublisher{}
	handler := eventhandlers.NewUserDeletedHandler(repo, publisher, slog.New(slog.NewTextHandler(io.Discard, nil)))

	event := contracts.UserDeletedEvent{
		BaseEvent: events.NewBaseEvent(contracts.UserDeletedEventType, deletedUser),
		UserID:    deletedUser,
	}
	if err := handler.Handle(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := repo.FindByID(context.Background(), first.ID())
	if got.Status() != domain.StatusCancelled {
		t.Errorf("expected %s cancelled, got %s", first.ID(), got.Status())
	}
	got, _ = repo.FindByID(context.Background(), untouched.ID())
	if got.Status() != domain.StatusPlaced {
		t.Errorf("expected other user's order untouched, got %s", got.Status())
	}
	if len(publisher.published) != 1 {
		t.Errorf("expected one OrderCancelled event, got %d", len(publisher.published))
	}
}

func TestUserDeletedHandler_RejectsOtherEvents(t *testing.T) {
	handler := eventhandlers.NewUserDeletedHandler(persistence.NewInMemoryRepository(), &recordingPublisher{}, slog.Default())

	err := handler.Handle(context.Background(), contracts.OrderCancelledEvent{})
	if err == nil {
		t.Error("expected an error for an unexpected event type")
	}
}
