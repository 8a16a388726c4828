package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/agrilink/marketplace/modules/orders/domain"
	"github.com/agrilink/marketplace/modules/shared/events"
	"github.com/agrilink/marketplace/modules/shared/types"
)

// --- Mocks ---

type mockOrderRepository struct {
	saveFn         func(ctx context.Context, order *domain.Order) error
	findByIDFn     func(ctx context.Context, id types.OrderID) (*domain.Order, error)
	findByUserIDFn func(ctx context.Context, userID types.UserID, offset, limit int) ([]*domain.Order, int, error)
}

func (m *mockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	return m.saveFn(ctx, order)
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id types.OrderID) (*domain.Order, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockOrderRepository) FindByUserID(ctx context.Context, userID types.UserID, offset, limit int) ([]*domain.Order, int, error) {
	return m.findByUserIDFn(ctx, userID, offset, limit)
}

type mockCatalog struct {
	lookupFn func(ctx context.Context, ids []string) (map[string]domain.CatalogProduct, error)
}

func (m *mockCatalog) Lookup(ctx context.Context, ids []string) (map[string]domain.CatalogProduct, error) {
	return m.lookupFn(ctx, ids)
}

type mockPlacer struct {
	placeFn func(ctx context.Context) (types.OrderID, error)
}

func (m *mockPlacer) Place(ctx context.Context) (types.OrderID, error) {
	return m.placeFn(ctx)
}

type mockTransactionScope struct {
	executeFn func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.executeFn(ctx, fn)
}

type mockPublisher struct {
	publishFn func(ctx context.Context, evts ...events.Event) error
}

func (m *mockPublisher) Publish(ctx context.Context, evts ...events.Event) error {
	return m.publishFn(ctx, evts...)
}

type mockRegistry struct {
	handlers map[events.EventType][]events.Handler
}

func (m *mockRegistry) HandlersFor(eventType events.EventType) []events.Handler {
	return m.handlers[eventType]
}

// --- Helpers ---

const (
	testBuyerID  = "3c2b1a09-8f7e-4d6c-9b5a-4e3d2c1b0a99"
	testSellerA  = "11111111-1111-4111-8111-111111111111"
	testSellerB  = "22222222-2222-4222-8222-222222222222"
	testCarrots  = "aaaaaaaa-0000-4000-8000-000000000001"
	testHoney    = "aaaaaaaa-0000-4000-8000-000000000002"
	testSoldOut  = "aaaaaaaa-0000-4000-8000-000000000003"
	testCurrency = "USD"
)

func passthroughScope() *mockTransactionScope {
	return &mockTransactionScope{
		executeFn: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPolicies() domain.StaticPolicies {
	return domain.StaticPolicies{
		Default: domain.SellerPolicy{MinimumQuantity: 2, DeliveryFee: types.MustNewMoney(400, testCurrency)},
	}
}

func stubCatalog() *mockCatalog {
	products := map[string]domain.CatalogProduct{
		testCarrots: {
			ID: testCarrots, Name: "Carrots", SellerID: testSellerA, SellerName: "Sunny Acres",
			UnitPrice: types.MustNewMoney(299, testCurrency), Stock: 40, Available: true,
		},
		testHoney: {
			ID: testHoney, Name: "Honey", SellerID: testSellerB, SellerName: "Hillside Hive",
			UnitPrice: types.MustNewMoney(1200, testCurrency), Stock: 5, Available: true,
		},
		testSoldOut: {
			ID: testSoldOut, Name: "Apples", SellerID: testSellerA,
			UnitPrice: types.MustNewMoney(450, testCurrency), Stock: 0, Available: false,
		},
	}
	return &mockCatalog{
		lookupFn: func(ctx context.Context, ids []string) (map[string]domain.CatalogProduct, error) {
			out := make(map[string]domain.CatalogProduct)
			for _, id := range ids {
				if p, ok := products[id]; ok {
					out[id] = p
				}
			}
			return out, nil
		},
	}
}

func validForm() domain.CheckoutForm {
	return domain.CheckoutForm{
		FullName:        "Grace Buyer",
		Email:           "grace@example.com",
		Phone:           "555-010-9999",
		Fulfillment:     "delivery",
		DeliveryAddress: "12 Orchard Lane",
	}
}

func createTestOrder(t *testing.T, userID string) *domain.Order {
	t.Helper()
	buyer, err := types.ParseUserID(userID)
	if err != nil {
		t.Fatalf("failed to parse user id: %v", err)
	}
	quote, err := domain.BuildQuote([]domain.LineItem{{
		ProductID: testCarrots, ProductName: "Carrots", SellerID: testSellerA,
		Quantity: 2, UnitPrice: types.MustNewMoney(299, testCurrency),
	}}, domain.FulfillmentPickup, testPolicies(), testCurrency)
	if err != nil {
		t.Fatalf("failed to build quote: %v", err)
	}
	form := validForm()
	form.Fulfillment = "pickup"
	contact, err := form.Validate()
	if err != nil {
		t.Fatalf("failed to validate form: %v", err)
	}
	order, err := domain.PlaceOrder(types.NewOrderID(), buyer, contact, quote)
	if err != nil {
		t.Fatalf("failed to place order: %v", err)
	}
	order.ClearDomainEvents()
	return order
}
