package orders_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/agrilink/marketplace/internal/platform/authn"
	"github.com/agrilink/marketplace/internal/platform/eventbus"
	"github.com/agrilink/marketplace/internal/platform/transaction"
	"github.com/agrilink/marketplace/modules/catalog"
	catalogpersistence "github.com/agrilink/marketplace/modules/catalog/infrastructure/persistence"
	"github.com/agrilink/marketplace/modules/orders"
	"github.com/agrilink/marketplace/modules/orders/domain"
	ordercatalog "github.com/agrilink/marketplace/modules/orders/infrastructure/catalog"
	"github.com/agrilink/marketplace/modules/orders/infrastructure/persistence"
	"github.com/agrilink/marketplace/modules/orders/infrastructure/placement"
	"github.com/agrilink/marketplace/modules/shared/events"
	"github.com/agrilink/marketplace/modules/shared/events/contracts"
	"github.com/agrilink/marketplace/modules/shared/types"
)

const (
	buyerID = "9b8a7c6d-5e4f-4321-8abc-def012345678"

	tomatoes = "0f1e2d3c-4b5a-4968-8776-a5b4c3d2e1f0"
	milk     = "3c4d5e6f-7a8b-4c9d-8e1f-2a3b4c5d6e7f"
	apples   = "7a8b9c0d-1e2f-4a3b-8c5d-6e7f8a9b0c1d"
)

type testApp struct {
	handler  http.Handler
	module   orders.Module
	registry *eventbus.EventHandlerRegistry
	bus      *eventbus.InMemoryEventBus

	mu     sync.Mutex
	placed []contracts.OrderPlacedEvent
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	registry := eventbus.NewEventHandlerRegistry(logger)
	bus := eventbus.New(registry, logger)

	catalogModule := catalog.New(catalog.Config{
		Repository: catalogpersistence.NewInMemoryRepository(catalogpersistence.SampleProducts("USD")...),
		Logger:     logger,
	})

	app := &testApp{registry: registry, bus: bus}
	_ = registry.Subscribe(contracts.OrderPlacedEventType, events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		app.mu.Lock()
		defer app.mu.Unlock()
		app.placed = append(app.placed, e.(contracts.OrderPlacedEvent))
		return nil
	}))

	app.module = orders.New(orders.Config{
		Repository: persistence.NewInMemoryRepository(),
		Catalog:    ordercatalog.NewAdapter(catalogModule),
		Policies: domain.StaticPolicies{
			Default: domain.SellerPolicy{MinimumQuantity: 2, DeliveryFee: types.MustNewMoney(500, "USD")},
			Sellers: map[string]domain.SellerPolicy{
				catalogpersistence.RiverbendSellerID: {MinimumQuantity: 4, DeliveryFee: types.MustNewMoney(300, "USD")},
			},
		},
		Placer:          placement.NewSimulated(0),
		Currency:        "USD",
		TxScope:         transaction.NewLocalScope(),
		HandlerRegistry: registry,
		EventPublisher:  bus,
		EventSubscriber: registry,
		Logger:          logger,
	})

	mux := http.NewServeMux()
	app.module.RegisterRoutes(mux)

	// Stand-in for the session middleware.
	app.handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := r.Header.Get("X-Test-User"); user != "" {
			r = r.WithContext(authn.WithIdentity(r.Context(), authn.Identity{UserID: user}))
		}
		mux.ServeHTTP(w, r)
	})
	return app
}

func (a *testApp) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

type quoteBody struct {
	Groups []struct {
		SellerID        string `json:"seller_id"`
		Quantity        int    `json:"quantity"`
		MinimumQuantity int    `json:"minimum_quantity"`
		BelowMinimum    bool   `json:"below_minimum"`
	} `json:"groups"`
	Subtotal    struct{ Amount int64 } `json:"subtotal"`
	DeliveryFee struct{ Amount int64 } `json:"delivery_fee"`
	Total       struct{ Amount int64 } `json:"total"`
	CanPlace    bool                   `json:"can_place"`
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func cart(items ...any) []map[string]any {
	var out []map[string]any
	for i := 0; i < len(items); i += 2 {
		out = append(out, map[string]any{"product_id": items[i], "quantity": items[i+1]})
	}
	return out
}

func form(fulfillment string) map[string]string {
	return map[string]string{
		"full_name":        "Grace Buyer",
		"email":            "grace@example.com",
		"phone":            "555 010 9999",
		"fulfillment":      fulfillment,
		"delivery_address": "12 Orchard Lane",
	}
}

func TestQuote(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/checkout/quote", "", map[string]any{
		"items":       cart(tomatoes, 2, milk, 2),
		"fulfillment": "delivery",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	q := decode[quoteBody](t, rec)
	if len(q.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(q.Groups))
	}
	if q.Groups[0].BelowMinimum || !q.Groups[1].BelowMinimum {
		t.Errorf("expected only the dairy group under its minimum of 4: %+v", q.Groups)
	}
	if q.CanPlace {
		t.Error("expected can_place false")
	}
	// 2 x 4.50 + 2 x 6.50, fees 5.00 + 3.00
	if q.Subtotal.Amount != 2200 || q.DeliveryFee.Amount != 800 || q.Total.Amount != 3000 {
		t.Errorf("unexpected totals: subtotal %d fee %d total %d", q.Subtotal.Amount, q.DeliveryFee.Amount, q.Total.Amount)
	}

	rec = app.do(t, http.MethodPost, "/checkout/quote", "", map[string]any{
		"items":       cart(tomatoes, 2, milk, 2),
		"fulfillment": "pickup",
	})
	q = decode[quoteBody](t, rec)
	if !q.CanPlace || q.DeliveryFee.Amount != 0 {
		t.Errorf("expected pickup to be placeable without fees, got %+v", q)
	}
}

func TestQuote_Direct(t *testing.T) {
	app := newTestApp(t)

	q, err := app.module.Quote(context.Background(), []orders.CartItem{{ProductID: tomatoes, Quantity: 3}}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Fulfillment != "pickup" || q.Total.Amount != 1350 {
		t.Errorf("expected pickup total 13.50, got %s %d", q.Fulfillment, q.Total.Amount)
	}
}

func TestQuote_Errors(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantField  string
	}{
		{"empty cart", map[string]any{"items": cart()}, http.StatusBadRequest, ""},
		{"zero quantity", map[string]any{"items": cart(tomatoes, 0)}, http.StatusBadRequest, ""},
		{"unknown fulfillment", map[string]any{"items": cart(tomatoes, 1), "fulfillment": "drone"}, http.StatusBadRequest, ""},
		{"out of stock", map[string]any{"items": cart(apples, 1)}, http.StatusConflict, "items." + apples},
		{"more than stock", map[string]any{"items": cart(tomatoes, 41)}, http.StatusConflict, "items." + tomatoes},
		{"malformed body", "not json", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, http.MethodPost, "/checkout/quote", "", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body)
			}
			if tt.wantField != "" {
				body := decode[errorBody](t, rec)
				if _, ok := body.Fields[tt.wantField]; !ok {
					t.Errorf("expected field %s, got %v", tt.wantField, body.Fields)
				}
			}
		})
	}
}

func TestCheckoutLifecycle(t *testing.T) {
	app := newTestApp(t)

	// Anonymous checkout is refused.
	rec := app.do(t, http.MethodPost, "/checkout/orders", "", map[string]any{"items": cart(tomatoes, 2), "form": form("pickup")})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	// Invalid form fields are reported together.
	bad := form("delivery")
	bad["email"] = "nope"
	bad["delivery_address"] = ""
	rec = app.do(t, http.MethodPost, "/checkout/orders", buyerID, map[string]any{"items": cart(tomatoes, 2), "form": bad})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body)
	}
	if fields := decode[errorBody](t, rec).Fields; fields["email"] == "" || fields["delivery_address"] == "" {
		t.Errorf("expected email and delivery_address messages, got %v", fields)
	}

	// Delivery under a seller minimum is refused with the seller named.
	rec = app.do(t, http.MethodPost, "/checkout/orders", buyerID, map[string]any{"items": cart(milk, 1), "form": form("delivery")})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body)
	}
	if fields := decode[errorBody](t, rec).Fields; fields["sellers."+catalogpersistence.RiverbendSellerID] == "" {
		t.Errorf("expected riverbend minimum message, got %v", fields)
	}

	// Placement.
	rec = app.do(t, http.MethodPost, "/checkout/orders", buyerID, map[string]any{"items": cart(tomatoes, 2, milk, 4), "form": form("delivery")})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}
	created := decode[struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Quote  struct {
			CanPlace bool `json:"can_place"`
		} `json:"quote"`
	}](t, rec)
	if _, err := types.ParseOrderID(created.ID); err != nil {
		t.Errorf("expected AGL order id, got %q", created.ID)
	}
	if created.Status != "placed" || !created.Quote.CanPlace {
		t.Errorf("unexpected placement response: %+v", created)
	}

	app.mu.Lock()
	if len(app.placed) != 1 || app.placed[0].OrderID != created.ID {
		t.Errorf("expected one OrderPlaced for %s, got %+v", created.ID, app.placed)
	}
	app.mu.Unlock()

	// History and detail.
	rec = app.do(t, http.MethodGet, "/orders", buyerID, nil)
	list := decode[struct {
		Orders     []struct{ ID string } `json:"orders"`
		TotalCount int                   `json:"total_count"`
	}](t, rec)
	if list.TotalCount != 1 || list.Orders[0].ID != created.ID {
		t.Errorf("expected the placed order in history, got %+v", list)
	}

	rec = app.do(t, http.MethodGet, "/orders/"+created.ID, buyerID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = app.do(t, http.MethodGet, "/orders/"+created.ID, "1d2c3b4a-5f6e-4d7c-8b9a-0f1e2d3c4b5a", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected another buyer to get 404, got %d", rec.Code)
	}

	// Cancellation.
	rec = app.do(t, http.MethodPost, "/orders/"+created.ID+"/cancel", buyerID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	rec = app.do(t, http.MethodPost, "/orders/"+created.ID+"/cancel", buyerID, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 on second cancel, got %d", rec.Code)
	}
}

func TestUserDeletedCancelsOrders(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/checkout/orders", buyerID, map[string]any{"items": cart(tomatoes, 1), "form": form("pickup")})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}
	id := decode[struct{ ID string }](t, rec).ID

	err := app.bus.Publish(context.Background(), contracts.UserDeletedEvent{
		BaseEvent: events.NewBaseEvent(contracts.UserDeletedEventType, buyerID),
		UserID:    buyerID,
	})
	if err != nil {
		t.Fatalf("failed to publish: %v", err)
	}

	rec = app.do(t, http.MethodGet, "/orders/"+id, buyerID, nil)
	if status := decode[struct{ Status string }](t, rec).Status; status != "cancelled" {
		t.Errorf("expected cancelled after user deletion, got %q", status)
	}
}
