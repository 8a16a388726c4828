// Package orders provides checkout and order history.
// This is the public API for the orders bounded context.
package orders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/agrilink/marketplace/internal/platform/eventbus"
	"github.com/agrilink/marketplace/modules/orders/application/commands"
	"github.com/agrilink/marketplace/modules/orders/application/eventhandlers"
	"github.com/agrilink/marketplace/modules/orders/application/queries"
	"github.com/agrilink/marketplace/modules/orders/domain"
	httphandler "github.com/agrilink/marketplace/modules/orders/infrastructure/http"
	"github.com/agrilink/marketplace/modules/shared/events"
	"github.com/agrilink/marketplace/modules/shared/events/contracts"
	"github.com/agrilink/marketplace/modules/shared/transaction"
)

type (
	// CartItem is one requested product and quantity.
	CartItem = domain.CartItem
	// Quote is the priced checkout summary.
	Quote = queries.QuoteDTO
)

// Module is the public API for the orders bounded context.
// External communication: HTTP API (RegisterRoutes)
// Cross-module communication: Domain Events (published and subscribed internally)
type Module interface {
	// RegisterRoutes registers the module's HTTP routes to the given mux.
	RegisterRoutes(mux *http.ServeMux)
	// Quote prices items for a fulfillment choice without placing an order.
	Quote(ctx context.Context, items []CartItem, fulfillment string) (*Quote, error)
}

// Config holds the module configuration.
type Config struct {
	Repository      domain.OrderRepository
	Catalog         domain.ProductCatalog
	Policies        domain.PolicyBook
	Placer          domain.Placer
	Currency        string
	TxScope         transaction.Scope
	HandlerRegistry eventbus.HandlerRegistry
	EventPublisher  events.Publisher
	EventSubscriber events.Subscriber
	Logger          *slog.Logger
}

type module struct {
	handlers httphandler.Handlers
	logger   *slog.Logger
}

// New creates a new orders module.
func New(cfg Config) Module {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "orders")

	currency := cfg.Currency
	if currency == "" {
		currency = "USD"
	}

	handlers := httphandler.Handlers{
		Quote: queries.NewQuoteHandler(cfg.Catalog, cfg.Policies, currency),
		PlaceOrder: commands.NewPlaceOrderHandler(commands.PlaceOrderDeps{
			Repository:      cfg.Repository,
			Catalog:         cfg.Catalog,
			Policies:        cfg.Policies,
			Placer:          cfg.Placer,
			Currency:        currency,
			TxScope:         cfg.TxScope,
			HandlerRegistry: cfg.HandlerRegistry,
			Logger:          logger,
		}),
		CancelOrder: commands.NewCancelOrderHandler(cfg.Repository, cfg.TxScope, cfg.EventPublisher),
		GetOrder:    queries.NewGetOrderHandler(cfg.Repository),
		ListOrders:  queries.NewListUserOrdersHandler(cfg.Repository),
	}

	// Subscribe to cross-module events
	if cfg.EventSubscriber != nil {
		userDeletedHandler := eventhandlers.NewUserDeletedHandler(cfg.Repository, cfg.EventPublisher, logger)
		if err := cfg.EventSubscriber.Subscribe(contracts.UserDeletedEventType, userDeletedHandler); err != nil {
			logger.Error("failed to subscribe to user deleted event", slog.Any("error", err))
		}
	}

	return &module{handlers: handlers, logger: logger}
}

func (m *module) RegisterRoutes(mux *http.ServeMux) {
	httphandler.RegisterRoutes(mux, m.handlers, m.logger)
}

func (m *module) Quote(ctx context.Context, items []CartItem, fulfillment string) (*Quote, error) {
	return m.handlers.Quote.Handle(ctx, queries.QuoteQuery{Items: items, Fulfillment: fulfillment})
}
