// Package commands contains write use cases for the orders module.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/agrilink/marketplace/internal/platform/eventbus"
	"github.com/agrilink/marketplace/modules/orders/domain"
	"github.com/agrilink/marketplace/modules/shared/transaction"
	"github.com/agrilink/marketplace/modules/shared/types"
)

var tracer = otel.Tracer("github.com/agrilink/marketplace/modules/orders")

// PlaceOrderCommand checks out the caller's cart.
type PlaceOrderCommand struct {
	UserID string
	Items  []domain.CartItem
	Form   domain.CheckoutForm
}

// PlaceOrderResult is the recorded order and the quote it was placed at.
type PlaceOrderResult struct {
	Order *domain.Order
	Quote *domain.Quote
}

type PlaceOrderHandler struct {
	repo            domain.OrderRepository
	catalog         domain.ProductCatalog
	policies        domain.PolicyBook
	placer          domain.Placer
	currency        string
	txScope         transaction.Scope
	handlerRegistry eventbus.HandlerRegistry
	logger          *slog.Logger
}

// PlaceOrderDeps groups the collaborators of PlaceOrderHandler.
type PlaceOrderDeps struct {
	Repository      domain.OrderRepository
	Catalog         domain.ProductCatalog
	Policies        domain.PolicyBook
	Placer          domain.Placer
	Currency        string
	TxScope         transaction.Scope
	HandlerRegistry eventbus.HandlerRegistry
	Logger          *slog.Logger
}

func NewPlaceOrderHandler(deps PlaceOrderDeps) *PlaceOrderHandler {
	return &PlaceOrderHandler{
		repo:            deps.Repository,
		catalog:         deps.Catalog,
		policies:        deps.Policies,
		placer:          deps.Placer,
		currency:        deps.Currency,
		txScope:         deps.TxScope,
		handlerRegistry: deps.HandlerRegistry,
		logger:          deps.Logger,
	}
}

// Handle validates the form, prices the cart from the catalog and refuses
// carts with a seller under its delivery minimum. Accepted carts go through
// placement and are then recorded; OrderPlaced subscribers run only after
// the record commits.
func (h *PlaceOrderHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (*PlaceOrderResult, error) {
	ctx, span := tracer.Start(ctx, "checkout.place_order")
	defer span.End()

	contact, err := cmd.Form.Validate()
	if err != nil {
		return nil, err
	}

	userID, err := types.ParseUserID(cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	lines, err := domain.PriceCart(ctx, h.catalog, cmd.Items)
	if err != nil {
		return nil, err
	}
	quote, err := domain.BuildQuote(lines, contact.Fulfillment, h.policies, h.currency)
	if err != nil {
		return nil, fmt.Errorf("building quote: %w", err)
	}
	if err := quote.Placeable(); err != nil {
		return nil, err
	}

	orderID, err := h.placer.Place(ctx)
	if err != nil {
		return nil, fmt.Errorf("placing order: %w", err)
	}
	span.SetAttributes(attribute.String("order.id", orderID.String()))

	var eventBus *eventbus.TransactionalEventBus
	order, err := transaction.ExecuteWithResult(ctx, h.txScope, func(ctx context.Context) (*domain.Order, error) {
		// Create event bus inside closure for Spanner retry safety
		eventBus = eventbus.NewTransactional(h.handlerRegistry, 10)

		order, err := domain.PlaceOrder(orderID, userID, contact, quote)
		if err != nil {
			return nil, err
		}
		if err := h.repo.Save(ctx, order); err != nil {
			return nil, fmt.Errorf("saving order: %w", err)
		}
		if err := eventBus.Publish(ctx, order.PopDomainEvents()...); err != nil {
			return nil, fmt.Errorf("publishing events: %w", err)
		}
		return order, nil
	})
	if err != nil {
		return nil, err
	}

	// The order is recorded; a failing subscriber does not undo it.
	if err := eventBus.Flush(ctx); err != nil {
		h.logger.ErrorContext(ctx, "order placed event handling failed",
			slog.String("order_id", order.ID().String()),
			slog.Any("error", err),
		)
	}

	h.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID().String()),
		slog.String("fulfillment", order.Fulfillment().String()),
		slog.Int("sellers", len(quote.Groups)),
		slog.String("total", order.Total().String()),
	)

	return &PlaceOrderResult{Order: order, Quote: quote}, nil
}
