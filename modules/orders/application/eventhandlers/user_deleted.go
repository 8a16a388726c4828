// Package eventhandlers reacts to events published by other modules.
package eventhandlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agrilink/marketplace/modules/orders/domain"
	"github.com/agrilink/marketplace/modules/shared/events"
	"github.com/agrilink/marketplace/modules/shared/events/contracts"
	"github.com/agrilink/marketplace/modules/shared/types"
)

const pageSize = 100

// UserDeletedHandler handles UserDeleted events by cancelling the user's
// placed orders. This handler runs within the same transaction as the
// profile deletion when the publisher's context carries one.
type UserDeletedHandler struct {
	orderRepo domain.OrderRepository
	publisher events.Publisher
	logger    *slog.Logger
}

func NewUserDeletedHandler(orderRepo domain.OrderRepository, publisher events.Publisher, logger *slog.Logger) *UserDeletedHandler {
	return &UserDeletedHandler{
		orderRepo: orderRepo,
		publisher: publisher,
		logger:    logger,
	}
}

func (h *UserDeletedHandler) Handle(ctx context.Context, event events.Event) error {
	userDeletedEvent, ok := event.(contracts.UserDeletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: %T", event)
	}

	h.logger.InfoContext(ctx, "handling user deleted event, cancelling user orders", slog.String("user_id", userDeletedEvent.UserID))

	userID, err := types.ParseUserID(userDeletedEvent.UserID)
	if err != nil {
		return fmt.Errorf("parsing user ID: %w", err)
	}

	// The context carries the originating transaction, if any.
	orders, err := h.allOrders(ctx, userID)
	if err != nil {
		return err
	}

	for _, order := range orders {
		if order.Status() != domain.StatusPlaced {
			continue
		}

		if err := order.Cancel(); err != nil {
			h.logger.WarnContext(ctx, "failed to cancel order",
				slog.String("order_id", order.ID().String()),
				slog.Any("error", err),
			)
			continue
		}

		if err := h.orderRepo.Save(ctx, order); err != nil {
			return fmt.Errorf("saving cancelled order %s: %w", order.ID().String(), err)
		}
		if err := h.publisher.Publish(ctx, order.PopDomainEvents()...); err != nil {
			return fmt.Errorf("publishing events: %w", err)
		}

		h.logger.InfoContext(ctx, "cancelled order for deleted user",
			slog.String("order_id", order.ID().String()),
			slog.String("user_id", userDeletedEvent.UserID),
		)
	}
	return nil
}

func (h *UserDeletedHandler) allOrders(ctx context.Context, userID types.UserID) ([]*domain.Order, error) {
	var all []*domain.Order
	for offset := 0; ; offset += pageSize {
		page, total, err := h.orderRepo.FindByUserID(ctx, userID, offset, pageSize)
		if err != nil {
			return nil, fmt.Errorf("finding user orders: %w", err)
		}
		all = append(all, page...)
		if len(page) == 0 || offset+len(page) >= total {
			return all, nil
		}
	}
}
