package eventhandlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agrilink/marketplace/modules/notifications/domain"
	"github.com/agrilink/marketplace/modules/shared/events"
	"github.com/agrilink/marketplace/modules/shared/events/contracts"
	"github.com/agrilink/marketplace/modules/shared/types"
)

// OrderPlacedHandler sends the buyer an order confirmation.
//
// It runs after the order ledger commits, so it must not assume a
// transaction in ctx.
type OrderPlacedHandler struct {
	dedup    domain.Deduplicator
	notifier domain.Notifier
	logger   *slog.Logger
}

func NewOrderPlacedHandler(dedup domain.Deduplicator, notifier domain.Notifier, logger *slog.Logger) *OrderPlacedHandler {
	return &OrderPlacedHandler{dedup: dedup, notifier: notifier, logger: logger}
}

func (h *OrderPlacedHandler) Handle(ctx context.Context, event events.Event) error {
	e, ok := event.(contracts.OrderPlacedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	total := fmt.Sprintf("%d %s", e.TotalAmount, e.Currency)
	if m, err := types.NewMoney(e.TotalAmount, e.Currency); err == nil {
		total = m.String()
	}

	return deliver(ctx, h.dedup, h.notifier, h.logger, domain.Notice{
		EventID:   e.EventID(),
		Kind:      domain.KindOrderConfirmation,
		UserID:    e.UserID,
		Recipient: e.Email,
		Subject:   "Order " + e.OrderID + " confirmed",
		Body: fmt.Sprintf("Your %s order %s from %d seller(s) totals %s.",
			e.Fulfillment, e.OrderID, len(e.SellerIDs), total),
	})
}
