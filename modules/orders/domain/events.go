package domain

import (
	"github.com/agrilink/marketplace/modules/shared/events"
	"github.com/agrilink/marketplace/modules/shared/events/contracts"
)

func NewOrderPlacedEvent(order *Order) contracts.OrderPlacedEvent {
	return contracts.OrderPlacedEvent{
		BaseEvent:   events.NewBaseEvent(contracts.OrderPlacedEventType, order.ID().String()),
		OrderID:     order.ID().String(),
		UserID:      order.UserID().String(),
		Email:       order.Contact().Email,
		Fulfillment: order.Fulfillment().String(),
		SellerIDs:   order.SellerIDs(),
		TotalAmount: order.Total().Amount(),
		Currency:    order.Total().Currency(),
	}
}

func NewOrderCancelledEvent(order *Order) contracts.OrderCancelledEvent {
	return contracts.OrderCancelledEvent{
		BaseEvent: events.NewBaseEvent(contracts.OrderCancelledEventType, order.ID().String()),
		OrderID:   order.ID().String(),
		UserID:    order.UserID().String(),
	}
}
