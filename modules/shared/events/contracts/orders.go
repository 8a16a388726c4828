package contracts

import "github.com/agrilink/marketplace/modules/shared/events"

const (
	OrderPlacedEventType    events.EventType = "orders.OrderPlaced"
	OrderCancelledEventType events.EventType = "orders.OrderCancelled"
)

// OrderPlacedEvent is published once an order has been recorded.
type OrderPlacedEvent struct {
	events.BaseEvent
	OrderID     string   `json:"order_id"`
	UserID      string   `json:"user_id"`
	Email       string   `json:"email"`
	Fulfillment string   `json:"fulfillment"`
	SellerIDs   []string `json:"seller_ids"`
	TotalAmount int64    `json:"total_amount"`
	Currency    string   `json:"currency"`
}

// OrderCancelledEvent is published when a placed order is cancelled.
type OrderCancelledEvent struct {
	events.BaseEvent
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}
