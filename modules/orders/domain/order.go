// Package domain contains business entities and rules for checkout.
package domain

import (
	"time"

	shareddomain "github.com/agrilink/marketplace/modules/shared/domain"
	"github.com/agrilink/marketplace/modules/shared/types"
)

// Order is the aggregate root for a placed checkout.
type Order struct {
	shareddomain.AggregateRoot

	id          types.OrderID
	userID      types.UserID
	contact     Contact
	items       []LineItem
	subtotal    types.Money
	deliveryFee types.Money
	total       types.Money
	status      Status
	createdAt   time.Time
	updatedAt   time.Time
}

// OrderSnapshot carries an order's persisted state.
type OrderSnapshot struct {
	ID          types.OrderID
	UserID      types.UserID
	Contact     Contact
	Items       []LineItem
	Subtotal    types.Money
	DeliveryFee types.Money
	Total       types.Money
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PlaceOrder records an accepted quote as an order and raises OrderPlaced.
func PlaceOrder(id types.OrderID, userID types.UserID, contact Contact, quote *Quote) (*Order, error) {
	if err := quote.Placeable(); err != nil {
		return nil, err
	}

	var items []LineItem
	for _, g := range quote.Groups {
		items = append(items, g.Items...)
	}

	now := time.Now().UTC()
	o := &Order{
		id:          id,
		userID:      userID,
		contact:     contact,
		items:       items,
		subtotal:    quote.Subtotal,
		deliveryFee: quote.DeliveryFee,
		total:       quote.Total,
		status:      StatusPlaced,
		createdAt:   now,
		updatedAt:   now,
	}
	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

// Reconstitute rebuilds an order from persistence.
func Reconstitute(s OrderSnapshot) *Order {
	return &Order{
		id:          s.ID,
		userID:      s.UserID,
		contact:     s.Contact,
		items:       s.Items,
		subtotal:    s.Subtotal,
		deliveryFee: s.DeliveryFee,
		total:       s.Total,
		status:      s.Status,
		createdAt:   s.CreatedAt,
		updatedAt:   s.UpdatedAt,
	}
}

// Getters

func (o *Order) ID() types.OrderID        { return o.id }
func (o *Order) UserID() types.UserID     { return o.userID }
func (o *Order) Contact() Contact         { return o.contact }
func (o *Order) Fulfillment() Fulfillment { return o.contact.Fulfillment }
func (o *Order) Items() []LineItem        { return o.items }
func (o *Order) Subtotal() types.Money    { return o.subtotal }
func (o *Order) DeliveryFee() types.Money { return o.deliveryFee }
func (o *Order) Total() types.Money       { return o.total }
func (o *Order) Status() Status           { return o.status }
func (o *Order) CreatedAt() time.Time     { return o.createdAt }
func (o *Order) UpdatedAt() time.Time     { return o.updatedAt }

// OwnedBy reports whether id placed the order.
func (o *Order) OwnedBy(id types.UserID) bool { return o.userID == id }

// SellerIDs returns the distinct sellers in item order.
func (o *Order) SellerIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, item := range o.items {
		if !seen[item.SellerID] {
			seen[item.SellerID] = true
			ids = append(ids, item.SellerID)
		}
	}
	return ids
}

// Snapshot returns the order's state for persistence.
func (o *Order) Snapshot() OrderSnapshot {
	return OrderSnapshot{
		ID:          o.id,
		UserID:      o.userID,
		Contact:     o.contact,
		Items:       append([]LineItem(nil), o.items...),
		Subtotal:    o.subtotal,
		DeliveryFee: o.deliveryFee,
		Total:       o.total,
		Status:      o.status,
		CreatedAt:   o.createdAt,
		UpdatedAt:   o.updatedAt,
	}
}

// Business methods

// Cancel cancels a placed order.
func (o *Order) Cancel() error {
	if o.status == StatusCancelled {
		return ErrOrderAlreadyCancelled
	}

	o.status = StatusCancelled
	o.updatedAt = time.Now().UTC()
	o.AddDomainEvent(NewOrderCancelledEvent(o))
	return nil
}
