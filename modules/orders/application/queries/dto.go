// Package queries contains read use cases for the orders module.
package queries

import (
	"time"

	"github.com/agrilink/marketplace/modules/orders/domain"
	"github.com/agrilink/marketplace/modules/shared/types"
)

type MoneyDTO struct {
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Formatted string `json:"formatted"`
}

func toMoneyDTO(m types.Money) MoneyDTO {
	return MoneyDTO{Amount: m.Amount(), Currency: m.Currency(), Formatted: m.String()}
}

type LineItemDTO struct {
	ProductID   string   `json:"product_id"`
	ProductName string   `json:"product_name"`
	Unit        string   `json:"unit,omitempty"`
	Quantity    int      `json:"quantity"`
	UnitPrice   MoneyDTO `json:"unit_price"`
	Subtotal    MoneyDTO `json:"subtotal"`
}

func toLineItemDTO(item domain.LineItem) LineItemDTO {
	// Lines reach here through GroupBySeller, which rejects overflowing totals.
	subtotal, _ := item.Subtotal()
	return LineItemDTO{
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Unit:        item.Unit,
		Quantity:    item.Quantity,
		UnitPrice:   toMoneyDTO(item.UnitPrice),
		Subtotal:    toMoneyDTO(subtotal),
	}
}

// SellerGroupDTO is one seller's share of a quote.
type SellerGroupDTO struct {
	SellerID        string        `json:"seller_id"`
	SellerName      string        `json:"seller_name"`
	Items           []LineItemDTO `json:"items"`
	Quantity        int           `json:"quantity"`
	Subtotal        MoneyDTO      `json:"subtotal"`
	MinimumQuantity int           `json:"minimum_quantity"`
	DeliveryFee     MoneyDTO      `json:"delivery_fee"`
	BelowMinimum    bool          `json:"below_minimum"`
}

// QuoteDTO is the checkout summary shown before placing an order.
type QuoteDTO struct {
	Fulfillment string           `json:"fulfillment"`
	Groups      []SellerGroupDTO `json:"groups"`
	Subtotal    MoneyDTO         `json:"subtotal"`
	DeliveryFee MoneyDTO         `json:"delivery_fee"`
	Total       MoneyDTO         `json:"total"`
	CanPlace    bool             `json:"can_place"`
}

func ToQuoteDTO(q *domain.Quote) *QuoteDTO {
	groups := make([]SellerGroupDTO, len(q.Groups))
	for i, g := range q.Groups {
		items := make([]LineItemDTO, len(g.Items))
		for j, item := range g.Items {
			items[j] = toLineItemDTO(item)
		}
		groups[i] = SellerGroupDTO{
			SellerID:        g.SellerID,
			SellerName:      g.SellerName,
			Items:           items,
			Quantity:        g.Quantity,
			Subtotal:        toMoneyDTO(g.Subtotal),
			MinimumQuantity: g.MinimumQuantity,
			DeliveryFee:     toMoneyDTO(g.DeliveryFee),
			BelowMinimum:    g.BelowMinimum,
		}
	}
	return &QuoteDTO{
		Fulfillment: q.Fulfillment.String(),
		Groups:      groups,
		Subtotal:    toMoneyDTO(q.Subtotal),
		DeliveryFee: toMoneyDTO(q.DeliveryFee),
		Total:       toMoneyDTO(q.Total),
		CanPlace:    q.CanPlace(),
	}
}

// OrderDTO is a read model for order data.
type OrderDTO struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	Status          string        `json:"status"`
	Fulfillment     string        `json:"fulfillment"`
	FullName        string        `json:"full_name"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	DeliveryAddress string        `json:"delivery_address,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	Items           []LineItemDTO `json:"items"`
	Subtotal        MoneyDTO      `json:"subtotal"`
	DeliveryFee     MoneyDTO      `json:"delivery_fee"`
	Total           MoneyDTO      `json:"total"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func ToOrderDTO(order *domain.Order) *OrderDTO {
	items := make([]LineItemDTO, len(order.Items()))
	for i, item := range order.Items() {
		items[i] = toLineItemDTO(item)
	}

	contact := order.Contact()
	return &OrderDTO{
		ID:              order.ID().String(),
		UserID:          order.UserID().String(),
		Status:          order.Status().String(),
		Fulfillment:     order.Fulfillment().String(),
		FullName:        contact.FullName,
		Email:           contact.Email,
		Phone:           contact.Phone,
		DeliveryAddress: contact.DeliveryAddress,
		Notes:           contact.Notes,
		Items:           items,
		Subtotal:        toMoneyDTO(order.Subtotal()),
		DeliveryFee:     toMoneyDTO(order.DeliveryFee()),
		Total:           toMoneyDTO(order.Total()),
		CreatedAt:       order.CreatedAt(),
		UpdatedAt:       order.UpdatedAt(),
	}
}
