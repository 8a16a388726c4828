package domain

import "strings"

// Status represents the order status.
type Status string

const (
	StatusPlaced    Status = "placed"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusPlaced, StatusCancelled:
		return true
	default:
		return false
	}
}

// Fulfillment is how the buyer receives the order.
type Fulfillment string

const (
	FulfillmentPickup   Fulfillment = "pickup"
	FulfillmentDelivery Fulfillment = "delivery"
)

// ParseFulfillment accepts "pickup" or "delivery", case-insensitively.
func ParseFulfillment(s string) (Fulfillment, error) {
	switch f := Fulfillment(strings.ToLower(strings.TrimSpace(s))); f {
	case FulfillmentPickup, FulfillmentDelivery:
		return f, nil
	default:
		return "", ErrInvalidFulfillment
	}
}

func (f Fulfillment) String() string { return string(f) }
