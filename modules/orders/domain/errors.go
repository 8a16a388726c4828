package domain

import "errors"

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderAlreadyCancelled = errors.New("order is already cancelled")
	ErrCartEmpty             = errors.New("cart has no items")
	ErrInvalidQuantity       = errors.New("quantity must be a positive integer")
	ErrInvalidUnitPrice      = errors.New("unit price must not be negative")
	ErrInvalidFulfillment    = errors.New("fulfillment must be pickup or delivery")
	ErrProductUnavailable    = errors.New("product is unavailable")
	ErrBelowMinimum          = errors.New("seller minimum order not met for delivery")
	ErrInvalidCheckoutForm   = errors.New("invalid checkout form")
)
