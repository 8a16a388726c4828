package domain

import (
	"context"

	"github.com/agrilink/marketplace/modules/shared/types"
)

// OrderRepository defines persistence operations for the order ledger.
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id types.OrderID) (*Order, error)
	// FindByUserID returns a page of the user's orders, newest first, and
	// the user's total order count.
	FindByUserID(ctx context.Context, userID types.UserID, offset, limit int) ([]*Order, int, error)
}
