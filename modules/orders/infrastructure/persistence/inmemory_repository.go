// Package persistence implements the order ledger.
package persistence

import (
	"context"
	"slices"
	"sync"

	"github.com/agrilink/marketplace/modules/orders/domain"
	"github.com/agrilink/marketplace/modules/shared/types"
)

// InMemoryRepository implements OrderRepository using in-memory storage.
// Snapshots are stored so callers never share a mutable aggregate with the
// store.
type InMemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]domain.OrderSnapshot
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		orders: make(map[string]domain.OrderSnapshot),
	}
}

// Compile-time interface check.
var _ domain.OrderRepository = (*InMemoryRepository)(nil)

func (r *InMemoryRepository) Save(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID().String()] = order.Snapshot()
	return nil
}

func (r *InMemoryRepository) FindByID(ctx context.Context, id types.OrderID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, exists := r.orders[id.String()]
	if !exists {
		return nil, domain.ErrOrderNotFound
	}
	return domain.Reconstitute(snapshot), nil
}

func (r *InMemoryRepository) FindByUserID(ctx context.Context, userID types.UserID, offset, limit int) ([]*domain.Order, int, error) {
	r.mu.RLock()
	var userOrders []domain.OrderSnapshot
	for _, snapshot := range r.orders {
		if snapshot.UserID == userID {
			userOrders = append(userOrders, snapshot)
		}
	}
	r.mu.RUnlock()

	// Newest first; ids break ties between orders placed in the same instant.
	slices.SortFunc(userOrders, func(a, b domain.OrderSnapshot) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if a.ID.String() < b.ID.String() {
			return -1
		}
		return 1
	})

	total := len(userOrders)
	if offset >= total {
		return []*domain.Order{}, total, nil
	}

	end := min(offset+limit, total)
	page := make([]*domain.Order, 0, end-offset)
	for _, snapshot := range userOrders[offset:end] {
		page = append(page, domain.Reconstitute(snapshot))
	}
	return page, total, nil
}
