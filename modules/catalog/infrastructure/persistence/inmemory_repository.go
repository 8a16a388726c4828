// Package persistence implements the catalog repository on in-memory and
// hosted-backend storage.
package persistence

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/agrilink/marketplace/modules/catalog/domain"
	"github.com/agrilink/marketplace/modules/shared/types"
)

// InMemoryRepository implements ProductRepository using in-memory storage.
// Useful for testing and development.
type InMemoryRepository struct {
	mu       sync.RWMutex
	products map[string]domain.ProductSnapshot
}

func NewInMemoryRepository(products ...domain.ProductSnapshot) *InMemoryRepository {
	r := &InMemoryRepository{products: make(map[string]domain.ProductSnapshot, len(products))}
	for _, p := range products {
		r.products[p.ID.String()] = p
	}
	return r
}

// Compile-time interface check.
var _ domain.ProductRepository = (*InMemoryRepository)(nil)

func (r *InMemoryRepository) List(ctx context.Context, f domain.Filter) ([]*domain.Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f = f.Normalize()
	var matched []*domain.Product
	for _, s := range r.products {
		p, err := domain.NewProduct(s)
		if err != nil {
			continue
		}
		if p.Matches(f) {
			matched = append(matched, p)
		}
	}
	slices.SortFunc(matched, func(a, b *domain.Product) int {
		return cmp.Or(cmp.Compare(a.Name(), b.Name()), cmp.Compare(a.ID().String(), b.ID().String()))
	})

	total := len(matched)
	if f.Offset >= total {
		return []*domain.Product{}, total, nil
	}
	end := min(f.Offset+f.Limit, total)
	return matched[f.Offset:end], total, nil
}

func (r *InMemoryRepository) FindByID(ctx context.Context, id types.ProductID) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.products[id.String()]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return domain.NewProduct(s)
}

func (r *InMemoryRepository) FindByIDs(ctx context.Context, ids []types.ProductID) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Product, 0, len(ids))
	for _, id := range ids {
		s, ok := r.products[id.String()]
		if !ok {
			continue
		}
		p, err := domain.NewProduct(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
