package domain

import (
	"context"

	"github.com/agrilink/marketplace/modules/shared/types"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Filter selects active products. Zero fields do not filter.
type Filter struct {
	Category Category
	Search   string
	SellerID types.UserID
	Offset   int
	Limit    int
}

// Normalize clamps paging to the allowed range.
func (f Filter) Normalize() Filter {
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	return f
}

// ProductRepository reads the catalog. List returns active products sorted
// by name, plus the total number of matches.
type ProductRepository interface {
	List(ctx context.Context, f Filter) ([]*Product, int, error)
	FindByID(ctx context.Context, id types.ProductID) (*Product, error)
	// FindByIDs returns the products that exist, in no particular order.
	FindByIDs(ctx context.Context, ids []types.ProductID) ([]*Product, error)
}
