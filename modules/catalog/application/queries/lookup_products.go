package queries

import (
	"context"
	"fmt"

	"github.com/agrilink/marketplace/modules/catalog/domain"
	"github.com/agrilink/marketplace/modules/shared/types"
)

// LookupProductsQuery prices a set of products for checkout.
type LookupProductsQuery struct {
	ProductIDs []string
}

type LookupProductsHandler struct {
	repo domain.ProductRepository
}

func NewLookupProductsHandler(repo domain.ProductRepository) *LookupProductsHandler {
	return &LookupProductsHandler{repo: repo}
}

// Handle returns the requested products keyed by id. Unknown and malformed
// ids are absent from the result; callers decide how to report them.
func (h *LookupProductsHandler) Handle(ctx context.Context, q LookupProductsQuery) (map[string]ProductDTO, error) {
	seen := make(map[string]bool, len(q.ProductIDs))
	ids := make([]types.ProductID, 0, len(q.ProductIDs))
	for _, raw := range q.ProductIDs {
		id, err := types.ParseProductID(raw)
		if err != nil || seen[id.String()] {
			continue
		}
		seen[id.String()] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return map[string]ProductDTO{}, nil
	}

	products, err := h.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("looking up products: %w", err)
	}

	out := make(map[string]ProductDTO, len(products))
	for _, p := range products {
		out[p.ID().String()] = ToProductDTO(p)
	}
	return out, nil
}
