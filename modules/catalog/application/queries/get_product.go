package queries

import (
	"context"
	"fmt"

	"github.com/agrilink/marketplace/modules/catalog/domain"
	"github.com/agrilink/marketplace/modules/shared/types"
)

type GetProductQuery struct {
	ProductID string
}

type GetProductHandler struct {
	repo domain.ProductRepository
}

func NewGetProductHandler(repo domain.ProductRepository) *GetProductHandler {
	return &GetProductHandler{repo: repo}
}

// Handle returns the product. Inactive listings are reported as not found.
func (h *GetProductHandler) Handle(ctx context.Context, q GetProductQuery) (*ProductDTO, error) {
	id, err := types.ParseProductID(q.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid product ID: %w", err)
	}

	product, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding product: %w", err)
	}
	if !product.Active() {
		return nil, domain.ErrProductNotFound
	}

	dto := ToProductDTO(product)
	return &dto, nil
}
