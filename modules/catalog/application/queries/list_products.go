package queries

import (
	"context"
	"fmt"

	"github.com/agrilink/marketplace/modules/catalog/domain"
	"github.com/agrilink/marketplace/modules/shared/types"
)

// ListProductsQuery browses the catalog. Empty fields do not filter.
type ListProductsQuery struct {
	Category string
	Search   string
	SellerID string
	Offset   int
	Limit    int
}

type ListProductsResult struct {
	Products []ProductDTO `json:"products"`
	Total    int          `json:"total"`
	Offset   int          `json:"offset"`
	Limit    int          `json:"limit"`
}

type ListProductsHandler struct {
	repo domain.ProductRepository
}

func NewListProductsHandler(repo domain.ProductRepository) *ListProductsHandler {
	return &ListProductsHandler{repo: repo}
}

func (h *ListProductsHandler) Handle(ctx context.Context, q ListProductsQuery) (*ListProductsResult, error) {
	filter := domain.Filter{
		Search: q.Search,
		Offset: q.Offset,
		Limit:  q.Limit,
	}.Normalize()

	if q.Category != "" {
		category, err := domain.ParseCategory(q.Category)
		if err != nil {
			return nil, err
		}
		filter.Category = category
	}
	if q.SellerID != "" {
		sellerID, err := types.ParseUserID(q.SellerID)
		if err != nil {
			return nil, fmt.Errorf("invalid seller ID: %w", err)
		}
		filter.SellerID = sellerID
	}

	products, total, err := h.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	dtos := make([]ProductDTO, len(products))
	for i, p := range products {
		dtos[i] = ToProductDTO(p)
	}

	return &ListProductsResult{
		Products: dtos,
		Total:    total,
		Offset:   filter.Offset,
		Limit:    filter.Limit,
	}, nil
}
