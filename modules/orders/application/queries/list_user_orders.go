package queries

import (
	"context"
	"fmt"

	"github.com/agrilink/marketplace/modules/orders/domain"
	"github.com/agrilink/marketplace/modules/shared/types"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// OrderListDTO contains a paginated list of orders.
type OrderListDTO struct {
	Orders     []*OrderDTO `json:"orders"`
	TotalCount int         `json:"total_count"`
	Offset     int         `json:"offset"`
	Limit      int         `json:"limit"`
}

// ListUserOrdersQuery retrieves a user's order history, newest first.
type ListUserOrdersQuery struct {
	UserID string
	Offset int
	Limit  int
}

type ListUserOrdersHandler struct {
	repo domain.OrderRepository
}

func NewListUserOrdersHandler(repo domain.OrderRepository) *ListUserOrdersHandler {
	return &ListUserOrdersHandler{repo: repo}
}

func (h *ListUserOrdersHandler) Handle(ctx context.Context, query ListUserOrdersQuery) (*OrderListDTO, error) {
	userID, err := types.ParseUserID(query.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	offset := max(query.Offset, 0)
	limit := query.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	orders, total, err := h.repo.FindByUserID(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]*OrderDTO, len(orders))
	for i, order := range orders {
		dtos[i] = ToOrderDTO(order)
	}

	return &OrderListDTO{
		Orders:     dtos,
		TotalCount: total,
		Offset:     offset,
		Limit:      limit,
	}, nil
}
