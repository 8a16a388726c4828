package domain

import "errors"

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductNameRequired = errors.New("product name is required")
	ErrSellerRequired      = errors.New("product seller is required")
	ErrCategoryInvalid     = errors.New("product category is invalid")
	ErrPriceInvalid        = errors.New("product price must not be negative")
	ErrStockInvalid        = errors.New("product stock must not be negative")
)
