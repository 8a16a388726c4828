// Package queries contains read use cases for the catalog module.
package queries

import "github.com/agrilink/marketplace/modules/catalog/domain"

// ProductDTO is the public view of a product.
type ProductDTO struct {
	ID          string `json:"id"`
	SellerID    string `json:"seller_id"`
	SellerName  string `json:"seller_name"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	Unit        string `json:"unit"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	Price       string `json:"price"`
	Stock       int    `json:"stock"`
	Available   bool   `json:"available"`
	ImageURL    string `json:"image_url,omitempty"`
}

func ToProductDTO(p *domain.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID().String(),
		SellerID:    p.SellerID().String(),
		SellerName:  p.SellerName(),
		Name:        p.Name(),
		Description: p.Description(),
		Category:    p.Category().String(),
		Unit:        p.Unit(),
		PriceCents:  p.Price().Amount(),
		Currency:    p.Price().Currency(),
		Price:       p.Price().String(),
		Stock:       p.Stock(),
		Available:   p.Available(),
		ImageURL:    p.ImageURL(),
	}
}
