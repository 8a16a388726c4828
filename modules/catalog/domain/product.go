// Package domain contains the product catalog model.
package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/agrilink/marketplace/modules/shared/types"
)

// Category groups products for browsing.
type Category string

const (
	CategoryVegetables Category = "vegetables"
	CategoryFruits     Category = "fruits"
	CategoryDairy      Category = "dairy"
	CategoryEggs       Category = "eggs"
	CategoryMeat       Category = "meat"
	CategoryGrains     Category = "grains"
	CategoryHerbs      Category = "herbs"
	CategoryPantry     Category = "pantry"
)

var categories = []Category{
	CategoryVegetables, CategoryFruits, CategoryDairy, CategoryEggs,
	CategoryMeat, CategoryGrains, CategoryHerbs, CategoryPantry,
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(categories, c) {
		return "", ErrCategoryInvalid
	}
	return c, nil
}

func (c Category) String() string { return string(c) }

// Categories lists every category in display order.
func Categories() []Category {
	return slices.Clone(categories)
}

// Product is a farmer's listing. The catalog is read-only here: listings are
// managed in the hosted backend's dashboard.
type Product struct {
	id          types.ProductID
	sellerID    types.UserID
	sellerName  string
	name        string
	description string
	category    Category
	unit        string
	price       types.Money
	stock       int
	imageURL    string
	active      bool
	createdAt   time.Time
}

// ProductSnapshot carries stored product state.
type ProductSnapshot struct {
	ID          types.ProductID
	SellerID    types.UserID
	SellerName  string
	Name        string
	Description string
	Category    Category
	Unit        string
	Price       types.Money
	Stock       int
	ImageURL    string
	Active      bool
	CreatedAt   time.Time
}

// NewProduct validates s and builds a Product.
func NewProduct(s ProductSnapshot) (*Product, error) {
	name := strings.TrimSpace(s.Name)
	switch {
	case name == "":
		return nil, ErrProductNameRequired
	case s.SellerID.IsZero():
		return nil, ErrSellerRequired
	case s.Price.Amount() < 0:
		return nil, ErrPriceInvalid
	case s.Stock < 0:
		return nil, ErrStockInvalid
	}
	if _, err := ParseCategory(s.Category.String()); err != nil {
		return nil, err
	}
	unit := strings.TrimSpace(s.Unit)
	if unit == "" {
		unit = "each"
	}
	return &Product{
		id:          s.ID,
		sellerID:    s.SellerID,
		sellerName:  strings.TrimSpace(s.SellerName),
		name:        name,
		description: strings.TrimSpace(s.Description),
		category:    s.Category,
		unit:        unit,
		price:       s.Price,
		stock:       s.Stock,
		imageURL:    s.ImageURL,
		active:      s.Active,
		createdAt:   s.CreatedAt,
	}, nil
}

func (p *Product) ID() types.ProductID    { return p.id }
func (p *Product) SellerID() types.UserID { return p.sellerID }
func (p *Product) SellerName() string     { return p.sellerName }
func (p *Product) Name() string           { return p.name }
func (p *Product) Description() string    { return p.description }
func (p *Product) Category() Category     { return p.category }
func (p *Product) Unit() string           { return p.unit }
func (p *Product) Price() types.Money     { return p.price }
func (p *Product) Stock() int             { return p.stock }
func (p *Product) ImageURL() string       { return p.imageURL }
func (p *Product) Active() bool           { return p.active }
func (p *Product) CreatedAt() time.Time   { return p.createdAt }

// Available reports whether the product can be ordered.
func (p *Product) Available() bool {
	return p.active && p.stock > 0
}

// Matches reports whether p satisfies the non-paging parts of f.
func (p *Product) Matches(f Filter) bool {
	if !p.active {
		return false
	}
	if f.Category != "" && p.category != f.Category {
		return false
	}
	if !f.SellerID.IsZero() && p.sellerID != f.SellerID {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		return strings.Contains(strings.ToLower(p.name), q) ||
			strings.Contains(strings.ToLower(p.description), q)
	}
	return true
}
