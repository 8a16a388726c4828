// Package catalog adapts the catalog module's public API to the checkout
// port.
package catalog

import (
	"context"
	"fmt"

	catalogmodule "github.com/agrilink/marketplace/modules/catalog"
	"github.com/agrilink/marketplace/modules/orders/domain"
	"github.com/agrilink/marketplace/modules/shared/types"
)

// Lookuper is the part of the catalog module checkout depends on.
type Lookuper interface {
	LookupProducts(ctx context.Context, ids []string) (map[string]catalogmodule.Product, error)
}

// Adapter implements domain.ProductCatalog on top of the catalog module.
type Adapter struct {
	catalog Lookuper
}

func NewAdapter(catalog Lookuper) *Adapter {
	return &Adapter{catalog: catalog}
}

func (a *Adapter) Lookup(ctx context.Context, ids []string) (map[string]domain.CatalogProduct, error) {
	products, err := a.catalog.LookupProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make(map[string]domain.CatalogProduct, len(products))
	for id, p := range products {
		price, err := types.NewMoney(p.PriceCents, p.Currency)
		if err != nil {
			return nil, fmt.Errorf("product %s price: %w", id, err)
		}
		out[id] = domain.CatalogProduct{
			ID:         p.ID,
			Name:       p.Name,
			SellerID:   p.SellerID,
			SellerName: p.SellerName,
			Unit:       p.Unit,
			UnitPrice:  price,
			Stock:      p.Stock,
			Available:  p.Available,
		}
	}
	return out, nil
}

var _ domain.ProductCatalog = (*Adapter)(nil)
