package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/agrilink/marketplace/modules/shared/types"
)

// CatalogProduct is the catalog's view of a product as checkout needs it.
type CatalogProduct struct {
	ID         string
	Name       string
	SellerID   string
	SellerName string
	Unit       string
	UnitPrice  types.Money
	Stock      int
	Available  bool
}

// ProductCatalog prices cart lines from the authoritative product data.
type ProductCatalog interface {
	// Lookup returns the products found, keyed by lowercase id.
	Lookup(ctx context.Context, ids []string) (map[string]CatalogProduct, error)
}

// UnavailableError lists the cart products that cannot be ordered.
type UnavailableError struct {
	ProductIDs []string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %s", ErrProductUnavailable, strings.Join(e.ProductIDs, ", "))
}

func (e *UnavailableError) Is(target error) bool { return target == ErrProductUnavailable }

// PriceCart resolves cart items against the catalog. Unknown, inactive and
// out-of-stock products are reported together in an *UnavailableError. No
// product may total more than MaxLineQuantity units.
func PriceCart(ctx context.Context, catalog ProductCatalog, items []CartItem) ([]LineItem, error) {
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	ids := make([]string, 0, len(items))
	wanted := make(map[string]int, len(items))
	for _, item := range items {
		if item.Quantity <= 0 || item.Quantity > MaxLineQuantity {
			return nil, fmt.Errorf("product %s: %w", item.ProductID, ErrInvalidQuantity)
		}
		id := strings.ToLower(strings.TrimSpace(item.ProductID))
		if _, seen := wanted[id]; !seen {
			ids = append(ids, id)
		}
		if wanted[id] > MaxLineQuantity-item.Quantity {
			return nil, fmt.Errorf("product %s: more than %d units: %w", item.ProductID, MaxLineQuantity, ErrInvalidQuantity)
		}
		wanted[id] += item.Quantity
	}

	products, err := catalog.Lookup(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("looking up products: %w", err)
	}

	var unavailable []string
	for _, id := range ids {
		p, ok := products[id]
		if !ok || !p.Available || wanted[id] > p.Stock {
			unavailable = append(unavailable, id)
		}
	}
	if len(unavailable) > 0 {
		return nil, &UnavailableError{ProductIDs: unavailable}
	}

	lines := make([]LineItem, 0, len(items))
	for _, item := range items {
		p := products[strings.ToLower(strings.TrimSpace(item.ProductID))]
		lines = append(lines, LineItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			SellerID:    p.SellerID,
			SellerName:  p.SellerName,
			Unit:        p.Unit,
			Quantity:    item.Quantity,
			UnitPrice:   p.UnitPrice,
		})
	}
	return lines, nil
}

// Placer hands an accepted order to fulfillment and returns its identifier.
type Placer interface {
	Place(ctx context.Context) (types.OrderID, error)
}
