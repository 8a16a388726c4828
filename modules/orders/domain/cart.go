package domain

import (
	"fmt"

	"github.com/agrilink/marketplace/modules/shared/types"
)

// CartItem is what the buyer asks for; prices come from the catalog.
type CartItem struct {
	ProductID string
	Quantity  int
}

// LineItem is a priced cart line attributed to one seller.
type LineItem struct {
	ProductID   string
	ProductName string
	SellerID    string
	SellerName  string
	Unit        string
	Quantity    int
	UnitPrice   types.Money
}

// MaxLineQuantity bounds the units of one product in a cart.
const MaxLineQuantity = 10_000

func (i LineItem) Subtotal() (types.Money, error) {
	return i.UnitPrice.Multiply(int64(i.Quantity))
}

// SellerGroup is the part of a cart attributed to one seller.
type SellerGroup struct {
	SellerID   string
	SellerName string
	Items      []LineItem
	Quantity   int
	Subtotal   types.Money

	MinimumQuantity int
	DeliveryFee     types.Money
	BelowMinimum    bool
}

// GroupBySeller partitions items into per-seller groups in order of each
// seller's first appearance. Lines sharing a product id are merged. All
// prices must be in currency.
func GroupBySeller(items []LineItem, currency string) ([]SellerGroup, error) {
	var groups []SellerGroup
	index := make(map[string]int)

	for _, item := range items {
		if item.Quantity <= 0 || item.Quantity > MaxLineQuantity {
			return nil, fmt.Errorf("product %s: %w", item.ProductID, ErrInvalidQuantity)
		}
		if item.UnitPrice.Amount() < 0 {
			return nil, fmt.Errorf("product %s: %w", item.ProductID, ErrInvalidUnitPrice)
		}
		if item.UnitPrice.Currency() != currency {
			return nil, fmt.Errorf("product %s priced in %s, cart in %s: %w",
				item.ProductID, item.UnitPrice.Currency(), currency, types.ErrCurrencyMismatch)
		}

		gi, ok := index[item.SellerID]
		if !ok {
			gi = len(groups)
			index[item.SellerID] = gi
			groups = append(groups, SellerGroup{
				SellerID:    item.SellerID,
				SellerName:  item.SellerName,
				Subtotal:    types.Zero(currency),
				DeliveryFee: types.Zero(currency),
			})
		}
		g := &groups[gi]

		lineTotal, err := item.Subtotal()
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", item.ProductID, err)
		}
		subtotal, err := g.Subtotal.Add(lineTotal)
		if err != nil {
			return nil, fmt.Errorf("seller %s: %w", item.SellerID, err)
		}

		merged := false
		for i := range g.Items {
			if g.Items[i].ProductID == item.ProductID {
				if g.Items[i].Quantity > MaxLineQuantity-item.Quantity {
					return nil, fmt.Errorf("product %s: %w", item.ProductID, ErrInvalidQuantity)
				}
				g.Items[i].Quantity += item.Quantity
				merged = true
				break
			}
		}
		if !merged {
			g.Items = append(g.Items, item)
		}

		g.Quantity += item.Quantity
		g.Subtotal = subtotal
	}
	return groups, nil
}
