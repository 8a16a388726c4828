package domain

import "github.com/agrilink/marketplace/modules/shared/types"

// SellerPolicy holds a seller's delivery terms.
type SellerPolicy struct {
	MinimumQuantity int
	DeliveryFee     types.Money
}

// PolicyBook resolves the delivery terms for a seller.
type PolicyBook interface {
	PolicyFor(sellerID string) SellerPolicy
}

// StaticPolicies is a PolicyBook backed by configuration. Sellers without
// an entry get Default.
type StaticPolicies struct {
	Default SellerPolicy
	Sellers map[string]SellerPolicy
}

func (p StaticPolicies) PolicyFor(sellerID string) SellerPolicy {
	if policy, ok := p.Sellers[sellerID]; ok {
		return policy
	}
	return p.Default
}

var _ PolicyBook = StaticPolicies{}
