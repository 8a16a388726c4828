package domain

import (
	"fmt"
	"strings"

	"github.com/agrilink/marketplace/modules/shared/types"
)

// Quote is the priced outcome of a cart for a fulfillment choice.
type Quote struct {
	Fulfillment Fulfillment
	Groups      []SellerGroup
	Subtotal    types.Money
	DeliveryFee types.Money
	Total       types.Money
}

// CanPlace reports whether every seller group meets its minimum.
func (q *Quote) CanPlace() bool {
	return len(q.Groups) > 0 && len(q.BelowMinimum()) == 0
}

// BelowMinimum returns the groups that block placement.
func (q *Quote) BelowMinimum() []SellerGroup {
	var out []SellerGroup
	for _, g := range q.Groups {
		if g.BelowMinimum {
			out = append(out, g)
		}
	}
	return out
}

// Placeable returns a *MinimumNotMetError when any group blocks placement.
func (q *Quote) Placeable() error {
	if len(q.Groups) == 0 {
		return ErrCartEmpty
	}
	if below := q.BelowMinimum(); len(below) > 0 {
		return &MinimumNotMetError{Groups: below}
	}
	return nil
}

// MinimumNotMetError lists the seller groups under their delivery minimum.
type MinimumNotMetError struct {
	Groups []SellerGroup
}

func (e *MinimumNotMetError) Error() string {
	sellers := make([]string, len(e.Groups))
	for i, g := range e.Groups {
		sellers[i] = fmt.Sprintf("%s (%d of %d)", g.SellerID, g.Quantity, g.MinimumQuantity)
	}
	return fmt.Sprintf("%s: %s", ErrBelowMinimum, strings.Join(sellers, ", "))
}

func (e *MinimumNotMetError) Is(target error) bool { return target == ErrBelowMinimum }

// CheckEligibility stamps each group with its seller's minimum and flags the
// groups under it. Only delivery is constrained.
func CheckEligibility(groups []SellerGroup, fulfillment Fulfillment, policies PolicyBook) {
	for i := range groups {
		policy := policies.PolicyFor(groups[i].SellerID)
		groups[i].MinimumQuantity = policy.MinimumQuantity
		groups[i].BelowMinimum = fulfillment == FulfillmentDelivery &&
			groups[i].Quantity < policy.MinimumQuantity
	}
}

// ComputeDeliveryFee sets each group's flat fee and returns their sum. The
// fee is zero for pickup.
func ComputeDeliveryFee(groups []SellerGroup, fulfillment Fulfillment, policies PolicyBook, currency string) (types.Money, error) {
	total := types.Zero(currency)
	for i := range groups {
		if fulfillment != FulfillmentDelivery {
			groups[i].DeliveryFee = types.Zero(currency)
			continue
		}
		fee := policies.PolicyFor(groups[i].SellerID).DeliveryFee
		if fee.Currency() == "" {
			fee = types.Zero(currency)
		}
		sum, err := total.Add(fee)
		if err != nil {
			return types.Money{}, fmt.Errorf("delivery fee for seller %s: %w", groups[i].SellerID, err)
		}
		groups[i].DeliveryFee = fee
		total = sum
	}
	return total, nil
}

// BuildQuote groups, checks and prices items in one pass.
func BuildQuote(items []LineItem, fulfillment Fulfillment, policies PolicyBook, currency string) (*Quote, error) {
	groups, err := GroupBySeller(items, currency)
	if err != nil {
		return nil, err
	}
	CheckEligibility(groups, fulfillment, policies)

	fee, err := ComputeDeliveryFee(groups, fulfillment, policies, currency)
	if err != nil {
		return nil, err
	}

	subtotal := types.Zero(currency)
	for _, g := range groups {
		if subtotal, err = subtotal.Add(g.Subtotal); err != nil {
			return nil, fmt.Errorf("cart subtotal: %w", err)
		}
	}
	total, err := subtotal.Add(fee)
	if err != nil {
		return nil, fmt.Errorf("cart total: %w", err)
	}

	return &Quote{
		Fulfillment: fulfillment,
		Groups:      groups,
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       total,
	}, nil
}
