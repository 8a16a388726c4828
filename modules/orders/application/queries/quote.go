package queries

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/agrilink/marketplace/modules/orders/domain"
)

var tracer = otel.Tracer("github.com/agrilink/marketplace/modules/orders")

// QuoteQuery prices a cart for a fulfillment choice. An empty fulfillment
// quotes pickup.
type QuoteQuery struct {
	Items       []domain.CartItem
	Fulfillment string
}

type QuoteHandler struct {
	catalog  domain.ProductCatalog
	policies domain.PolicyBook
	currency string
}

func NewQuoteHandler(catalog domain.ProductCatalog, policies domain.PolicyBook, currency string) *QuoteHandler {
	return &QuoteHandler{catalog: catalog, policies: policies, currency: currency}
}

func (h *QuoteHandler) Handle(ctx context.Context, query QuoteQuery) (*QuoteDTO, error) {
	quote, err := h.Quote(ctx, query)
	if err != nil {
		return nil, err
	}
	return ToQuoteDTO(quote), nil
}

// Quote returns the domain quote; placement reuses it.
func (h *QuoteHandler) Quote(ctx context.Context, query QuoteQuery) (*domain.Quote, error) {
	ctx, span := tracer.Start(ctx, "checkout.quote")
	defer span.End()

	fulfillment := domain.FulfillmentPickup
	if strings.TrimSpace(query.Fulfillment) != "" {
		f, err := domain.ParseFulfillment(query.Fulfillment)
		if err != nil {
			return nil, err
		}
		fulfillment = f
	}
	span.SetAttributes(
		attribute.String("checkout.fulfillment", fulfillment.String()),
		attribute.Int("checkout.lines", len(query.Items)),
	)

	lines, err := domain.PriceCart(ctx, h.catalog, query.Items)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "pricing failed")
		return nil, err
	}

	quote, err := domain.BuildQuote(lines, fulfillment, h.policies, h.currency)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "quote failed")
		return nil, fmt.Errorf("building quote: %w", err)
	}

	span.SetAttributes(
		attribute.Int("checkout.sellers", len(quote.Groups)),
		attribute.Bool("checkout.can_place", quote.CanPlace()),
		attribute.Int64("checkout.total", quote.Total.Amount()),
	)
	return quote, nil
}
