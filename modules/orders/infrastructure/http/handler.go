// Package http provides HTTP handlers for the orders module.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/agrilink/marketplace/internal/platform/authn"
	"github.com/agrilink/marketplace/modules/orders/application/commands"
	"github.com/agrilink/marketplace/modules/orders/application/queries"
	"github.com/agrilink/marketplace/modules/orders/domain"
	"github.com/agrilink/marketplace/modules/shared/types"
)

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	Quote       *queries.QuoteHandler
	PlaceOrder  *commands.PlaceOrderHandler
	CancelOrder *commands.CancelOrderHandler
	GetOrder    *queries.GetOrderHandler
	ListOrders  *queries.ListUserOrdersHandler
}

type Handler struct {
	Handlers
	logger *slog.Logger
}

// RegisterRoutes registers the orders module routes to the given mux.
func RegisterRoutes(mux *http.ServeMux, handlers Handlers, logger *slog.Logger) {
	h := &Handler{Handlers: handlers, logger: logger}

	mux.HandleFunc("POST /checkout/quote", h.handleQuote)
	mux.HandleFunc("POST /checkout/orders", authn.RequireIdentity(h.handlePlaceOrder))
	mux.HandleFunc("GET /orders", authn.RequireIdentity(h.handleListOrders))
	mux.HandleFunc("GET /orders/{id}", authn.RequireIdentity(h.handleGetOrder))
	mux.HandleFunc("POST /orders/{id}/cancel", authn.RequireIdentity(h.handleCancelOrder))
}

// Request/Response DTOs

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type quoteRequest struct {
	Items       []cartItemRequest `json:"items"`
	Fulfillment string            `json:"fulfillment"`
}

type checkoutFormRequest struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Fulfillment     string `json:"fulfillment"`
	DeliveryAddress string `json:"delivery_address"`
	Notes           string `json:"notes"`
}

type placeOrderRequest struct {
	Items []cartItemRequest   `json:"items"`
	Form  checkoutFormRequest `json:"form"`
}

type placeOrderResponse struct {
	ID     string            `json:"id"`
	Status string            `json:"status"`
	Quote  *queries.QuoteDTO `json:"quote"`
	Order  *queries.OrderDTO `json:"order"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func toCartItems(items []cartItemRequest) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	for i, item := range items {
		out[i] = domain.CartItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return out
}

// Handlers

func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	quote, err := h.Quote.Handle(r.Context(), queries.QuoteQuery{
		Items:       toCartItems(req.Items),
		Fulfillment: req.Fulfillment,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	caller, _ := authn.FromContext(r.Context())

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.PlaceOrder.Handle(r.Context(), commands.PlaceOrderCommand{
		UserID: caller.UserID,
		Items:  toCartItems(req.Items),
		Form: domain.CheckoutForm{
			FullName:        req.Form.FullName,
			Email:           req.Form.Email,
			Phone:           req.Form.Phone,
			Fulfillment:     req.Form.Fulfillment,
			DeliveryAddress: req.Form.DeliveryAddress,
			Notes:           req.Form.Notes,
		},
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, placeOrderResponse{
		ID:     result.Order.ID().String(),
		Status: result.Order.Status().String(),
		Quote:  queries.ToQuoteDTO(result.Quote),
		Order:  queries.ToOrderDTO(result.Order),
	})
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	caller, _ := authn.FromContext(r.Context())

	order, err := h.GetOrder.Handle(r.Context(), queries.GetOrderQuery{
		OrderID: r.PathValue("id"),
		UserID:  caller.UserID,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	caller, _ := authn.FromContext(r.Context())
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.ListOrders.Handle(r.Context(), queries.ListUserOrdersQuery{
		UserID: caller.UserID,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	caller, _ := authn.FromContext(r.Context())

	order, err := h.CancelOrder.Handle(r.Context(), commands.CancelOrderCommand{
		OrderID: r.PathValue("id"),
		UserID:  caller.UserID,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, queries.ToOrderDTO(order))
}

// Helper functions

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		formErr        *domain.FormError
		minimumErr     *domain.MinimumNotMetError
		unavailableErr *domain.UnavailableError
	)

	switch {
	case errors.As(err, &formErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  domain.ErrInvalidCheckoutForm.Error(),
			Fields: formErr.Fields,
		})
	case errors.As(err, &minimumErr):
		fields := make(map[string]string, len(minimumErr.Groups))
		for _, g := range minimumErr.Groups {
			fields["sellers."+g.SellerID] = fmt.Sprintf(
				"delivery needs at least %d items from %s, cart has %d",
				g.MinimumQuantity, sellerLabel(g), g.Quantity)
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  domain.ErrBelowMinimum.Error(),
			Fields: fields,
		})
	case errors.As(err, &unavailableErr):
		fields := make(map[string]string, len(unavailableErr.ProductIDs))
		for _, id := range unavailableErr.ProductIDs {
			fields["items."+id] = "product is unavailable or out of stock"
		}
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:  domain.ErrProductUnavailable.Error(),
			Fields: fields,
		})
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, domain.ErrOrderNotFound.Error())
	case errors.Is(err, domain.ErrOrderAlreadyCancelled):
		writeError(w, http.StatusConflict, domain.ErrOrderAlreadyCancelled.Error())
	case errors.Is(err, authn.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, authn.ErrUnauthenticated.Error())
	case errors.Is(err, domain.ErrCartEmpty),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidUnitPrice),
		errors.Is(err, domain.ErrInvalidFulfillment),
		errors.Is(err, types.ErrInvalidID):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func sellerLabel(g domain.SellerGroup) string {
	if g.SellerName != "" {
		return g.SellerName
	}
	return g.SellerID
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
