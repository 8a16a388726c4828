// Package http provides HTTP handlers for the catalog module.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/agrilink/marketplace/modules/catalog/application/queries"
	"github.com/agrilink/marketplace/modules/catalog/domain"
	"github.com/agrilink/marketplace/modules/shared/types"
)

// Handler handles HTTP requests for the catalog module.
type Handler struct {
	listProducts *queries.ListProductsHandler
	getProduct   *queries.GetProductHandler
	logger       *slog.Logger
}

// RegisterRoutes registers the catalog module routes to the given mux.
func RegisterRoutes(
	mux *http.ServeMux,
	listProducts *queries.ListProductsHandler,
	getProduct *queries.GetProductHandler,
	logger *slog.Logger,
) {
	h := &Handler{
		listProducts: listProducts,
		getProduct:   getProduct,
		logger:       logger,
	}

	mux.HandleFunc("GET /products", h.handleListProducts)
	mux.HandleFunc("GET /products/{id}", h.handleGetProduct)
	mux.HandleFunc("GET /sellers/{id}/products", h.handleSellerProducts)
	mux.HandleFunc("GET /categories", h.handleCategories)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.listProducts.Handle(r.Context(), queries.ListProductsQuery{
		Category: q.Get("category"),
		Search:   q.Get("q"),
		SellerID: q.Get("seller_id"),
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.getProduct.Handle(r.Context(), queries.GetProductQuery{ProductID: r.PathValue("id")})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) handleSellerProducts(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.listProducts.Handle(r.Context(), queries.ListProductsQuery{
		SellerID: r.PathValue("id"),
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]domain.Category{"categories": domain.Categories()})
}

// Helper functions

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		writeError(w, http.StatusNotFound, domain.ErrProductNotFound.Error())
	case errors.Is(err, domain.ErrCategoryInvalid),
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

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
