// Package catalog provides product browsing.
// This is the public API for the catalog bounded context.
package catalog

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/agrilink/marketplace/modules/catalog/application/queries"
	"github.com/agrilink/marketplace/modules/catalog/domain"
	httphandler "github.com/agrilink/marketplace/modules/catalog/infrastructure/http"
)

// Product is the catalog's public product view.
type Product = queries.ProductDTO

// Module is the public API for the catalog bounded context.
// External communication: HTTP API (RegisterRoutes)
// Cross-module communication: LookupProducts (synchronous, read-only)
type Module interface {
	// RegisterRoutes registers the module's HTTP routes to the given mux.
	RegisterRoutes(mux *http.ServeMux)
	// LookupProducts returns the products with the given ids, keyed by
	// canonical id. Unknown ids are absent.
	LookupProducts(ctx context.Context, ids []string) (map[string]Product, error)
}

// Config holds the module configuration.
type Config struct {
	Repository domain.ProductRepository
	Logger     *slog.Logger
}

type module struct {
	listProducts   *queries.ListProductsHandler
	getProduct     *queries.GetProductHandler
	lookupProducts *queries.LookupProductsHandler
	logger         *slog.Logger
}

// New creates a new catalog module.
func New(cfg Config) Module {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &module{
		listProducts:   queries.NewListProductsHandler(cfg.Repository),
		getProduct:     queries.NewGetProductHandler(cfg.Repository),
		lookupProducts: queries.NewLookupProductsHandler(cfg.Repository),
		logger:         logger.With("module", "catalog"),
	}
}

func (m *module) RegisterRoutes(mux *http.ServeMux) {
	httphandler.RegisterRoutes(mux, m.listProducts, m.getProduct, m.logger)
}

func (m *module) LookupProducts(ctx context.Context, ids []string) (map[string]Product, error) {
	return m.lookupProducts.Handle(ctx, queries.LookupProductsQuery{ProductIDs: ids})
}
