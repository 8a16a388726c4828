package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agrilink/marketplace/internal/platform/authn"
	"github.com/agrilink/marketplace/internal/platform/baas"
	"github.com/agrilink/marketplace/modules/catalog/domain"
	"github.com/agrilink/marketplace/modules/shared/types"
)

const (
	productsTable   = "products"
	productColumns  = "id,seller_id,seller_name,name,description,category,unit,price_cents,currency,stock,image_url,active,created_at"
	lookupChunkSize = 50
	lookupParallel  = 4
	maxSearchLength = 64
)

type productRow struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	SellerName  string    `json:"seller_name"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Unit        string    `json:"unit"`
	PriceCents  int64     `json:"price_cents"`
	Currency    string    `json:"currency"`
	Stock       int       `json:"stock"`
	ImageURL    string    `json:"image_url"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// BaaSRepository implements ProductRepository on the BaaS row API.
type BaaSRepository struct {
	client *baas.Client
}

func NewBaaSRepository(client *baas.Client) *BaaSRepository {
	return &BaaSRepository{client: client}
}

// Compile-time interface check.
var _ domain.ProductRepository = (*BaaSRepository)(nil)

func (r *BaaSRepository) List(ctx context.Context, f domain.Filter) ([]*domain.Product, int, error) {
	f = f.Normalize()
	filters := []baas.Filter{baas.Eq("active", "true")}
	if f.Category != "" {
		filters = append(filters, baas.Eq("category", f.Category.String()))
	}
	if !f.SellerID.IsZero() {
		filters = append(filters, baas.Eq("seller_id", f.SellerID.String()))
	}
	if q := sanitizeSearch(f.Search); q != "" {
		pattern := "*" + q + "*"
		filters = append(filters, baas.Any(baas.ILike("name", pattern), baas.ILike("description", pattern)))
	}

	var rows []productRow
	total, err := r.client.Select(ctx, accessToken(ctx), baas.Query{
		Table:   productsTable,
		Columns: productColumns,
		Filters: filters,
		OrderBy: "name",
		Limit:   f.Limit,
		Offset:  f.Offset,
		Count:   true,
	}, &rows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *BaaSRepository) FindByID(ctx context.Context, id types.ProductID) (*domain.Product, error) {
	var rows []productRow
	_, err := r.client.Select(ctx, accessToken(ctx), baas.Query{
		Table:   productsTable,
		Columns: productColumns,
		Filters: []baas.Filter{baas.Eq("id", id.String())},
		Limit:   1,
	}, &rows)
	if err != nil {
		if errors.Is(err, baas.ErrNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to read product: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrProductNotFound
	}
	return scanProduct(rows[0])
}

// FindByIDs reads ids in chunks, a few chunks at a time, to keep request
// URLs short.
func (r *BaaSRepository) FindByIDs(ctx context.Context, ids []types.ProductID) ([]*domain.Product, error) {
	var (
		mu  sync.Mutex
		out = make([]*domain.Product, 0, len(ids))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupParallel)
	for chunk := range chunkIDs(ids, lookupChunkSize) {
		g.Go(func() error {
			var rows []productRow
			_, err := r.client.Select(gctx, accessToken(ctx), baas.Query{
				Table:   productsTable,
				Columns: productColumns,
				Filters: []baas.Filter{baas.In("id", chunk)},
			}, &rows)
			if err != nil {
				return fmt.Errorf("failed to look up products: %w", err)
			}
			products, err := scanProducts(rows)
			if err != nil {
				return err
			}
			mu.Lock()
			out = append(out, products...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func chunkIDs(ids []types.ProductID, size int) func(yield func([]string) bool) {
	return func(yield func([]string) bool) {
		for start := 0; start < len(ids); start += size {
			end := min(start+size, len(ids))
			chunk := make([]string, 0, end-start)
			for _, id := range ids[start:end] {
				chunk = append(chunk, id.String())
			}
			if !yield(chunk) {
				return
			}
		}
	}
}

func scanProducts(rows []productRow) ([]*domain.Product, error) {
	products := make([]*domain.Product, 0, len(rows))
	for _, row := range rows {
		p, err := scanProduct(row)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func scanProduct(row productRow) (*domain.Product, error) {
	id, err := types.ParseProductID(row.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid stored product id %q: %w", row.ID, err)
	}
	sellerID, err := types.ParseUserID(row.SellerID)
	if err != nil {
		return nil, fmt.Errorf("invalid seller id on product %s: %w", row.ID, err)
	}
	price, err := types.NewMoney(row.PriceCents, row.Currency)
	if err != nil {
		return nil, fmt.Errorf("invalid price on product %s: %w", row.ID, err)
	}
	category, err := domain.ParseCategory(row.Category)
	if err != nil {
		return nil, fmt.Errorf("invalid category on product %s: %w", row.ID, err)
	}

	p, err := domain.NewProduct(domain.ProductSnapshot{
		ID:          id,
		SellerID:    sellerID,
		SellerName:  row.SellerName,
		Name:        row.Name,
		Description: row.Description,
		Category:    category,
		Unit:        row.Unit,
		Price:       price,
		Stock:       row.Stock,
		ImageURL:    row.ImageURL,
		Active:      row.Active,
		CreatedAt:   row.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid product %s: %w", row.ID, err)
	}
	return p, nil
}

// sanitizeSearch drops characters with meaning in row API filter syntax.
func sanitizeSearch(q string) string {
	q = strings.TrimSpace(q)
	q = strings.Map(func(r rune) rune {
		switch r {
		case ',', '(', ')', '*', '.', ':', '"', '\\':
			return -1
		}
		return r
	}, q)
	if runes := []rune(q); len(runes) > maxSearchLength {
		q = string(runes[:maxSearchLength])
	}
	return q
}

func accessToken(ctx context.Context) string {
	if id, ok := authn.FromContext(ctx); ok {
		return id.AccessToken
	}
	return ""
}
