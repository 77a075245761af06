// Package invest holds offer discovery and the investment submission
// flow.
package invest

import (
	"context"

	"github.com/peerbr/invest-client-go/internal/domain"
	"github.com/peerbr/invest-client-go/internal/infra/observability"
	"github.com/peerbr/invest-client-go/internal/port"

	"go.uber.org/zap"
)

const categoriesKey = "categories"

// Catalog lists investable offers and their categories. Offers are
// always fetched fresh (status changes as other users invest); the
// category list is stable and cached.
type Catalog struct {
	api     port.CatalogAPI
	cache   port.Cache[[]domain.CategoryOption]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewCatalog creates the catalog service.
func NewCatalog(api port.CatalogAPI, cache port.Cache[[]domain.CategoryOption], metrics *observability.Metrics, logger *zap.Logger) *Catalog {
	return &Catalog{
		api:     api,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// Offers lists offers, optionally filtered by category. An unknown
// category is rejected locally; the platform would answer 400 anyway.
func (c *Catalog) Offers(ctx context.Context, categoria domain.Category) ([]domain.Offer, error) {
	if categoria != "" && !categoria.Valid() {
		return nil, &domain.ErrValidation{Field: "categoria", Message: "Categoria inválida"}
	}
	return c.api.Offers(ctx, categoria)
}

// Categories returns the category options, cached.
func (c *Catalog) Categories(ctx context.Context) ([]domain.CategoryOption, error) {
	if opts, ok := c.cache.Get(categoriesKey); ok {
		c.metrics.IncrCacheHit("categories")
		return opts, nil
	}
	c.metrics.IncrCacheMiss("categories")

	opts, err := c.api.Categories(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Set(categoriesKey, opts)
	return opts, nil
}
