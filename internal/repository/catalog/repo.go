// Package catalog reads indexable products and attribute names from the
// relational catalog.
package catalog

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/catalograg/internal/db"
	"github.com/kailas-cloud/catalograg/internal/domain"
)

// queryer is the consumer interface for catalog reads (ISP). *sqlx.DB satisfies it.
type queryer interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

const productsQuery = `
SELECT
	p.id, p.name, p.description,
	c.name  AS category_name,
	sc.name AS sub_category_name,
	b.name  AS brand_name,
	p.price, p.discount, p.shipping_fee, p.shipping_country, p.weight,
	p.variant_product, p.minimum_purchase_qty, p.maximum_purchase_qty,
	p.warranty_policy, p.attributes_value,
	p.top_status, p.featured_status, p.best_selling_item_status, p.is_suggested,
	p.product_type, p.seller_id, p.status
FROM products p
LEFT JOIN categories c  ON p.category_id = c.id
LEFT JOIN categories sc ON p.sub_category_id = sc.id
LEFT JOIN brands b      ON p.brand_id = b.id
WHERE p.deleted_at IS NULL AND p.status <> $1
ORDER BY p.id`

const attributesQuery = `SELECT id, name FROM attributes WHERE status = $1`

// Repo loads catalog snapshots.
type Repo struct {
	db queryer
}

// New creates a catalog repository.
func New(q queryer) *Repo {
	return &Repo{db: q}
}

// Products returns every active, non-deleted product ordered by id.
func (r *Repo) Products(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, productsQuery, domain.ProductInactive); err != nil {
		return nil, fmt.Errorf("load products: %w", &db.Error{Op: db.OpSelect, Err: err})
	}
	out := make([]domain.Product, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

// Attributes returns the active attribute id to name map.
func (r *Repo) Attributes(ctx context.Context) (domain.AttributeLookup, error) {
	var rows []attributeRow
	if err := r.db.SelectContext(ctx, &rows, attributesQuery, domain.AttributeActive); err != nil {
		return nil, fmt.Errorf("load attributes: %w", &db.Error{Op: db.OpSelect, Err: err})
	}
	lookup := make(domain.AttributeLookup, len(rows))
	for _, row := range rows {
		lookup[row.ID] = row.Name
	}
	return lookup, nil
}
