package readstore

import (
	"context"

	"coupon-engine/internal/infra"
	"coupon-engine/internal/infra/db"
)

// CatalogReadStore resolves live category membership from the catalog's product_categories table.
type CatalogReadStore struct {
	db db.DBTX
}

func NewCatalogReadStore(dbtx db.DBTX) *CatalogReadStore {
	return &CatalogReadStore{db: dbtx}
}

func (r *CatalogReadStore) CategoriesBySKU(ctx context.Context, skus []string) (map[string][]string, error) {
	out := make(map[string][]string, len(skus))
	if len(skus) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, `SELECT sku, category_id FROM product_categories
		WHERE sku = ANY($1)
		ORDER BY sku, category_id`, skus)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to look up product categories", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sku, category string
		if err := rows.Scan(&sku, &category); err != nil {
			return nil, infra.WrapRepoErr("failed to scan product category", err)
		}
		out[sku] = append(out[sku], category)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate product categories", err)
	}
	return out, nil
}
