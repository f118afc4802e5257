package repository

import (
	"context"

	"github.com/Thegreatsura/merchant/internal/domain/catalog"
	"github.com/Thegreatsura/merchant/internal/infra"
	"github.com/Thegreatsura/merchant/internal/infra/db"

	"github.com/google/uuid"
)

type CatalogRepository struct {
	db db.DBTX
}

func NewCatalogRepository(db db.DBTX) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) VariantsBySKU(ctx context.Context, storeID uuid.UUID, skus []string) (map[string]catalog.Variant, error) {
	const q = `
		SELECT store_id, sku, title, price_cents, status
		FROM product_variants
		WHERE store_id = $1 AND sku = ANY($2::text[])`

	rows, err := r.db.Query(ctx, q, storeID, skus)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query variants", err)
	}
	defer rows.Close()

	out := make(map[string]catalog.Variant, len(skus))
	for rows.Next() {
		var (
			v      catalog.Variant
			status string
		)
		if err := rows.Scan(&v.StoreID, &v.SKU, &v.Title, &v.PriceCents, &status); err != nil {
			return nil, infra.WrapRepoErr("failed to scan variant", err)
		}
		v.Status = catalog.VariantStatus(status)
		out[v.SKU] = v
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate variants", err)
	}
	return out, nil
}
