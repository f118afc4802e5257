package readstore

import (
	"context"

	"github.com/Thegreatsura/merchant/internal/infra"
	"github.com/Thegreatsura/merchant/internal/infra/db"
	"github.com/Thegreatsura/merchant/internal/pkg/pgconv"
	"github.com/Thegreatsura/merchant/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type InventoryReadStore struct {
	db db.DBTX
}

func NewInventoryReadStore(db db.DBTX) *InventoryReadStore {
	return &InventoryReadStore{db: db}
}

func (r *InventoryReadStore) FindLevel(ctx context.Context, storeID uuid.UUID, sku string) (*queries.InventoryView, error) {
	const q = `
		SELECT l.store_id, l.sku, COALESCE(v.title, ''), l.on_hand, l.reserved, l.updated_at
		FROM inventory_levels l
		LEFT JOIN product_variants v ON v.store_id = l.store_id AND v.sku = l.sku
		WHERE l.store_id = $1 AND l.sku = $2`

	var v queries.InventoryView
	err := r.db.QueryRow(ctx, q, storeID, sku).Scan(&v.StoreID, &v.SKU, &v.Title, &v.OnHand, &v.Reserved, &v.UpdatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("inventory level not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get inventory view", err)
	}
	return &v, nil
}

func (r *InventoryReadStore) FindLogs(ctx context.Context, storeID uuid.UUID, sku string, limit int32) ([]queries.InventoryLogView, error) {
	const q = `
		SELECT id, delta, reason, cart_id, note, created_at
		FROM inventory_logs
		WHERE store_id = $1 AND sku = $2
		ORDER BY created_at DESC, id
		LIMIT $3`

	rows, err := r.db.Query(ctx, q, storeID, sku, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query inventory log views", err)
	}
	defer rows.Close()

	logs := []queries.InventoryLogView{}
	for rows.Next() {
		var (
			l      queries.InventoryLogView
			cartID pgtype.UUID
		)
		if err := rows.Scan(&l.ID, &l.Delta, &l.Reason, &cartID, &l.Note, &l.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan inventory log view", err)
		}
		l.CartID = pgconv.UUIDPtrFromPgtype(cartID)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate inventory log views", err)
	}
	return logs, nil
}
