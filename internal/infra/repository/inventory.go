package repository

import (
	"context"
	"slices"
	"strings"

	"github.com/Thegreatsura/merchant/internal/domain/inventory"
	"github.com/Thegreatsura/merchant/internal/infra"
	"github.com/Thegreatsura/merchant/internal/infra/db"
	"github.com/Thegreatsura/merchant/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// InventoryRepository holds every conditional update on inventory_levels.
// Release, ReleaseCart and Sell issue several statements and must run inside a transaction.
type InventoryRepository struct {
	db db.DBTX
}

func NewInventoryRepository(db db.DBTX) *InventoryRepository {
	return &InventoryRepository{db: db}
}

const levelColumns = `store_id, sku, on_hand, reserved, updated_at`

func scanLevel(row interface{ Scan(dest ...any) error }) (inventory.Level, error) {
	var l inventory.Level
	err := row.Scan(&l.StoreID, &l.SKU, &l.OnHand, &l.Reserved, &l.UpdatedAt)
	return l, err
}

func (r *InventoryRepository) Get(ctx context.Context, storeID uuid.UUID, sku string) (*inventory.Level, error) {
	q := `SELECT ` + levelColumns + ` FROM inventory_levels WHERE store_id = $1 AND sku = $2`

	l, err := scanLevel(r.db.QueryRow(ctx, q, storeID, sku))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("inventory level not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get inventory level", err)
	}
	return &l, nil
}

func (r *InventoryRepository) GetMany(ctx context.Context, storeID uuid.UUID, skus []string) (map[string]inventory.Level, error) {
	q := `SELECT ` + levelColumns + ` FROM inventory_levels WHERE store_id = $1 AND sku = ANY($2::text[])`

	rows, err := r.db.Query(ctx, q, storeID, skus)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query inventory levels", err)
	}
	defer rows.Close()

	out := make(map[string]inventory.Level, len(skus))
	for rows.Next() {
		l, err := scanLevel(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan inventory level", err)
		}
		out[l.SKU] = l
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate inventory levels", err)
	}
	return out, nil
}

// Reserve increments reserved and records the hold in one statement.
func (r *InventoryRepository) Reserve(ctx context.Context, h inventory.Hold) (bool, error) {
	const q = `
		WITH reserved AS (
			UPDATE inventory_levels
			SET reserved = reserved + $4::bigint, updated_at = now()
			WHERE store_id = $1 AND sku = $3 AND on_hand - reserved >= $4::bigint
			RETURNING store_id, sku
		)
		INSERT INTO inventory_holds (cart_id, store_id, sku, quantity)
		SELECT $2::uuid, store_id, sku, $4::bigint FROM reserved
		ON CONFLICT (cart_id, sku) DO UPDATE SET quantity = inventory_holds.quantity + EXCLUDED.quantity`

	tag, err := r.db.Exec(ctx, q, h.StoreID, h.CartID, h.SKU, h.Quantity)
	if err != nil {
		return false, infra.WrapRepoErr("failed to reserve inventory", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *InventoryRepository) Release(ctx context.Context, h inventory.Hold) (int64, error) {
	held, err := r.lockHold(ctx, h.CartID, h.SKU)
	if err != nil || held == 0 {
		return 0, err
	}
	qty := min(held, h.Quantity)
	if err := r.consumeHold(ctx, h.CartID, h.SKU, held, qty); err != nil {
		return 0, err
	}
	if err := r.decrementReserved(ctx, h.StoreID, h.SKU, qty); err != nil {
		return 0, err
	}
	cartID := h.CartID
	if err := r.appendLog(ctx, h.StoreID, h.SKU, -qty, inventory.ReasonRelease, &cartID, ""); err != nil {
		return 0, err
	}
	return qty, nil
}

// ReleaseCart drops every hold of the cart. Releasing again is a no-op.
func (r *InventoryRepository) ReleaseCart(ctx context.Context, cartID uuid.UUID) ([]inventory.Hold, error) {
	const q = `DELETE FROM inventory_holds WHERE cart_id = $1 RETURNING cart_id, store_id, sku, quantity`

	rows, err := r.db.Query(ctx, q, cartID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to delete cart holds", err)
	}
	var holds []inventory.Hold
	for rows.Next() {
		var h inventory.Hold
		if err := rows.Scan(&h.CartID, &h.StoreID, &h.SKU, &h.Quantity); err != nil {
			rows.Close()
			return nil, infra.WrapRepoErr("failed to scan cart hold", err)
		}
		holds = append(holds, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate cart holds", err)
	}

	// a fixed order keeps concurrent sweeps from deadlocking on level rows
	slices.SortFunc(holds, func(a, b inventory.Hold) int { return strings.Compare(a.SKU, b.SKU) })
	for _, h := range holds {
		if err := r.decrementReserved(ctx, h.StoreID, h.SKU, h.Quantity); err != nil {
			return nil, err
		}
		if err := r.appendLog(ctx, h.StoreID, h.SKU, -h.Quantity, inventory.ReasonRelease, &cartID, ""); err != nil {
			return nil, err
		}
	}
	return holds, nil
}

// Sell debits on_hand by qty and reserved by what the cart still holds.
// Without a hold the sale must fit in current availability.
func (r *InventoryRepository) Sell(ctx context.Context, storeID, cartID uuid.UUID, sku string, qty int64) (bool, error) {
	const q = `
		UPDATE inventory_levels
		SET on_hand = on_hand - $3::bigint, reserved = reserved - $4::bigint, updated_at = now()
		WHERE store_id = $1 AND sku = $2
		  AND reserved >= $4::bigint
		  AND on_hand - $3::bigint >= reserved - $4::bigint`

	held, err := r.lockHold(ctx, cartID, sku)
	if err != nil {
		return false, err
	}
	take := min(held, qty)

	tag, err := r.db.Exec(ctx, q, storeID, sku, qty, take)
	if err != nil {
		return false, infra.WrapRepoErr("failed to sell inventory", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	if take > 0 {
		if err := r.consumeHold(ctx, cartID, sku, held, take); err != nil {
			return false, err
		}
	}
	if err := r.appendLog(ctx, storeID, sku, -qty, inventory.ReasonSale, &cartID, ""); err != nil {
		return false, err
	}
	return true, nil
}

func (r *InventoryRepository) Adjust(ctx context.Context, adj inventory.Adjustment) (*inventory.Level, error) {
	const upsert = `
		INSERT INTO inventory_levels (store_id, sku, on_hand, reserved)
		VALUES ($1, $2, $3, 0)
		ON CONFLICT (store_id, sku) DO UPDATE
		SET on_hand = inventory_levels.on_hand + EXCLUDED.on_hand, updated_at = now()
		RETURNING ` + levelColumns
	const decrement = `
		UPDATE inventory_levels
		SET on_hand = on_hand + $3, updated_at = now()
		WHERE store_id = $1 AND sku = $2 AND on_hand + $3 >= reserved
		RETURNING ` + levelColumns

	q := upsert
	if adj.Delta < 0 {
		q = decrement
	}
	l, err := scanLevel(r.db.QueryRow(ctx, q, adj.StoreID, adj.SKU, adj.Delta))
	if err != nil {
		if !pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("failed to adjust inventory", err)
		}
		if _, getErr := r.Get(ctx, adj.StoreID, adj.SKU); getErr != nil {
			return nil, getErr
		}
		return nil, inventory.ErrBelowReserved
	}

	if err := r.appendLog(ctx, adj.StoreID, adj.SKU, adj.Delta, inventory.ReasonAdjustment, nil, adj.Note); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *InventoryRepository) Logs(ctx context.Context, storeID uuid.UUID, sku string, limit int) ([]inventory.LogEntry, error) {
	const q = `
		SELECT id, store_id, sku, delta, reason, cart_id, note, created_at
		FROM inventory_logs
		WHERE store_id = $1 AND sku = $2
		ORDER BY created_at DESC, id
		LIMIT $3`

	rows, err := r.db.Query(ctx, q, storeID, sku, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query inventory logs", err)
	}
	defer rows.Close()

	var out []inventory.LogEntry
	for rows.Next() {
		var (
			e      inventory.LogEntry
			reason string
			cartID pgtype.UUID
		)
		if err := rows.Scan(&e.ID, &e.StoreID, &e.SKU, &e.Delta, &reason, &cartID, &e.Note, &e.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan inventory log", err)
		}
		e.Reason = inventory.Reason(reason)
		e.CartID = pgconv.UUIDPtrFromPgtype(cartID)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate inventory logs", err)
	}
	return out, nil
}

// lockHold returns the held quantity, or 0 when the cart holds none of sku.
func (r *InventoryRepository) lockHold(ctx context.Context, cartID uuid.UUID, sku string) (int64, error) {
	const q = `SELECT quantity FROM inventory_holds WHERE cart_id = $1 AND sku = $2 FOR UPDATE`

	var held int64
	if err := r.db.QueryRow(ctx, q, cartID, sku).Scan(&held); err != nil {
		if pgconv.IsNoRows(err) {
			return 0, nil
		}
		return 0, infra.WrapRepoErr("failed to lock hold", err)
	}
	return held, nil
}

func (r *InventoryRepository) consumeHold(ctx context.Context, cartID uuid.UUID, sku string, held, qty int64) error {
	var err error
	if qty >= held {
		_, err = r.db.Exec(ctx, `DELETE FROM inventory_holds WHERE cart_id = $1 AND sku = $2`, cartID, sku)
	} else {
		_, err = r.db.Exec(ctx, `UPDATE inventory_holds SET quantity = quantity - $3 WHERE cart_id = $1 AND sku = $2`, cartID, sku, qty)
	}
	if err != nil {
		return infra.WrapRepoErr("failed to consume hold", err)
	}
	return nil
}

func (r *InventoryRepository) decrementReserved(ctx context.Context, storeID uuid.UUID, sku string, qty int64) error {
	const q = `
		UPDATE inventory_levels
		SET reserved = GREATEST(reserved - $3, 0), updated_at = now()
		WHERE store_id = $1 AND sku = $2`

	if _, err := r.db.Exec(ctx, q, storeID, sku, qty); err != nil {
		return infra.WrapRepoErr("failed to release reserved inventory", err)
	}
	return nil
}

func (r *InventoryRepository) appendLog(ctx context.Context, storeID uuid.UUID, sku string, delta int64, reason inventory.Reason, cartID *uuid.UUID, note string) error {
	const q = `
		INSERT INTO inventory_logs (id, store_id, sku, delta, reason, cart_id, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, q, uuid.New(), storeID, sku, delta, string(reason), pgconv.UUIDPtrToPgtype(cartID), note)
	if err != nil {
		return infra.WrapRepoErr("failed to append inventory log", err)
	}
	return nil
}
