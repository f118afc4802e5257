package repository

import (
	"context"
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/cart"
	"github.com/Thegreatsura/merchant/internal/infra"
	"github.com/Thegreatsura/merchant/internal/infra/db"
	"github.com/Thegreatsura/merchant/internal/infra/repository/converter"
	"github.com/Thegreatsura/merchant/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type CartRepository struct {
	db db.DBTX
}

func NewCartRepository(db db.DBTX) *CartRepository {
	return &CartRepository{db: db}
}

const cartColumns = `
	id, store_id, customer_email, currency, status, expires_at,
	discount_id, discount_code, discount_amount_cents, stripe_checkout_session_id,
	version, created_at, updated_at`

func (r *CartRepository) Create(ctx context.Context, c *cart.Cart) error {
	const q = `
		INSERT INTO carts (id, store_id, customer_email, currency, status, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, q,
		c.ID(), c.StoreID(), c.CustomerEmail(), c.Currency(), string(c.Status()),
		c.ExpiresAt(), c.CreatedAt(), c.UpdatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to create cart", err)
	}
	return r.insertItems(ctx, c.ID(), c.Items())
}

func (r *CartRepository) ByID(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	return r.find(ctx, `SELECT `+cartColumns+` FROM carts WHERE id = $1`, id)
}

// ByIDForUpdate serializes mutations, checkout and materialization of one cart.
func (r *CartRepository) ByIDForUpdate(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	return r.find(ctx, `SELECT `+cartColumns+` FROM carts WHERE id = $1 FOR UPDATE`, id)
}

func (r *CartRepository) find(ctx context.Context, q string, id uuid.UUID) (*cart.Cart, error) {
	var row converter.CartRow
	if err := r.db.QueryRow(ctx, q, id).Scan(row.ScanTargets()...); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("cart not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get cart", err)
	}
	items, err := r.items(ctx, id)
	if err != nil {
		return nil, err
	}
	return converter.CartFromRow(row, items)
}

func (r *CartRepository) items(ctx context.Context, cartID uuid.UUID) ([]cart.Item, error) {
	const q = `
		SELECT sku, title, quantity, unit_price_cents
		FROM cart_items WHERE cart_id = $1 ORDER BY sku`

	rows, err := r.db.Query(ctx, q, cartID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query cart items", err)
	}
	defer rows.Close()

	var items []cart.Item
	for rows.Next() {
		var it cart.Item
		if err := rows.Scan(&it.SKU, &it.Title, &it.Quantity, &it.UnitPriceCents); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart item", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate cart items", err)
	}
	return items, nil
}

func (r *CartRepository) ReplaceItems(ctx context.Context, c *cart.Cart) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, c.ID()); err != nil {
		return infra.WrapRepoErr("failed to clear cart items", err)
	}
	if err := r.insertItems(ctx, c.ID(), c.Items()); err != nil {
		return err
	}
	const q = `UPDATE carts SET version = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.Exec(ctx, q, c.ID(), c.Version(), c.UpdatedAt()); err != nil {
		return infra.WrapRepoErr("failed to touch cart", err)
	}
	return nil
}

func (r *CartRepository) insertItems(ctx context.Context, cartID uuid.UUID, items []cart.Item) error {
	const q = `
		INSERT INTO cart_items (cart_id, sku, title, quantity, unit_price_cents)
		VALUES ($1, $2, $3, $4, $5)`

	for _, it := range items {
		if _, err := r.db.Exec(ctx, q, cartID, it.SKU, it.Title, it.Quantity, it.UnitPriceCents); err != nil {
			return infra.WrapRepoErr("failed to insert cart item", err)
		}
	}
	return nil
}

func (r *CartRepository) SaveDiscount(ctx context.Context, c *cart.Cart) error {
	const q = `
		UPDATE carts
		SET discount_id = $2, discount_code = $3, discount_amount_cents = $4, version = $5, updated_at = $6
		WHERE id = $1 AND status = 'open'`

	tag, err := r.db.Exec(ctx, q,
		c.ID(), pgconv.UUIDPtrToPgtype(c.DiscountID()), pgconv.StringPtrToPgtype(c.DiscountCode()),
		c.DiscountAmountCents(), c.Version(), c.UpdatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to save cart discount", err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrNotOpen
	}
	return nil
}

// MarkCheckedOut fails when the cart left open or its items or discount changed since c was loaded.
func (r *CartRepository) MarkCheckedOut(ctx context.Context, c *cart.Cart) (bool, error) {
	const q = `
		UPDATE carts
		SET status = 'checked_out', stripe_checkout_session_id = $2, discount_amount_cents = $3, updated_at = $4
		WHERE id = $1 AND status = 'open' AND version = $5`

	tag, err := r.db.Exec(ctx, q,
		c.ID(), pgconv.StringPtrToPgtype(c.CheckoutSessionID()), c.DiscountAmountCents(), c.UpdatedAt(), c.Version())
	if err != nil {
		return false, infra.WrapRepoErr("failed to mark cart checked out", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *CartRepository) MarkExpired(ctx context.Context, cartID uuid.UUID, now time.Time) (bool, error) {
	const q = `
		UPDATE carts SET status = 'expired', updated_at = $2
		WHERE id = $1 AND status = 'open' AND expires_at < $2`

	tag, err := r.db.Exec(ctx, q, cartID, now)
	if err != nil {
		return false, infra.WrapRepoErr("failed to mark cart expired", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *CartRepository) ListExpiredOpen(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	const q = `
		SELECT id FROM carts
		WHERE status = 'open' AND expires_at < $1
		ORDER BY expires_at, id
		LIMIT $2`

	rows, err := r.db.Query(ctx, q, now, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list expired carts", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate expired carts", err)
	}
	return ids, nil
}
