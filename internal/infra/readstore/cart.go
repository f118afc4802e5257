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

type CartReadStore struct {
	db db.DBTX
}

func NewCartReadStore(db db.DBTX) *CartReadStore {
	return &CartReadStore{db: db}
}

func (r *CartReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.CartView, error) {
	const q = `
		SELECT id, store_id, customer_email, currency, status, expires_at,
		       discount_id, discount_code, discount_amount_cents, stripe_checkout_session_id,
		       created_at, updated_at
		FROM carts WHERE id = $1`

	var (
		v            queries.CartView
		discountID   pgtype.UUID
		discountCode pgtype.Text
		sessionID    pgtype.Text
	)
	err := r.db.QueryRow(ctx, q, id).Scan(
		&v.ID, &v.StoreID, &v.CustomerEmail, &v.Currency, &v.Status, &v.ExpiresAt,
		&discountID, &discountCode, &v.DiscountCents, &sessionID,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("cart not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get cart view", err)
	}
	v.DiscountID = pgconv.UUIDPtrFromPgtype(discountID)
	v.DiscountCode = pgconv.StringPtrFromPgtype(discountCode)
	v.CheckoutSessionID = pgconv.StringPtrFromPgtype(sessionID)

	items, err := r.items(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Items = items
	return &v, nil
}

func (r *CartReadStore) items(ctx context.Context, cartID uuid.UUID) ([]queries.CartItemView, error) {
	const q = `
		SELECT sku, title, quantity, unit_price_cents
		FROM cart_items WHERE cart_id = $1 ORDER BY sku`

	rows, err := r.db.Query(ctx, q, cartID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query cart item views", err)
	}
	defer rows.Close()

	items := []queries.CartItemView{}
	for rows.Next() {
		var it queries.CartItemView
		if err := rows.Scan(&it.SKU, &it.Title, &it.Quantity, &it.UnitPriceCents); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart item view", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate cart item views", err)
	}
	return items, nil
}
