package readstore

import (
	"context"
	"encoding/json"

	"github.com/Thegreatsura/merchant/internal/infra"
	"github.com/Thegreatsura/merchant/internal/infra/db"
	"github.com/Thegreatsura/merchant/internal/pkg/pgconv"
	"github.com/Thegreatsura/merchant/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderReadStore struct {
	db db.DBTX
}

func NewOrderReadStore(db db.DBTX) *OrderReadStore {
	return &OrderReadStore{db: db}
}

func (r *OrderReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	const q = `
		SELECT id, store_id, cart_id, number, status, customer_email, ship_to,
		       subtotal_cents, discount_cents, shipping_cents, tax_cents, total_cents, refunded_cents,
		       discount_code, stripe_checkout_session_id, stripe_payment_intent_id, tracking_number,
		       created_at, updated_at
		FROM orders WHERE id = $1`

	var v queries.OrderView
	var cartID pgtype.UUID
	var shipTo []byte
	var code, session, paymentIntent, tracking pgtype.Text
	err := r.db.QueryRow(ctx, q, id).Scan(
		&v.ID, &v.StoreID, &cartID, &v.Number, &v.Status, &v.CustomerEmail, &shipTo,
		&v.SubtotalCents, &v.DiscountCents, &v.ShippingCents, &v.TaxCents, &v.TotalCents, &v.RefundedCents,
		&code, &session, &paymentIntent, &tracking,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get order view", err)
	}
	v.CartID = pgconv.UUIDPtrFromPgtype(cartID)
	v.DiscountCode = pgconv.StringPtrFromPgtype(code)
	v.CheckoutSessionID = pgconv.StringPtrFromPgtype(session)
	v.PaymentIntentID = pgconv.StringPtrFromPgtype(paymentIntent)
	v.TrackingNumber = pgconv.StringPtrFromPgtype(tracking)
	if len(shipTo) > 0 {
		var a queries.AddressView
		if err := json.Unmarshal(shipTo, &a); err != nil {
			return nil, infra.WrapRepoErr("failed to decode ship_to", err)
		}
		v.ShipTo = &a
	}

	items, err := r.items(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Items = items
	return &v, nil
}

func (r *OrderReadStore) items(ctx context.Context, orderID uuid.UUID) ([]queries.OrderItemView, error) {
	const q = `
		SELECT sku, title, quantity, unit_price_cents
		FROM order_items WHERE order_id = $1 ORDER BY sku`

	rows, err := r.db.Query(ctx, q, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query order item views", err)
	}
	defer rows.Close()

	items := []queries.OrderItemView{}
	for rows.Next() {
		var it queries.OrderItemView
		if err := rows.Scan(&it.SKU, &it.Title, &it.Quantity, &it.UnitPriceCents); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order item view", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order item views", err)
	}
	return items, nil
}

func (r *OrderReadStore) FindByStore(ctx context.Context, storeID uuid.UUID, limit, offset int32) ([]*queries.OrderListItem, error) {
	const q = `
		SELECT o.id, o.number, o.status, o.customer_email, o.total_cents,
		       COALESCE((SELECT sum(quantity) FROM order_items i WHERE i.order_id = o.id), 0)::bigint,
		       o.created_at
		FROM orders o
		WHERE o.store_id = $1
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, q, storeID, limit, offset)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders", err)
	}
	defer rows.Close()

	out := []*queries.OrderListItem{}
	for rows.Next() {
		var it queries.OrderListItem
		if err := rows.Scan(&it.ID, &it.Number, &it.Status, &it.CustomerEmail, &it.TotalCents, &it.ItemCount, &it.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order list item", err)
		}
		out = append(out, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate orders", err)
	}
	return out, nil
}
