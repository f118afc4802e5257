package repository

import (
	"context"

	"github.com/Thegreatsura/merchant/internal/domain/order"
	"github.com/Thegreatsura/merchant/internal/infra"
	"github.com/Thegreatsura/merchant/internal/infra/db"
	"github.com/Thegreatsura/merchant/internal/infra/repository/converter"
	"github.com/Thegreatsura/merchant/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type OrderRepository struct {
	db db.DBTX
}

func NewOrderRepository(db db.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `
	id, store_id, cart_id, number, status, customer_email, ship_to,
	subtotal_cents, discount_cents, shipping_cents, tax_cents, total_cents,
	discount_id, discount_code, stripe_checkout_session_id, stripe_payment_intent_id,
	refunded_cents, tracking_number, created_at, updated_at`

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	const q = `
		INSERT INTO orders (
			id, store_id, cart_id, number, status, customer_email, ship_to,
			subtotal_cents, discount_cents, shipping_cents, tax_cents, total_cents,
			discount_id, discount_code, stripe_checkout_session_id, stripe_payment_intent_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	const itemQ = `
		INSERT INTO order_items (id, order_id, sku, title, quantity, unit_price_cents)
		VALUES ($1, $2, $3, $4, $5, $6)`

	shipTo, err := converter.EncodeAddress(o.ShipTo())
	if err != nil {
		return infra.WrapRepoErr("failed to encode ship_to", err)
	}
	a := o.Amounts()
	_, err = r.db.Exec(ctx, q,
		o.ID(), o.StoreID(), pgconv.UUIDPtrToPgtype(o.CartID()), o.Number(), string(o.Status()), o.CustomerEmail(), shipTo,
		a.SubtotalCents, a.DiscountCents, a.ShippingCents, a.TaxCents, a.TotalCents,
		pgconv.UUIDPtrToPgtype(o.DiscountID()), pgconv.StringPtrToPgtype(o.DiscountCode()),
		pgconv.StringPtrToPgtype(o.CheckoutSessionID()), pgconv.StringPtrToPgtype(o.PaymentIntentID()),
		o.CreatedAt(), o.UpdatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to create order", err)
	}

	for _, it := range o.Items() {
		if _, err := r.db.Exec(ctx, itemQ, uuid.New(), o.ID(), it.SKU, it.Title, it.Quantity, it.UnitPriceCents); err != nil {
			return infra.WrapRepoErr("failed to create order item", err)
		}
	}
	return nil
}

func (r *OrderRepository) ExistsForCart(ctx context.Context, cartID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE cart_id = $1)`, cartID).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check order for cart", err)
	}
	return exists, nil
}

func (r *OrderRepository) ByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.find(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *OrderRepository) ByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.find(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *OrderRepository) find(ctx context.Context, q string, id uuid.UUID) (*order.Order, error) {
	var row converter.OrderRow
	if err := r.db.QueryRow(ctx, q, id).Scan(row.ScanTargets()...); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get order", err)
	}
	items, err := r.items(ctx, id)
	if err != nil {
		return nil, err
	}
	o, err := converter.OrderFromRow(row, items)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to decode order", err)
	}
	return o, nil
}

func (r *OrderRepository) items(ctx context.Context, orderID uuid.UUID) ([]order.Item, error) {
	const q = `
		SELECT sku, title, quantity, unit_price_cents
		FROM order_items WHERE order_id = $1 ORDER BY sku`

	rows, err := r.db.Query(ctx, q, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query order items", err)
	}
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var it order.Item
		if err := rows.Scan(&it.SKU, &it.Title, &it.Quantity, &it.UnitPriceCents); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order item", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order items", err)
	}
	return items, nil
}

// Save persists the operator-mutable fields only.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	const q = `
		UPDATE orders
		SET status = $2, refunded_cents = $3, tracking_number = $4, updated_at = $5
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, q,
		o.ID(), string(o.Status()), o.RefundedCents(), pgconv.StringPtrToPgtype(o.TrackingNumber()), o.UpdatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to save order", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	return nil
}
