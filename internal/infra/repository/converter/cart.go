package converter

import (
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/cart"
	"github.com/Thegreatsura/merchant/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// CartRow mirrors the carts table column order used by the cart queries.
type CartRow struct {
	ID                  uuid.UUID
	StoreID             uuid.UUID
	CustomerEmail       string
	Currency            string
	Status              string
	ExpiresAt           time.Time
	DiscountID          pgtype.UUID
	DiscountCode        pgtype.Text
	DiscountAmountCents int64
	CheckoutSessionID   pgtype.Text
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (r *CartRow) ScanTargets() []any {
	return []any{
		&r.ID, &r.StoreID, &r.CustomerEmail, &r.Currency, &r.Status, &r.ExpiresAt,
		&r.DiscountID, &r.DiscountCode, &r.DiscountAmountCents, &r.CheckoutSessionID,
		&r.Version, &r.CreatedAt, &r.UpdatedAt,
	}
}

func CartFromRow(r CartRow, items []cart.Item) (*cart.Cart, error) {
	status, err := cart.ParseStatus(r.Status)
	if err != nil {
		return nil, err
	}
	return cart.Reconstruct(cart.Snapshot{
		ID:                  r.ID,
		StoreID:             r.StoreID,
		CustomerEmail:       r.CustomerEmail,
		Currency:            r.Currency,
		Status:              status,
		ExpiresAt:           r.ExpiresAt,
		DiscountID:          pgconv.UUIDPtrFromPgtype(r.DiscountID),
		DiscountCode:        pgconv.StringPtrFromPgtype(r.DiscountCode),
		DiscountAmountCents: r.DiscountAmountCents,
		CheckoutSessionID:   pgconv.StringPtrFromPgtype(r.CheckoutSessionID),
		Items:               items,
		Version:             r.Version,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}), nil
}
