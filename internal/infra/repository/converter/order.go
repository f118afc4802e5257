package converter

import (
	"encoding/json"
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/order"
	"github.com/Thegreatsura/merchant/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderRow struct {
	ID                uuid.UUID
	StoreID           uuid.UUID
	CartID            pgtype.UUID
	Number            string
	Status            string
	CustomerEmail     string
	ShipTo            []byte
	SubtotalCents     int64
	DiscountCents     int64
	ShippingCents     int64
	TaxCents          int64
	TotalCents        int64
	DiscountID        pgtype.UUID
	DiscountCode      pgtype.Text
	CheckoutSessionID pgtype.Text
	PaymentIntentID   pgtype.Text
	RefundedCents     int64
	TrackingNumber    pgtype.Text
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (r *OrderRow) ScanTargets() []any {
	return []any{
		&r.ID, &r.StoreID, &r.CartID, &r.Number, &r.Status, &r.CustomerEmail, &r.ShipTo,
		&r.SubtotalCents, &r.DiscountCents, &r.ShippingCents, &r.TaxCents, &r.TotalCents,
		&r.DiscountID, &r.DiscountCode, &r.CheckoutSessionID, &r.PaymentIntentID,
		&r.RefundedCents, &r.TrackingNumber, &r.CreatedAt, &r.UpdatedAt,
	}
}

func OrderFromRow(r OrderRow, items []order.Item) (*order.Order, error) {
	status, err := order.ParseStatus(r.Status)
	if err != nil {
		return nil, err
	}
	shipTo, err := DecodeAddress(r.ShipTo)
	if err != nil {
		return nil, err
	}
	return order.Reconstruct(order.Snapshot{
		ID:            r.ID,
		StoreID:       r.StoreID,
		CartID:        pgconv.UUIDPtrFromPgtype(r.CartID),
		Number:        r.Number,
		Status:        status,
		CustomerEmail: r.CustomerEmail,
		ShipTo:        shipTo,
		Amounts: order.Amounts{
			SubtotalCents: r.SubtotalCents,
			DiscountCents: r.DiscountCents,
			ShippingCents: r.ShippingCents,
			TaxCents:      r.TaxCents,
			TotalCents:    r.TotalCents,
		},
		DiscountID:        pgconv.UUIDPtrFromPgtype(r.DiscountID),
		DiscountCode:      pgconv.StringPtrFromPgtype(r.DiscountCode),
		CheckoutSessionID: pgconv.StringPtrFromPgtype(r.CheckoutSessionID),
		PaymentIntentID:   pgconv.StringPtrFromPgtype(r.PaymentIntentID),
		RefundedCents:     r.RefundedCents,
		TrackingNumber:    pgconv.StringPtrFromPgtype(r.TrackingNumber),
		Items:             items,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}), nil
}

// EncodeAddress returns nil for a missing address so the column stays NULL.
func EncodeAddress(a *order.Address) ([]byte, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func DecodeAddress(raw []byte) (*order.Address, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var a order.Address
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
