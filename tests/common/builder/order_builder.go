//go:build unit || e2e

package builder

import (
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/order"
	"github.com/Thegreatsura/merchant/internal/usecase/queries"

	"github.com/google/uuid"
)

type OrderBuilder struct {
	ID              uuid.UUID
	StoreID         uuid.UUID
	CartID          *uuid.UUID
	Number          string
	Status          order.Status
	CustomerEmail   string
	TotalCents      int64
	PaymentIntentID *string
	Items           []order.Item
	CreatedAt       time.Time
}

func NewOrderBuilder(storeID uuid.UUID) *OrderBuilder {
	pi := "pi_test_123"
	cartID := uuid.New()
	return &OrderBuilder{
		ID:              uuid.New(),
		StoreID:         storeID,
		CartID:          &cartID,
		Number:          order.FormatNumber(1),
		Status:          order.StatusPaid,
		CustomerEmail:   "shopper@example.com",
		TotalCents:      5000,
		PaymentIntentID: &pi,
		Items:           []order.Item{{SKU: "A", Title: "Variant A", Quantity: 5, UnitPriceCents: 1000}},
		CreatedAt:       time.Now().UTC(),
	}
}

func (b *OrderBuilder) With(mutate func(*OrderBuilder)) *OrderBuilder {
	mutate(b)
	return b
}

func (b *OrderBuilder) BuildSnapshot() order.Snapshot {
	return order.Snapshot{
		ID:              b.ID,
		StoreID:         b.StoreID,
		CartID:          b.CartID,
		Number:          b.Number,
		Status:          b.Status,
		CustomerEmail:   b.CustomerEmail,
		Amounts:         order.Amounts{SubtotalCents: b.TotalCents, TotalCents: b.TotalCents},
		PaymentIntentID: b.PaymentIntentID,
		Items:           b.Items,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.CreatedAt,
	}
}

func (b *OrderBuilder) BuildView() *queries.OrderView {
	items := make([]queries.OrderItemView, len(b.Items))
	for i, it := range b.Items {
		items[i] = queries.OrderItemView(it)
	}
	return &queries.OrderView{
		ID:              b.ID,
		StoreID:         b.StoreID,
		CartID:          b.CartID,
		Number:          b.Number,
		Status:          string(b.Status),
		CustomerEmail:   b.CustomerEmail,
		SubtotalCents:   b.TotalCents,
		TotalCents:      b.TotalCents,
		PaymentIntentID: b.PaymentIntentID,
		Items:           items,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.CreatedAt,
	}
}

func (b *OrderBuilder) BuildListItem() *queries.OrderListItem {
	return &queries.OrderListItem{
		ID:            b.ID,
		Number:        b.Number,
		Status:        string(b.Status),
		CustomerEmail: b.CustomerEmail,
		TotalCents:    b.TotalCents,
		ItemCount:     int64(len(b.Items)),
		CreatedAt:     b.CreatedAt,
	}
}
