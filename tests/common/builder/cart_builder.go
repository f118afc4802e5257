//go:build unit || e2e

package builder

import (
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/cart"
	reqdto "github.com/Thegreatsura/merchant/internal/handler/dto/request"
	"github.com/Thegreatsura/merchant/internal/usecase/commands"
	"github.com/Thegreatsura/merchant/internal/usecase/queries"

	"github.com/google/uuid"
)

type CartBuilder struct {
	ID                  uuid.UUID
	StoreID             uuid.UUID
	CustomerEmail       string
	Currency            string
	Status              cart.Status
	ExpiresAt           time.Time
	DiscountID          *uuid.UUID
	DiscountCode        *string
	DiscountAmountCents int64
	CheckoutSessionID   *string
	Items               []cart.Item
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func NewCartBuilder() *CartBuilder {
	now := time.Now().UTC()
	return &CartBuilder{
		ID:            uuid.New(),
		StoreID:       uuid.New(),
		CustomerEmail: "shopper@example.com",
		Currency:      "usd",
		Status:        cart.StatusOpen,
		ExpiresAt:     now.Add(cart.DefaultTTL),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (b *CartBuilder) With(mutate func(*CartBuilder)) *CartBuilder {
	mutate(b)
	return b
}

func (b *CartBuilder) WithItem(sku string, qty, unitPriceCents int64) *CartBuilder {
	b.Items = append(b.Items, cart.Item{SKU: sku, Title: "Variant " + sku, Quantity: qty, UnitPriceCents: unitPriceCents})
	return b
}

func (b *CartBuilder) BuildSnapshot() cart.Snapshot {
	return cart.Snapshot{
		ID:                  b.ID,
		StoreID:             b.StoreID,
		CustomerEmail:       b.CustomerEmail,
		Currency:            b.Currency,
		Status:              b.Status,
		ExpiresAt:           b.ExpiresAt,
		DiscountID:          b.DiscountID,
		DiscountCode:        b.DiscountCode,
		DiscountAmountCents: b.DiscountAmountCents,
		CheckoutSessionID:   b.CheckoutSessionID,
		Items:               cart.SortItems(b.Items),
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
}

func (b *CartBuilder) BuildDomain() *cart.Cart {
	return cart.Reconstruct(b.BuildSnapshot())
}

func (b *CartBuilder) BuildResult() *commands.CartResult {
	c := b.BuildDomain()
	return &commands.CartResult{Cart: c.Snapshot(), Totals: c.Totals(0)}
}

func (b *CartBuilder) BuildView() *queries.CartView {
	c := b.BuildDomain()
	items := make([]queries.CartItemView, len(c.Items()))
	for i, it := range c.Items() {
		items[i] = queries.CartItemView{
			SKU:            it.SKU,
			Title:          it.Title,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			LineTotalCents: it.LineTotalCents(),
		}
	}
	return &queries.CartView{
		ID:                b.ID,
		StoreID:           b.StoreID,
		CustomerEmail:     b.CustomerEmail,
		Currency:          b.Currency,
		Status:            string(b.Status),
		ExpiresAt:         b.ExpiresAt,
		DiscountID:        b.DiscountID,
		DiscountCode:      b.DiscountCode,
		DiscountCents:     b.DiscountAmountCents,
		CheckoutSessionID: b.CheckoutSessionID,
		Items:             items,
		Totals:            queries.TotalsView(c.Totals(0)),
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

func (b *CartBuilder) BuildReplaceItemsRequestDTO() reqdto.ReplaceItemsRequest {
	req := reqdto.ReplaceItemsRequest{}
	for _, it := range b.Items {
		req.Items = append(req.Items, reqdto.CartLineRequest{SKU: it.SKU, Quantity: it.Quantity})
	}
	return req
}
