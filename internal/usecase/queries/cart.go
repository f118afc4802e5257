package queries

//go:generate mockgen -source=cart.go -destination=../../../tests/mock/queries/cart_mock.go -package=queriesmock

import (
	"context"

	"github.com/Thegreatsura/merchant/internal/domain/cart"
	"github.com/Thegreatsura/merchant/internal/pkg/config"
	"github.com/Thegreatsura/merchant/internal/pkg/errs"

	"github.com/google/uuid"
)

type CartQueries interface {
	GetCart(ctx context.Context, storeID, cartID uuid.UUID) (*CartView, error)
}

type CartViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CartView, error)
}

type cartQueriesImpl struct {
	repo          CartViewRepo
	shippingCents int64
}

func NewCartQueries(repo CartViewRepo, cfg config.Config) CartQueries {
	return &cartQueriesImpl{repo: repo, shippingCents: cfg.Checkout.DefaultShippingCents}
}

// GetCart totals are derived from the persisted item snapshots, never from the live catalog.
func (q *cartQueriesImpl) GetCart(ctx context.Context, storeID, cartID uuid.UUID) (*CartView, error) {
	v, err := q.repo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if v.StoreID != storeID {
		return nil, errs.NotFound("cart")
	}

	var subtotal int64
	for i := range v.Items {
		v.Items[i].LineTotalCents = v.Items[i].UnitPriceCents * v.Items[i].Quantity
		subtotal += v.Items[i].LineTotalCents
	}
	var shipping int64
	if len(v.Items) > 0 {
		shipping = q.shippingCents
	}
	t := cart.NewTotals(subtotal, v.DiscountCents, shipping, 0)
	v.Totals = TotalsView(t)
	return v, nil
}
