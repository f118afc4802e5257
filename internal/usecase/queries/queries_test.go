//go:build unit

package queries_test

import (
	"context"
	"testing"

	"github.com/Thegreatsura/merchant/internal/domain/inventory"
	"github.com/Thegreatsura/merchant/internal/pkg/config"
	"github.com/Thegreatsura/merchant/internal/pkg/errs"
	"github.com/Thegreatsura/merchant/internal/usecase/queries"
	queriesmock "github.com/Thegreatsura/merchant/tests/mock/queries"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestGetCart(t *testing.T) {
	ctx := context.Background()
	storeID, cartID := uuid.New(), uuid.New()

	cfg := config.NewTestConfig()
	cfg.Checkout.DefaultShippingCents = 400

	view := func() *queries.CartView {
		return &queries.CartView{
			ID:            cartID,
			StoreID:       storeID,
			DiscountCents: 300,
			Items: []queries.CartItemView{
				{SKU: "A", Quantity: 2, UnitPriceCents: 1000},
				{SKU: "B", Quantity: 1, UnitPriceCents: 500},
			},
		}
	}

	t.Run("totals come from item snapshots", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := queriesmock.NewMockCartViewRepo(ctrl)
		repo.EXPECT().FindByID(ctx, cartID).Return(view(), nil)

		got, err := queries.NewCartQueries(repo, cfg).GetCart(ctx, storeID, cartID)
		require.NoError(t, err)

		want := queries.TotalsView{SubtotalCents: 2500, DiscountCents: 300, ShippingCents: 400, TotalCents: 2600}
		if diff := cmp.Diff(want, got.Totals); diff != "" {
			t.Errorf("totals mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, int64(2000), got.Items[0].LineTotalCents)
	})

	t.Run("empty cart has no shipping", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := queriesmock.NewMockCartViewRepo(ctrl)
		empty := view()
		empty.Items = nil
		empty.DiscountCents = 0
		repo.EXPECT().FindByID(ctx, cartID).Return(empty, nil)

		got, err := queries.NewCartQueries(repo, cfg).GetCart(ctx, storeID, cartID)
		require.NoError(t, err)
		assert.Equal(t, queries.TotalsView{}, got.Totals)
	})

	t.Run("cart of another store is not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := queriesmock.NewMockCartViewRepo(ctrl)
		repo.EXPECT().FindByID(ctx, cartID).Return(view(), nil)

		_, err := queries.NewCartQueries(repo, cfg).GetCart(ctx, uuid.New(), cartID)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestListOrders(t *testing.T) {
	ctx := context.Background()
	storeID := uuid.New()

	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int32
		wantOffset int32
		wantErr    error
	}{
		{name: "default limit", limit: 0, offset: 0, wantLimit: queries.DefaultListLimit},
		{name: "limit is capped", limit: 1000, offset: 10, wantLimit: queries.MaxListLimit, wantOffset: 10},
		{name: "explicit page", limit: 5, offset: 15, wantLimit: 5, wantOffset: 15},
		{name: "negative offset", limit: 5, offset: -1, wantErr: errs.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := queriesmock.NewMockOrderViewRepo(ctrl)
			if tt.wantErr == nil {
				repo.EXPECT().FindByStore(ctx, storeID, tt.wantLimit, tt.wantOffset).Return([]*queries.OrderListItem{}, nil)
			}

			_, err := queries.NewOrderQueries(repo).ListOrders(ctx, storeID, tt.limit, tt.offset)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestGetOrderScopesByStore(t *testing.T) {
	ctx := context.Background()
	storeID, orderID := uuid.New(), uuid.New()

	ctrl := gomock.NewController(t)
	repo := queriesmock.NewMockOrderViewRepo(ctrl)
	repo.EXPECT().FindByID(ctx, orderID).Return(&queries.OrderView{ID: orderID, StoreID: storeID}, nil).Times(2)

	q := queries.NewOrderQueries(repo)
	got, err := q.GetOrder(ctx, storeID, orderID)
	require.NoError(t, err)
	assert.Equal(t, orderID, got.ID)

	_, err = q.GetOrder(ctx, uuid.New(), orderID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestGetInventory(t *testing.T) {
	ctx := context.Background()
	storeID := uuid.New()

	t.Run("available is on hand minus reserved", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := queriesmock.NewMockInventoryViewRepo(ctrl)
		repo.EXPECT().FindLevel(ctx, storeID, "A").Return(&queries.InventoryView{StoreID: storeID, SKU: "A", OnHand: 10, Reserved: 4}, nil)
		repo.EXPECT().FindLogs(ctx, storeID, "A", int32(queries.DefaultLogLimit)).Return([]queries.InventoryLogView{{Delta: -4, Reason: "release"}}, nil)

		got, err := queries.NewInventoryQueries(repo).GetInventory(ctx, storeID, " A ", 0)
		require.NoError(t, err)
		assert.Equal(t, int64(6), got.Available)
		assert.Len(t, got.Logs, 1)
	})

	t.Run("log limit is capped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := queriesmock.NewMockInventoryViewRepo(ctrl)
		repo.EXPECT().FindLevel(ctx, storeID, "A").Return(&queries.InventoryView{}, nil)
		repo.EXPECT().FindLogs(ctx, storeID, "A", int32(queries.MaxListLimit)).Return(nil, nil)

		_, err := queries.NewInventoryQueries(repo).GetInventory(ctx, storeID, "A", 5000)
		assert.NoError(t, err)
	})

	t.Run("blank sku", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := queriesmock.NewMockInventoryViewRepo(ctrl)

		_, err := queries.NewInventoryQueries(repo).GetInventory(ctx, storeID, "  ", 0)
		assert.ErrorIs(t, err, inventory.ErrInvalidSKU)
	})

	t.Run("unknown sku", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := queriesmock.NewMockInventoryViewRepo(ctrl)
		repo.EXPECT().FindLevel(ctx, storeID, "NOPE").Return(nil, errs.NotFound("inventory level"))

		_, err := queries.NewInventoryQueries(repo).GetInventory(ctx, storeID, "NOPE", 0)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}
