//go:build unit

package commands_test

import (
	"testing"
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/cart"
	"github.com/Thegreatsura/merchant/internal/domain/inventory"
	"github.com/Thegreatsura/merchant/internal/usecase/commands"
	"github.com/Thegreatsura/merchant/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// heldCart seeds an open cart that still owns holds, as left behind by an interrupted checkout.
func (f *fixture) heldCart(sku string, qty int64) uuid.UUID {
	f.t.Helper()
	id := uuid.New()
	f.db.PutCart(cart.Snapshot{
		ID:            id,
		StoreID:       f.storeID,
		CustomerEmail: "shopper@example.com",
		Currency:      "usd",
		Status:        cart.StatusOpen,
		ExpiresAt:     t0.Add(30 * time.Minute),
		Items:         []cart.Item{{SKU: sku, Title: "Variant " + sku, Quantity: qty, UnitPriceCents: 1000}},
		CreatedAt:     t0,
		UpdatedAt:     t0,
	})
	f.db.SetHold(inventory.Hold{CartID: id, StoreID: f.storeID, SKU: sku, Quantity: qty})
	l, _ := f.db.Level(f.storeID, sku)
	f.db.SetLevel(f.storeID, sku, l.OnHand, l.Reserved+qty)
	return id
}

func TestSweepExpiredCarts(t *testing.T) {
	f := newFixture(t)
	f.addVariant("A", 1000, 10)
	f.addVariant("B", 500, 5)
	sweeper := commands.NewSweepCommands(f.db, f.cfg, f.metrics)

	held := f.heldCart("A", 3)
	empty := f.openCart()

	checkedOut := f.openCart(line("B", 2))
	f.gateway.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).
		Return(&shared.CheckoutSession{ID: "cs_keep"}, nil)
	_, err := f.carts().Checkout(f.ctx, f.storeID, checkedOut, commands.CheckoutOptions{})
	require.NoError(t, err)

	t.Run("nothing is due before expiry", func(t *testing.T) {
		res, err := sweeper.SweepExpiredCarts(f.ctx, t0.Add(29*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 0, res.Scanned)
		assert.Equal(t, int64(3), f.reserved("A"))
	})

	t.Run("expires open carts and releases their holds", func(t *testing.T) {
		res, err := sweeper.SweepExpiredCarts(f.ctx, t0.Add(31*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 2, res.Scanned)
		assert.Equal(t, 2, res.Expired)
		assert.Equal(t, int64(3), res.UnitsReleased)
		assert.Equal(t, 0, res.Failed)

		for _, id := range []uuid.UUID{held, empty} {
			snap, _ := f.db.Cart(id)
			assert.Equal(t, cart.StatusExpired, snap.Status)
		}
		assert.Equal(t, int64(0), f.reserved("A"))
		assert.Empty(t, f.db.Holds(held))

		logs := f.db.Logs(f.storeID, "A")
		require.Len(t, logs, 1)
		assert.Equal(t, inventory.ReasonRelease, logs[0].Reason)
		assert.Equal(t, int64(-3), logs[0].Delta)
	})

	t.Run("checked-out carts keep their holds", func(t *testing.T) {
		snap, _ := f.db.Cart(checkedOut)
		assert.Equal(t, cart.StatusCheckedOut, snap.Status)
		assert.Equal(t, int64(2), f.reserved("B"))
		assert.Equal(t, map[string]int64{"B": 2}, f.db.Holds(checkedOut))
	})

	t.Run("a second pass is a no-op", func(t *testing.T) {
		res, err := sweeper.SweepExpiredCarts(f.ctx, t0.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 0, res.Expired)
	})
}

func TestSweepExpiredCartsPagesThroughBatches(t *testing.T) {
	f := newFixture(t)
	f.addVariant("A", 1000, 100)
	f.cfg.Sweep.BatchSize = 2
	sweeper := commands.NewSweepCommands(f.db, f.cfg, f.metrics)

	for range 5 {
		f.heldCart("A", 1)
	}

	res, err := sweeper.SweepExpiredCarts(f.ctx, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 5, res.Expired)
	assert.Equal(t, int64(5), res.UnitsReleased)
	assert.Equal(t, int64(0), f.reserved("A"))
}

func TestSweepExpiredCartsSkipsFailingCart(t *testing.T) {
	f := newFixture(t)
	f.addVariant("A", 1000, 10)
	sweeper := commands.NewSweepCommands(f.db, f.cfg, f.metrics)
	f.heldCart("A", 2)

	f.db.BeforeCommit = func() error { return assert.AnError }
	res, err := sweeper.SweepExpiredCarts(f.ctx, t0.Add(time.Hour))
	f.db.BeforeCommit = nil

	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 0, res.Expired)
	assert.Equal(t, int64(2), f.reserved("A"))
}
