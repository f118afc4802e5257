//go:build unit

package commands_test

import (
	"testing"
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/cart"
	"github.com/Thegreatsura/merchant/internal/domain/discount"
	"github.com/Thegreatsura/merchant/internal/pkg/errs"
	"github.com/Thegreatsura/merchant/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCart(t *testing.T) {
	f := newFixture(t)

	t.Run("defaults currency to the store", func(t *testing.T) {
		res, err := f.carts().CreateCart(f.ctx, f.storeID, " shopper@example.com ", "")
		require.NoError(t, err)
		assert.Equal(t, "usd", res.Cart.Currency)
		assert.Equal(t, cart.StatusOpen, res.Cart.Status)
		assert.Equal(t, t0.Add(f.cfg.Checkout.CartTTL), res.Cart.ExpiresAt)
		assert.Equal(t, "shopper@example.com", res.Cart.CustomerEmail)
	})

	t.Run("explicit currency is lowercased", func(t *testing.T) {
		res, err := f.carts().CreateCart(f.ctx, f.storeID, "", "EUR")
		require.NoError(t, err)
		assert.Equal(t, "eur", res.Cart.Currency)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := f.carts().CreateCart(f.ctx, f.storeID, "not-an-email", "")
		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	})

	t.Run("unknown store", func(t *testing.T) {
		_, err := f.carts().CreateCart(f.ctx, uuid.New(), "", "")
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestReplaceItems(t *testing.T) {
	f := newFixture(t)
	f.addVariant("A", 1000, 10)
	f.addVariant("B", 500, 2)
	f.db.AddVariant(builder.NewVariantBuilder(f.storeID, "OLD").With(func(b *builder.VariantBuilder) {
		b.Status = "archived"
	}).BuildDomain())

	cartID := f.openCart(line("A", 1))

	t.Run("replaces the whole list with catalog snapshots", func(t *testing.T) {
		res, err := f.carts().ReplaceItems(f.ctx, f.storeID, cartID, []cart.Line{line("B", 2), line(" A ", 3)})
		require.NoError(t, err)
		require.Len(t, res.Cart.Items, 2)
		assert.Equal(t, "A", res.Cart.Items[0].SKU)
		assert.Equal(t, int64(1000), res.Cart.Items[0].UnitPriceCents)
		assert.Equal(t, int64(4000), res.Totals.SubtotalCents)
	})

	failures := []struct {
		name    string
		lines   []cart.Line
		wantErr error
	}{
		{name: "unknown sku", lines: []cart.Line{line("A", 1), line("MISSING", 1)}, wantErr: errs.ErrNotFound},
		{name: "archived sku", lines: []cart.Line{line("OLD", 1)}, wantErr: errs.ErrInvalidRequest},
		{name: "more than available", lines: []cart.Line{line("A", 1), line("B", 3)}, wantErr: errs.ErrInsufficientInventory},
		{name: "duplicate sku", lines: []cart.Line{line("A", 1), line("A", 2)}, wantErr: errs.ErrInvalidRequest},
		{name: "zero quantity", lines: []cart.Line{line("A", 0)}, wantErr: errs.ErrInvalidRequest},
		{name: "empty list", lines: nil, wantErr: errs.ErrInvalidRequest},
	}
	for _, tc := range failures {
		t.Run(tc.name+" leaves the cart untouched", func(t *testing.T) {
			_, err := f.carts().ReplaceItems(f.ctx, f.storeID, cartID, tc.lines)
			assert.ErrorIs(t, err, tc.wantErr)

			snap, _ := f.db.Cart(cartID)
			require.Len(t, snap.Items, 2)
			assert.Equal(t, int64(3), snap.Items[0].Quantity)
			assert.Equal(t, int64(2), snap.Items[1].Quantity)
		})
	}

	t.Run("lookup does not reserve", func(t *testing.T) {
		assert.Equal(t, int64(0), f.reserved("A"))
		assert.Empty(t, f.db.Holds(cartID))
	})

	t.Run("expired cart", func(t *testing.T) {
		f.clock.Add(31 * time.Minute)
		defer f.clock.Set(t0)

		_, err := f.carts().ReplaceItems(f.ctx, f.storeID, cartID, []cart.Line{line("A", 1)})
		assert.ErrorIs(t, err, cart.ErrExpired)
	})
}

func TestApplyDiscount(t *testing.T) {
	f := newFixture(t)
	f.addVariant("A", 1000, 10)

	active := builder.NewDiscountBuilder(f.storeID, "SAVE10").BuildParams()
	minimum := builder.NewDiscountBuilder(f.storeID, "BIG").With(func(p *discount.Params) {
		p.MinPurchaseCents = 5000
	}).FixedAmount(700).BuildParams()
	inactive := builder.NewDiscountBuilder(f.storeID, "OFF").With(func(p *discount.Params) {
		p.Status = discount.StatusInactive
	}).BuildParams()
	expired := builder.NewDiscountBuilder(f.storeID, "OLD").Window(nil, ptr(t0.Add(-time.Hour))).BuildParams()
	capped := builder.NewDiscountBuilder(f.storeID, "ONCE").UsageLimit(1).With(func(p *discount.Params) {
		p.UsageCount = 1
	}).BuildParams()
	for _, p := range []discount.Params{active, minimum, inactive, expired, capped} {
		f.db.AddDiscount(p)
	}

	cartID := f.openCart(line("A", 3))

	t.Run("code lookup is case-insensitive", func(t *testing.T) {
		res, err := f.carts().ApplyDiscount(f.ctx, f.storeID, cartID, "  save10 ")
		require.NoError(t, err)
		require.NotNil(t, res.Cart.DiscountCode)
		assert.Equal(t, "SAVE10", *res.Cart.DiscountCode)
		assert.Equal(t, int64(300), res.Totals.DiscountCents)
		assert.Equal(t, int64(2700), res.Totals.TotalCents)
	})

	ineligible := []struct {
		code   string
		reason errs.IneligibleReason
	}{
		{code: "OFF", reason: errs.ReasonInactive},
		{code: "OLD", reason: errs.ReasonExpired},
		{code: "BIG", reason: errs.ReasonMinimumNotMet},
		{code: "ONCE", reason: errs.ReasonUsageLimitReached},
	}
	for _, tc := range ineligible {
		t.Run("ineligible "+tc.code, func(t *testing.T) {
			_, err := f.carts().ApplyDiscount(f.ctx, f.storeID, cartID, tc.code)
			var inel *errs.IneligibleError
			require.ErrorAs(t, err, &inel)
			assert.Equal(t, tc.reason, inel.Reason)

			// the previously applied code stays
			snap, _ := f.db.Cart(cartID)
			require.NotNil(t, snap.DiscountCode)
			assert.Equal(t, "SAVE10", *snap.DiscountCode)
		})
	}

	t.Run("unknown code", func(t *testing.T) {
		_, err := f.carts().ApplyDiscount(f.ctx, f.storeID, cartID, "NOPE")
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("empty code", func(t *testing.T) {
		_, err := f.carts().ApplyDiscount(f.ctx, f.storeID, cartID, "  ")
		assert.ErrorIs(t, err, discount.ErrEmptyCode)
	})

	t.Run("item change that breaks eligibility drops the discount", func(t *testing.T) {
		_, err := f.carts().ReplaceItems(f.ctx, f.storeID, cartID, []cart.Line{line("A", 6)})
		require.NoError(t, err)
		_, err = f.carts().ApplyDiscount(f.ctx, f.storeID, cartID, "BIG")
		require.NoError(t, err)

		res, err := f.carts().ReplaceItems(f.ctx, f.storeID, cartID, []cart.Line{line("A", 2)})
		require.NoError(t, err)
		assert.Nil(t, res.Cart.DiscountID)
		assert.Equal(t, int64(0), res.Totals.DiscountCents)
	})

	t.Run("remove discount", func(t *testing.T) {
		_, err := f.carts().ApplyDiscount(f.ctx, f.storeID, cartID, "SAVE10")
		require.NoError(t, err)

		res, err := f.carts().RemoveDiscount(f.ctx, f.storeID, cartID)
		require.NoError(t, err)
		assert.Nil(t, res.Cart.DiscountCode)
		assert.Equal(t, res.Totals.SubtotalCents, res.Totals.TotalCents)
	})
}
