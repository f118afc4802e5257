//go:build unit

package cart_test

import (
	"testing"
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/cart"
	"github.com/Thegreatsura/merchant/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func newCart(t *testing.T) *cart.Cart {
	t.Helper()
	c, err := cart.New(uuid.New(), "shopper@example.com", "USD", t0, cart.DefaultTTL)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	c := newCart(t)
	assert.Equal(t, cart.StatusOpen, c.Status())
	assert.Equal(t, "usd", c.Currency())
	assert.Equal(t, t0.Add(30*time.Minute), c.ExpiresAt())

	_, err := cart.New(uuid.New(), "not-an-email", "usd", t0, 0)
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)

	_, err = cart.New(uuid.New(), "", "dollars", t0, 0)
	assert.ErrorIs(t, err, cart.ErrInvalidCurrency)
}

func TestValidateLines(t *testing.T) {
	tests := []struct {
		name    string
		lines   []cart.Line
		wantErr error
	}{
		{name: "ok", lines: []cart.Line{{SKU: "A", Quantity: 1}, {SKU: "B", Quantity: 3}}},
		{name: "empty", lines: nil, wantErr: cart.ErrEmptyLines},
		{name: "zero quantity", lines: []cart.Line{{SKU: "A", Quantity: 0}}, wantErr: cart.ErrLineQuantity},
		{name: "blank sku", lines: []cart.Line{{SKU: "  ", Quantity: 1}}, wantErr: cart.ErrLineSKU},
		{name: "duplicate after trim", lines: []cart.Line{{SKU: "A", Quantity: 1}, {SKU: " A", Quantity: 2}}, wantErr: cart.ErrDuplicateSKU},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cart.ValidateLines(tt.lines)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, errs.ErrInvalidRequest)
		})
	}
}

func TestCart_Transitions(t *testing.T) {
	t.Run("mutations require open and unexpired", func(t *testing.T) {
		c := newCart(t)
		require.NoError(t, c.ReplaceItems([]cart.Item{{SKU: "B", Quantity: 1, UnitPriceCents: 500}, {SKU: "A", Quantity: 2, UnitPriceCents: 250}}, t0))
		assert.Equal(t, "A", c.Items()[0].SKU, "items are kept in sku order")
		assert.Equal(t, int64(1000), c.SubtotalCents())

		err := c.ReplaceItems(nil, t0.Add(31*time.Minute))
		assert.ErrorIs(t, err, cart.ErrExpired)
		assert.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("checked out cart is terminal", func(t *testing.T) {
		c := newCart(t)
		require.NoError(t, c.MarkCheckedOut("cs_123", 0, t0))
		assert.Equal(t, cart.StatusCheckedOut, c.Status())
		assert.ErrorIs(t, c.EnsureMutable(t0), cart.ErrNotOpen)
		assert.ErrorIs(t, c.MarkCheckedOut("cs_456", 0, t0), cart.ErrNotOpen)
		assert.ErrorIs(t, c.MarkExpired(t0.Add(time.Hour)), cart.ErrNotOpen)
	})

	t.Run("expire only after expires_at", func(t *testing.T) {
		c := newCart(t)
		assert.ErrorIs(t, c.MarkExpired(t0.Add(29*time.Minute)), errs.ErrConflict)
		require.NoError(t, c.MarkExpired(t0.Add(31*time.Minute)))
		assert.Equal(t, cart.StatusExpired, c.Status())
	})
}

func TestCart_Version(t *testing.T) {
	c := newCart(t)
	assert.Equal(t, int64(0), c.Version())

	require.NoError(t, c.ReplaceItems([]cart.Item{{SKU: "A", Quantity: 1, UnitPriceCents: 250}}, t0))
	c.AttachDiscount(uuid.New(), "SAVE10", 25, t0)
	c.DetachDiscount(t0)
	assert.Equal(t, int64(3), c.Version(), "every content change counts")

	require.NoError(t, c.MarkCheckedOut("cs_1", 0, t0))
	assert.Equal(t, int64(3), c.Version(), "checkout does not change priced content")

	restored := cart.Reconstruct(c.Snapshot())
	assert.Equal(t, int64(3), restored.Version())
}

func TestCart_Totals(t *testing.T) {
	c := newCart(t)
	assert.Equal(t, cart.Totals{}, c.Totals(500), "empty cart carries no shipping")

	require.NoError(t, c.ReplaceItems([]cart.Item{{SKU: "A", Quantity: 4, UnitPriceCents: 250}}, t0))
	c.AttachDiscount(uuid.New(), "SAVE10", 100, t0)
	assert.Equal(t, cart.Totals{SubtotalCents: 1000, DiscountCents: 100, ShippingCents: 500, TotalCents: 1400}, c.Totals(500))

	c.DetachDiscount(t0)
	assert.False(t, c.HasDiscount())
	assert.Equal(t, int64(0), c.Totals(0).DiscountCents)
	assert.Len(t, c.Items(), 1)
}
