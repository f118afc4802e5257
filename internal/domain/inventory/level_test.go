//go:build unit

package inventory_test

import (
	"testing"
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/inventory"
	"github.com/Thegreatsura/merchant/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel_Available(t *testing.T) {
	l := inventory.Level{OnHand: 10, Reserved: 3}
	assert.Equal(t, int64(7), l.Available())
	assert.True(t, l.CanReserve(7))
	assert.False(t, l.CanReserve(8))
	assert.False(t, l.CanReserve(0))
}

func TestNewHold(t *testing.T) {
	storeID, cartID := uuid.New(), uuid.New()

	t.Run("trims sku", func(t *testing.T) {
		h, err := inventory.NewHold(storeID, cartID, "  TEE-M ", 2)
		require.NoError(t, err)
		assert.Equal(t, "TEE-M", h.SKU)
	})

	t.Run("rejects empty sku and non-positive quantity", func(t *testing.T) {
		_, err := inventory.NewHold(storeID, cartID, " ", 1)
		assert.ErrorIs(t, err, errs.ErrInvalidRequest)

		_, err = inventory.NewHold(storeID, cartID, "A", 0)
		assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)
	})
}

func TestAdjustment_Apply(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	level := inventory.Level{OnHand: 5, Reserved: 3}

	tests := []struct {
		name    string
		delta   int64
		want    int64
		wantErr error
	}{
		{name: "restock", delta: 10, want: 15},
		{name: "correction down to reserved", delta: -2, want: 3},
		{name: "below reserved", delta: -3, wantErr: errs.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj, err := inventory.NewAdjustment(uuid.New(), "A", tt.delta, "cycle count")
			require.NoError(t, err)

			got, err := adj.Apply(level, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.OnHand)
			assert.Equal(t, now, got.UpdatedAt)
		})
	}

	_, err := inventory.NewAdjustment(uuid.New(), "A", 0, "")
	assert.ErrorIs(t, err, inventory.ErrZeroAdjustment)
}
