//go:build unit

package discount_test

import (
	"testing"
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/discount"
	"github.com/Thegreatsura/merchant/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func newDiscount(t *testing.T, mutate func(*discount.Params)) *discount.Discount {
	t.Helper()
	p := discount.Params{
		Code:   "save15",
		Type:   discount.TypePercentage,
		Value:  15,
		Status: discount.StatusActive,
	}
	if mutate != nil {
		mutate(&p)
	}
	d, err := discount.New(p)
	require.NoError(t, err)
	return d
}

func TestDiscount_Calculate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*discount.Params)
		subtotal int64
		want     int64
	}{
		{
			name:     "percentage floors",
			subtotal: 999,
			want:     149,
		},
		{
			name: "fixed amount capped at subtotal",
			mutate: func(p *discount.Params) {
				p.Type = discount.TypeFixedAmount
				p.Value = 5000
			},
			subtotal: 2000,
			want:     2000,
		},
		{
			name: "percentage capped by max discount",
			mutate: func(p *discount.Params) {
				p.Value = 50
				p.MaxDiscountCents = int64Ptr(1000)
			},
			subtotal: 10000,
			want:     1000,
		},
		{
			name:     "zero subtotal",
			subtotal: 0,
			want:     0,
		},
		{
			name:     "zero value",
			mutate:   func(p *discount.Params) { p.Value = 0 },
			subtotal: 5000,
			want:     0,
		},
		{
			name: "fixed under subtotal",
			mutate: func(p *discount.Params) {
				p.Type = discount.TypeFixedAmount
				p.Value = 500
			},
			subtotal: 2000,
			want:     500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDiscount(t, tt.mutate)
			assert.Equal(t, tt.want, d.Calculate(tt.subtotal))
		})
	}
}

func TestDiscount_Validate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	tests := []struct {
		name         string
		mutate       func(*discount.Params)
		subtotal     int64
		customerUses int64
		wantReason   errs.IneligibleReason
	}{
		{name: "eligible", subtotal: 1000},
		{
			name:       "inactive",
			mutate:     func(p *discount.Params) { p.Status = discount.StatusInactive },
			subtotal:   1000,
			wantReason: errs.ReasonInactive,
		},
		{
			name:       "not started",
			mutate:     func(p *discount.Params) { p.StartsAt = &after },
			subtotal:   1000,
			wantReason: errs.ReasonNotStarted,
		},
		{
			name:       "expired",
			mutate:     func(p *discount.Params) { p.ExpiresAt = &before },
			subtotal:   1000,
			wantReason: errs.ReasonExpired,
		},
		{
			name: "inside window",
			mutate: func(p *discount.Params) {
				p.StartsAt = &before
				p.ExpiresAt = &after
			},
			subtotal: 1000,
		},
		{
			name:       "minimum purchase not met",
			mutate:     func(p *discount.Params) { p.MinPurchaseCents = 5000 },
			subtotal:   4999,
			wantReason: errs.ReasonMinimumNotMet,
		},
		{
			name: "global limit reached",
			mutate: func(p *discount.Params) {
				p.UsageLimit = int64Ptr(1)
				p.UsageCount = 1
			},
			subtotal:   1000,
			wantReason: errs.ReasonUsageLimitReached,
		},
		{
			name:         "per customer limit reached",
			mutate:       func(p *discount.Params) { p.UsageLimitPerCustomer = int64Ptr(1) },
			subtotal:     1000,
			customerUses: 1,
			wantReason:   errs.ReasonCustomerLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDiscount(t, tt.mutate)
			err := d.Validate(tt.subtotal, tt.customerUses, now)
			if tt.wantReason == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, errs.ErrIneligible)
			var ie *errs.IneligibleError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.wantReason, ie.Reason)
		})
	}
}

func TestDiscount_CountableAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)

	assert.True(t, newDiscount(t, nil).CountableAt(now))
	assert.False(t, newDiscount(t, func(p *discount.Params) { p.ExpiresAt = &before }).CountableAt(now))
	assert.False(t, newDiscount(t, func(p *discount.Params) { p.Status = discount.StatusArchived }).CountableAt(now))
	// limits do not affect countability
	assert.True(t, newDiscount(t, func(p *discount.Params) {
		p.UsageLimit = int64Ptr(1)
		p.UsageCount = 1
	}).CountableAt(now))
}

func TestNew(t *testing.T) {
	d := newDiscount(t, func(p *discount.Params) { p.Code = "  summer10 " })
	assert.Equal(t, "SUMMER10", d.Code())

	_, err := discount.New(discount.Params{Code: " ", Type: discount.TypePercentage, Status: discount.StatusActive})
	assert.ErrorIs(t, err, discount.ErrEmptyCode)

	_, err = discount.New(discount.Params{Code: "X", Type: discount.TypePercentage, Value: 101, Status: discount.StatusActive})
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)

	_, err = discount.New(discount.Params{Code: "X", Type: "bogo", Status: discount.StatusActive})
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)
}
