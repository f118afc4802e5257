//go:build unit || e2e

package builder

import (
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/discount"

	"github.com/google/uuid"
)

type DiscountBuilder struct {
	Params discount.Params
}

// NewDiscountBuilder starts from an active 10% code with no limits.
func NewDiscountBuilder(storeID uuid.UUID, code string) *DiscountBuilder {
	return &DiscountBuilder{Params: discount.Params{
		ID:      uuid.New(),
		StoreID: storeID,
		Code:    code,
		Type:    discount.TypePercentage,
		Value:   10,
		Status:  discount.StatusActive,
	}}
}

func (b *DiscountBuilder) With(mutate func(*discount.Params)) *DiscountBuilder {
	mutate(&b.Params)
	return b
}

func (b *DiscountBuilder) FixedAmount(cents int64) *DiscountBuilder {
	b.Params.Type = discount.TypeFixedAmount
	b.Params.Value = cents
	return b
}

func (b *DiscountBuilder) UsageLimit(n int64) *DiscountBuilder {
	b.Params.UsageLimit = &n
	return b
}

func (b *DiscountBuilder) PerCustomerLimit(n int64) *DiscountBuilder {
	b.Params.UsageLimitPerCustomer = &n
	return b
}

func (b *DiscountBuilder) Window(startsAt, expiresAt *time.Time) *DiscountBuilder {
	b.Params.StartsAt = startsAt
	b.Params.ExpiresAt = expiresAt
	return b
}

func (b *DiscountBuilder) BuildParams() discount.Params {
	return b.Params
}

func (b *DiscountBuilder) BuildDomain() (*discount.Discount, error) {
	return discount.New(b.Params)
}
