package converter

import (
	"github.com/Thegreatsura/merchant/internal/domain/discount"
	"github.com/Thegreatsura/merchant/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type DiscountRow struct {
	ID                    uuid.UUID
	StoreID               uuid.UUID
	Code                  string
	Type                  string
	Value                 int64
	Status                string
	MinPurchaseCents      int64
	MaxDiscountCents      pgtype.Int8
	StartsAt              pgtype.Timestamptz
	ExpiresAt             pgtype.Timestamptz
	UsageLimit            pgtype.Int8
	UsageLimitPerCustomer pgtype.Int8
	UsageCount            int64
}

func (r *DiscountRow) ScanTargets() []any {
	return []any{
		&r.ID, &r.StoreID, &r.Code, &r.Type, &r.Value, &r.Status, &r.MinPurchaseCents,
		&r.MaxDiscountCents, &r.StartsAt, &r.ExpiresAt, &r.UsageLimit, &r.UsageLimitPerCustomer,
		&r.UsageCount,
	}
}

func DiscountFromRow(r DiscountRow) (*discount.Discount, error) {
	typ, err := discount.ParseType(r.Type)
	if err != nil {
		return nil, err
	}
	status, err := discount.ParseStatus(r.Status)
	if err != nil {
		return nil, err
	}
	return discount.New(discount.Params{
		ID:                    r.ID,
		StoreID:               r.StoreID,
		Code:                  r.Code,
		Type:                  typ,
		Value:                 r.Value,
		Status:                status,
		MinPurchaseCents:      r.MinPurchaseCents,
		MaxDiscountCents:      pgconv.Int64PtrFromPgtype(r.MaxDiscountCents),
		StartsAt:              pgconv.TimePtrFromPgtype(r.StartsAt),
		ExpiresAt:             pgconv.TimePtrFromPgtype(r.ExpiresAt),
		UsageLimit:            pgconv.Int64PtrFromPgtype(r.UsageLimit),
		UsageLimitPerCustomer: pgconv.Int64PtrFromPgtype(r.UsageLimitPerCustomer),
		UsageCount:            r.UsageCount,
	})
}
