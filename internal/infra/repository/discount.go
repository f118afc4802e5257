package repository

import (
	"context"

	"github.com/Thegreatsura/merchant/internal/domain/discount"
	"github.com/Thegreatsura/merchant/internal/infra"
	"github.com/Thegreatsura/merchant/internal/infra/db"
	"github.com/Thegreatsura/merchant/internal/infra/repository/converter"
	"github.com/Thegreatsura/merchant/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type DiscountRepository struct {
	db db.DBTX
}

func NewDiscountRepository(db db.DBTX) *DiscountRepository {
	return &DiscountRepository{db: db}
}

const discountColumns = `
	id, store_id, code, type, value, status, min_purchase_cents, max_discount_cents,
	starts_at, expires_at, usage_limit, usage_limit_per_customer, usage_count`

func (r *DiscountRepository) ByCode(ctx context.Context, storeID uuid.UUID, code string) (*discount.Discount, error) {
	q := `SELECT ` + discountColumns + ` FROM discounts WHERE store_id = $1 AND upper(code) = upper($2)`
	return r.find(ctx, q, storeID, code)
}

func (r *DiscountRepository) ByID(ctx context.Context, id uuid.UUID) (*discount.Discount, error) {
	q := `SELECT ` + discountColumns + ` FROM discounts WHERE id = $1`
	return r.find(ctx, q, id)
}

func (r *DiscountRepository) find(ctx context.Context, q string, args ...any) (*discount.Discount, error) {
	var row converter.DiscountRow
	if err := r.db.QueryRow(ctx, q, args...).Scan(row.ScanTargets()...); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("discount not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get discount", err)
	}
	return converter.DiscountFromRow(row)
}

func (r *DiscountRepository) CountCustomerUsages(ctx context.Context, discountID uuid.UUID, email string) (int64, error) {
	const q = `SELECT count(*) FROM discount_usages WHERE discount_id = $1 AND customer_email = $2`

	var n int64
	if err := r.db.QueryRow(ctx, q, discountID, discount.NormalizeEmail(email)).Scan(&n); err != nil {
		return 0, infra.WrapRepoErr("failed to count discount usages", err)
	}
	return n, nil
}

func (r *DiscountRepository) IncrementUsage(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `
		UPDATE discounts SET usage_count = usage_count + 1
		WHERE id = $1 AND (usage_limit IS NULL OR usage_count < usage_limit)`

	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return false, infra.WrapRepoErr("failed to increment discount usage", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *DiscountRepository) RecordUsage(ctx context.Context, u discount.Usage) error {
	const q = `
		INSERT INTO discount_usages (id, discount_id, order_id, customer_email, discount_amount_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.db.Exec(ctx, q, u.ID, u.DiscountID, u.OrderID, u.CustomerEmail, u.AmountCents, u.CreatedAt); err != nil {
		return infra.WrapRepoErr("failed to record discount usage", err)
	}
	return nil
}
