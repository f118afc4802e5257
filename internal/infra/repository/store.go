package repository

import (
	"context"

	"github.com/Thegreatsura/merchant/internal/domain/store"
	"github.com/Thegreatsura/merchant/internal/infra"
	"github.com/Thegreatsura/merchant/internal/infra/db"
	"github.com/Thegreatsura/merchant/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type StoreRepository struct {
	db db.DBTX
}

func NewStoreRepository(db db.DBTX) *StoreRepository {
	return &StoreRepository{db: db}
}

func (r *StoreRepository) ByID(ctx context.Context, id uuid.UUID) (*store.Store, error) {
	const q = `
		SELECT id, name, currency, stripe_webhook_secret, success_url, cancel_url
		FROM stores WHERE id = $1`

	var s store.Store
	var secret, success, cancel pgtype.Text
	err := r.db.QueryRow(ctx, q, id).Scan(&s.ID, &s.Name, &s.Currency, &secret, &success, &cancel)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("store not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get store", err)
	}
	s.Currency = store.NormalizeCurrency(s.Currency)
	s.WebhookSecret = pgconv.StringPtrFromPgtype(secret)
	s.SuccessURL = pgconv.StringPtrFromPgtype(success)
	s.CancelURL = pgconv.StringPtrFromPgtype(cancel)
	return &s, nil
}

// NextOrderSeq serializes concurrent order creation for a store on its row.
func (r *StoreRepository) NextOrderSeq(ctx context.Context, id uuid.UUID) (int64, error) {
	const q = `UPDATE stores SET order_seq = order_seq + 1 WHERE id = $1 RETURNING order_seq`

	var seq int64
	if err := r.db.QueryRow(ctx, q, id).Scan(&seq); err != nil {
		if pgconv.IsNoRows(err) {
			return 0, infra.WrapRepoErr("store not found", err, infra.KindNotFound)
		}
		return 0, infra.WrapRepoErr("failed to allocate order number", err)
	}
	return seq, nil
}
