package repository

import (
	"context"
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/event"
	"github.com/Thegreatsura/merchant/internal/infra"
	"github.com/Thegreatsura/merchant/internal/infra/db"
	"github.com/Thegreatsura/merchant/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type DeliveryRepository struct {
	db db.DBTX
}

func NewDeliveryRepository(db db.DBTX) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

func (r *DeliveryRepository) ActiveSubscriptions(ctx context.Context, storeID uuid.UUID) ([]event.Subscription, error) {
	const q = `
		SELECT id, store_id, url, secret, active
		FROM webhook_subscriptions
		WHERE store_id = $1 AND active
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, storeID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query subscriptions", err)
	}
	defer rows.Close()

	var subs []event.Subscription
	for rows.Next() {
		var s event.Subscription
		if err := rows.Scan(&s.ID, &s.StoreID, &s.URL, &s.Secret, &s.Active); err != nil {
			return nil, infra.WrapRepoErr("failed to scan subscription", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate subscriptions", err)
	}
	return subs, nil
}

func (r *DeliveryRepository) Enqueue(ctx context.Context, ds []event.Delivery) error {
	const q = `
		INSERT INTO webhook_deliveries (id, subscription_id, store_id, event_type, payload, status, attempts, next_attempt_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for _, d := range ds {
		_, err := r.db.Exec(ctx, q,
			d.ID, d.SubscriptionID, d.StoreID, d.EventType, d.Payload, string(d.Status),
			d.Attempts, d.NextAttemptAt, d.CreatedAt)
		if err != nil {
			return infra.WrapRepoErr("failed to enqueue delivery", err)
		}
	}
	return nil
}

const targetSelect = `
	SELECT d.id, d.subscription_id, d.store_id, d.event_type, d.payload, d.status, d.attempts,
	       d.last_error, d.next_attempt_at, d.delivered_at, d.created_at, s.url, s.secret
	FROM webhook_deliveries d
	JOIN webhook_subscriptions s ON s.id = d.subscription_id`

// Targets loads still-pending rows among ids.
func (r *DeliveryRepository) Targets(ctx context.Context, ids []uuid.UUID) ([]event.Target, error) {
	q := targetSelect + `
		WHERE d.id = ANY($1::uuid[]) AND d.status = 'pending' AND s.active
		ORDER BY d.created_at, d.id`

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	rows, err := r.db.Query(ctx, q, keys)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query delivery targets", err)
	}
	return collectTargets(rows)
}

func (r *DeliveryRepository) Due(ctx context.Context, now time.Time, maxAttempts, limit int) ([]event.Target, error) {
	q := targetSelect + `
		WHERE d.status IN ('pending', 'failed') AND d.next_attempt_at <= $1 AND d.attempts < $2 AND s.active
		ORDER BY d.next_attempt_at, d.id
		LIMIT $3`

	rows, err := r.db.Query(ctx, q, now, maxAttempts, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query due deliveries", err)
	}
	return collectTargets(rows)
}

func collectTargets(rows pgx.Rows) ([]event.Target, error) {
	defer rows.Close()

	var out []event.Target
	for rows.Next() {
		var (
			t           event.Target
			status      string
			lastError   pgtype.Text
			deliveredAt pgtype.Timestamptz
		)
		d := &t.Delivery
		err := rows.Scan(&d.ID, &d.SubscriptionID, &d.StoreID, &d.EventType, &d.Payload, &status, &d.Attempts,
			&lastError, &d.NextAttemptAt, &deliveredAt, &d.CreatedAt, &t.URL, &t.Secret)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan delivery", err)
		}
		d.Status = event.DeliveryStatus(status)
		d.LastError = pgconv.StringPtrFromPgtype(lastError)
		d.DeliveredAt = pgconv.TimePtrFromPgtype(deliveredAt)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate deliveries", err)
	}
	return out, nil
}

func (r *DeliveryRepository) Save(ctx context.Context, d event.Delivery) error {
	const q = `
		UPDATE webhook_deliveries
		SET status = $2, attempts = $3, last_error = $4, next_attempt_at = $5, delivered_at = $6
		WHERE id = $1`

	_, err := r.db.Exec(ctx, q,
		d.ID, string(d.Status), d.Attempts, pgconv.StringPtrToPgtype(d.LastError),
		d.NextAttemptAt, pgconv.TimePtrToPgtype(d.DeliveredAt))
	if err != nil {
		return infra.WrapRepoErr("failed to save delivery", err)
	}
	return nil
}
