package repository

import (
	"context"

	"github.com/Thegreatsura/merchant/internal/domain/event"
	"github.com/Thegreatsura/merchant/internal/infra"
	"github.com/Thegreatsura/merchant/internal/infra/db"
)

type EventRepository struct {
	db db.DBTX
}

func NewEventRepository(db db.DBTX) *EventRepository {
	return &EventRepository{db: db}
}

// Record is the dedup gate. Concurrent deliveries of one event id serialize on the primary key.
func (r *EventRepository) Record(ctx context.Context, e event.ProcessorEvent) (bool, error) {
	const q = `
		INSERT INTO webhook_events (id, store_id, type, payload, processed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`

	tag, err := r.db.Exec(ctx, q, e.ID, e.StoreID, string(e.Type), e.Payload, e.ProcessedAt)
	if err != nil {
		return false, infra.WrapRepoErr("failed to record processor event", err)
	}
	return tag.RowsAffected() == 1, nil
}
