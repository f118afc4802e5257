package queries

//go:generate mockgen -source=inventory.go -destination=../../../tests/mock/queries/inventory_mock.go -package=queriesmock

import (
	"context"

	"github.com/Thegreatsura/merchant/internal/domain/inventory"

	"github.com/google/uuid"
)

type InventoryQueries interface {
	GetInventory(ctx context.Context, storeID uuid.UUID, sku string, logLimit int) (*InventoryView, error)
}

type InventoryViewRepo interface {
	FindLevel(ctx context.Context, storeID uuid.UUID, sku string) (*InventoryView, error)
	FindLogs(ctx context.Context, storeID uuid.UUID, sku string, limit int32) ([]InventoryLogView, error)
}

type inventoryQueriesImpl struct {
	repo InventoryViewRepo
}

func NewInventoryQueries(repo InventoryViewRepo) InventoryQueries {
	return &inventoryQueriesImpl{repo: repo}
}

func (q *inventoryQueriesImpl) GetInventory(ctx context.Context, storeID uuid.UUID, sku string, logLimit int) (*InventoryView, error) {
	sku = inventory.NormalizeSKU(sku)
	if sku == "" {
		return nil, inventory.ErrInvalidSKU
	}
	if logLimit <= 0 {
		logLimit = DefaultLogLimit
	}
	if logLimit > MaxListLimit {
		logLimit = MaxListLimit
	}

	v, err := q.repo.FindLevel(ctx, storeID, sku)
	if err != nil {
		return nil, err
	}
	logs, err := q.repo.FindLogs(ctx, storeID, sku, int32(logLimit))
	if err != nil {
		return nil, err
	}
	v.Available = v.OnHand - v.Reserved
	v.Logs = logs
	return v, nil
}
