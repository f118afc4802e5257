package commands

//go:generate mockgen -source=inventory.go -destination=../../../tests/mock/commands/inventory_mock.go -package=commandsmock

import (
	"context"
	"log/slog"

	"github.com/Thegreatsura/merchant/internal/domain/inventory"
	"github.com/Thegreatsura/merchant/internal/pkg/errs"
	"github.com/Thegreatsura/merchant/internal/usecase/shared"

	"github.com/google/uuid"
)

type InventoryCommands interface {
	AdjustInventory(ctx context.Context, storeID uuid.UUID, sku string, delta int64, note string) (*inventory.Level, error)
}

type inventoryCommandsImpl struct {
	uow shared.UnitOfWork
}

func NewInventoryCommands(uow shared.UnitOfWork) InventoryCommands {
	return &inventoryCommandsImpl{uow: uow}
}

// AdjustInventory is the operator restock/correction path. It never lets on_hand drop below reserved.
func (uc *inventoryCommandsImpl) AdjustInventory(ctx context.Context, storeID uuid.UUID, sku string, delta int64, note string) (*inventory.Level, error) {
	adj, err := inventory.NewAdjustment(storeID, sku, delta, note)
	if err != nil {
		return nil, err
	}

	var level *inventory.Level
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		variants, err := tx.Catalog().VariantsBySKU(ctx, storeID, []string{adj.SKU})
		if err != nil {
			return err
		}
		if _, ok := variants[adj.SKU]; !ok {
			return errs.NotFound("sku " + adj.SKU)
		}
		level, err = tx.Inventory().Adjust(ctx, adj)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "inventory adjusted",
		slog.String("store_id", storeID.String()),
		slog.String("sku", adj.SKU),
		slog.Int64("delta", delta),
		slog.Int64("on_hand", level.OnHand),
		slog.Int64("reserved", level.Reserved))
	return level, nil
}
