package commands

//go:generate mockgen -source=sweep.go -destination=../../../tests/mock/commands/sweep_mock.go -package=commandsmock

import (
	"context"
	"log/slog"
	"time"

	"github.com/Thegreatsura/merchant/internal/pkg/config"
	"github.com/Thegreatsura/merchant/internal/pkg/metrics"
	"github.com/Thegreatsura/merchant/internal/usecase/shared"

	"github.com/google/uuid"
)

type SweepCommands interface {
	SweepExpiredCarts(ctx context.Context, now time.Time) (*SweepResult, error)
}

type sweepCommandsImpl struct {
	uow       shared.UnitOfWork
	batchSize int
	metrics   *metrics.Metrics
}

func NewSweepCommands(uow shared.UnitOfWork, cfg config.Config, m *metrics.Metrics) SweepCommands {
	size := cfg.Sweep.BatchSize
	if size <= 0 {
		size = 200
	}
	return &sweepCommandsImpl{uow: uow, batchSize: size, metrics: m}
}

// SweepExpiredCarts expires open carts past their deadline and releases their holds.
// Checked-out carts are never touched. A failing cart is logged and left for the next run.
func (uc *sweepCommandsImpl) SweepExpiredCarts(ctx context.Context, now time.Time) (*SweepResult, error) {
	res := &SweepResult{}
	for {
		var ids []uuid.UUID
		err := uc.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
			var err error
			ids, err = tx.Carts().ListExpiredOpen(ctx, now, uc.batchSize)
			return err
		})
		if err != nil {
			return res, err
		}
		res.Scanned += len(ids)

		progressed := 0
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			expired, units, err := uc.expire(ctx, id, now)
			if err != nil {
				res.Failed++
				slog.WarnContext(ctx, "cart sweep failed",
					slog.String("cart_id", id.String()),
					slog.String("error", err.Error()))
				continue
			}
			if expired {
				progressed++
				res.Expired++
				res.UnitsReleased += units
				uc.metrics.CartsSwept.Inc()
			}
		}

		if len(ids) < uc.batchSize || progressed == 0 {
			break
		}
	}

	if res.Expired > 0 || res.Failed > 0 {
		slog.InfoContext(ctx, "cart sweep finished",
			slog.Int("scanned", res.Scanned),
			slog.Int("expired", res.Expired),
			slog.Int64("units_released", res.UnitsReleased),
			slog.Int("failed", res.Failed))
	}
	return res, nil
}

func (uc *sweepCommandsImpl) expire(ctx context.Context, cartID uuid.UUID, now time.Time) (bool, int64, error) {
	var (
		expired bool
		units   int64
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		expired, units = false, 0

		ok, err := tx.Carts().MarkExpired(ctx, cartID, now)
		if err != nil || !ok {
			// lost to a concurrent checkout or another sweeper
			return err
		}
		holds, err := tx.Inventory().ReleaseCart(ctx, cartID)
		if err != nil {
			return err
		}
		for _, h := range holds {
			units += h.Quantity
		}
		expired = true
		return nil
	})
	return expired, units, err
}
