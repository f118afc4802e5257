package commands

//go:generate mockgen -source=delivery.go -destination=../../../tests/mock/commands/delivery_mock.go -package=commandsmock

import (
	"context"
	"log/slog"
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/event"
	"github.com/Thegreatsura/merchant/internal/pkg/clock"
	"github.com/Thegreatsura/merchant/internal/pkg/config"
	"github.com/Thegreatsura/merchant/internal/pkg/metrics"
	"github.com/Thegreatsura/merchant/internal/usecase/shared"

	"github.com/google/uuid"
)

type DeliveryCommands interface {
	DeliverPending(ctx context.Context, ids []uuid.UUID) (*DeliveryResult, error)
	RetryFailedDeliveries(ctx context.Context, now time.Time) (*DeliveryResult, error)
}

type deliveryCommandsImpl struct {
	uow        shared.UnitOfWork
	dispatcher shared.Dispatcher
	clock      clock.Clock
	cfg        config.DispatchConfig
	metrics    *metrics.Metrics
}

func NewDeliveryCommands(uow shared.UnitOfWork, dispatcher shared.Dispatcher, clk clock.Clock, cfg config.Config, m *metrics.Metrics) DeliveryCommands {
	if cfg.Dispatch.BatchSize <= 0 {
		cfg.Dispatch.BatchSize = 100
	}
	if cfg.Dispatch.MaxAttempts <= 0 {
		cfg.Dispatch.MaxAttempts = 8
	}
	return &deliveryCommandsImpl{
		uow:        uow,
		dispatcher: dispatcher,
		clock:      clk,
		cfg:        cfg.Dispatch,
		metrics:    m,
	}
}

// DeliverPending attempts the given outbox rows once. Rows that fail stay for RetryFailedDeliveries.
func (uc *deliveryCommandsImpl) DeliverPending(ctx context.Context, ids []uuid.UUID) (*DeliveryResult, error) {
	res := &DeliveryResult{}
	if len(ids) == 0 {
		return res, nil
	}
	var targets []event.Target
	err := uc.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		targets, err = tx.Deliveries().Targets(ctx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.attempt(ctx, targets, res)
	return res, nil
}

func (uc *deliveryCommandsImpl) RetryFailedDeliveries(ctx context.Context, now time.Time) (*DeliveryResult, error) {
	res := &DeliveryResult{}
	for {
		var due []event.Target
		err := uc.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
			var err error
			due, err = tx.Deliveries().Due(ctx, now, uc.cfg.MaxAttempts, uc.cfg.BatchSize)
			return err
		})
		if err != nil {
			return res, err
		}

		saved := uc.attempt(ctx, due, res)
		if len(due) < uc.cfg.BatchSize || saved < len(due) {
			break
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
	}

	if res.Attempted > 0 {
		slog.InfoContext(ctx, "delivery retry finished",
			slog.Int("attempted", res.Attempted),
			slog.Int("delivered", res.Delivered),
			slog.Int("failed", res.Failed))
	}
	return res, nil
}

// attempt posts each target and persists the outcome. It returns how many outcomes were saved.
func (uc *deliveryCommandsImpl) attempt(ctx context.Context, targets []event.Target, res *DeliveryResult) int {
	saved := 0
	for _, t := range targets {
		res.Attempted++
		d := t.Delivery

		result := "delivered"
		if err := uc.dispatcher.Deliver(ctx, t); err != nil {
			d.RecordFailure(err, uc.clock.Now())
			result = "failed"
			if d.Exhausted(uc.cfg.MaxAttempts) {
				result = "exhausted"
			}
			slog.WarnContext(ctx, "subscriber delivery failed",
				slog.String("delivery_id", d.ID.String()),
				slog.String("subscription_id", d.SubscriptionID.String()),
				slog.Int("attempts", d.Attempts),
				slog.String("error", err.Error()))
		} else {
			d.RecordSuccess(uc.clock.Now())
		}

		err := uc.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
			return tx.Deliveries().Save(ctx, d)
		})
		if err != nil {
			// the row is attempted again; subscribers see at-least-once delivery
			slog.ErrorContext(ctx, "failed to persist delivery attempt",
				slog.String("delivery_id", d.ID.String()),
				slog.String("error", err.Error()))
			res.Failed++
			uc.metrics.Deliveries.WithLabelValues(resultError).Inc()
			continue
		}
		saved++

		if d.Status == event.DeliveryDelivered {
			res.Delivered++
		} else {
			res.Failed++
		}
		uc.metrics.Deliveries.WithLabelValues(result).Inc()
	}
	return saved
}
