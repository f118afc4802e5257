package commands

//go:generate mockgen -source=order.go -destination=../../../tests/mock/commands/order_mock.go -package=commandsmock

import (
	"context"
	"log/slog"

	"github.com/Thegreatsura/merchant/internal/domain/order"
	"github.com/Thegreatsura/merchant/internal/pkg/clock"
	"github.com/Thegreatsura/merchant/internal/pkg/errs"
	"github.com/Thegreatsura/merchant/internal/usecase/shared"

	"github.com/google/uuid"
)

type OrderCommands interface {
	RefundOrder(ctx context.Context, storeID, orderID uuid.UUID, amountCents *int64) (*OrderResult, error)
	UpdateFulfillment(ctx context.Context, storeID, orderID uuid.UUID, status order.Status, tracking *string) (*OrderResult, error)
}

type orderCommandsImpl struct {
	uow      shared.UnitOfWork
	payments shared.PaymentGateway
	clock    clock.Clock
}

func NewOrderCommands(uow shared.UnitOfWork, payments shared.PaymentGateway, clk clock.Clock) OrderCommands {
	return &orderCommandsImpl{uow: uow, payments: payments, clock: clk}
}

// RefundOrder holds the order row lock across the processor call so a refund is issued at most once.
func (uc *orderCommandsImpl) RefundOrder(ctx context.Context, storeID, orderID uuid.UUID, amountCents *int64) (*OrderResult, error) {
	var (
		refunded *order.Order
		refundID string
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := lockOrder(ctx, tx, storeID, orderID)
		if err != nil {
			return err
		}
		amount, err := o.PrepareRefund(amountCents)
		if err != nil {
			return err
		}

		refundID, err = uc.payments.Refund(ctx, *o.PaymentIntentID(), amount)
		if err != nil {
			return errs.Processor(err, "refund")
		}

		o.MarkRefunded(amount, uc.clock.Now())
		if err := tx.Orders().Save(ctx, o); err != nil {
			return err
		}
		refunded = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order refunded",
		slog.String("order_id", refunded.ID().String()),
		slog.String("refund_id", refundID),
		slog.Int64("amount_cents", refunded.RefundedCents()))
	return &OrderResult{Order: refunded.Snapshot(), RefundID: refundID}, nil
}

func (uc *orderCommandsImpl) UpdateFulfillment(ctx context.Context, storeID, orderID uuid.UUID, status order.Status, tracking *string) (*OrderResult, error) {
	var updated *order.Order
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := lockOrder(ctx, tx, storeID, orderID)
		if err != nil {
			return err
		}
		if err := o.UpdateFulfillment(status, tracking, uc.clock.Now()); err != nil {
			return err
		}
		if err := tx.Orders().Save(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: updated.Snapshot()}, nil
}

func lockOrder(ctx context.Context, tx shared.Tx, storeID, orderID uuid.UUID) (*order.Order, error) {
	o, err := tx.Orders().ByIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.StoreID() != storeID {
		return nil, errs.NotFound("order")
	}
	return o, nil
}
