package queries

//go:generate mockgen -source=order.go -destination=../../../tests/mock/queries/order_mock.go -package=queriesmock

import (
	"context"

	"github.com/Thegreatsura/merchant/internal/pkg/errs"

	"github.com/google/uuid"
)

type OrderQueries interface {
	GetOrder(ctx context.Context, storeID, orderID uuid.UUID) (*OrderView, error)
	ListOrders(ctx context.Context, storeID uuid.UUID, limit, offset int) ([]*OrderListItem, error)
}

type OrderViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
	FindByStore(ctx context.Context, storeID uuid.UUID, limit, offset int32) ([]*OrderListItem, error)
}

type orderQueriesImpl struct {
	repo OrderViewRepo
}

func NewOrderQueries(repo OrderViewRepo) OrderQueries {
	return &orderQueriesImpl{repo: repo}
}

func (q *orderQueriesImpl) GetOrder(ctx context.Context, storeID, orderID uuid.UUID) (*OrderView, error) {
	v, err := q.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if v.StoreID != storeID {
		return nil, errs.NotFound("order")
	}
	return v, nil
}

// ListOrders returns newest first.
func (q *orderQueriesImpl) ListOrders(ctx context.Context, storeID uuid.UUID, limit, offset int) ([]*OrderListItem, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		return nil, errs.InvalidRequest("offset must not be negative")
	}
	return q.repo.FindByStore(ctx, storeID, int32(limit), int32(offset))
}
