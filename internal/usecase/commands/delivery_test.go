//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/event"
	"github.com/Thegreatsura/merchant/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type DeliveryTestSuite struct {
	suite.Suite
	f   *fixture
	sub event.Subscription
}

func (s *DeliveryTestSuite) SetupTest() {
	s.f = newFixture(s.T())
	s.sub = event.Subscription{
		ID:      uuid.New(),
		StoreID: s.f.storeID,
		URL:     "https://hooks.test/orders",
		Secret:  "sub_secret",
		Active:  true,
	}
	s.f.db.AddSubscription(s.sub)
}

func TestDeliverySuite(t *testing.T) {
	suite.Run(t, new(DeliveryTestSuite))
}

func (s *DeliveryTestSuite) enqueue() uuid.UUID {
	d := event.NewDelivery(s.sub, event.OrderCreated, []byte(`{"event":"order.created"}`), s.f.clock.Now())
	err := s.f.db.WithDB(s.f.ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Deliveries().Enqueue(ctx, []event.Delivery{d})
	})
	s.Require().NoError(err)
	return d.ID
}

func (s *DeliveryTestSuite) delivery(id uuid.UUID) event.Delivery {
	for _, d := range s.f.db.Deliveries() {
		if d.ID == id {
			return d
		}
	}
	s.FailNow("delivery not found", id.String())
	return event.Delivery{}
}

func (s *DeliveryTestSuite) TestDeliverPendingSuccess() {
	id := s.enqueue()
	s.f.dispatcher.EXPECT().Deliver(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, target event.Target) error {
			s.Equal(id, target.Delivery.ID)
			s.Equal(s.sub.URL, target.URL)
			return nil
		})

	res, err := s.f.deliveries().DeliverPending(s.f.ctx, []uuid.UUID{id})
	s.Require().NoError(err)
	s.Equal(1, res.Attempted)
	s.Equal(1, res.Delivered)

	d := s.delivery(id)
	s.Equal(event.DeliveryDelivered, d.Status)
	s.Require().NotNil(d.DeliveredAt)
	s.Equal(t0, *d.DeliveredAt)
	s.Nil(d.LastError)
}

func (s *DeliveryTestSuite) TestDeliverPendingSkipsAttemptedRows() {
	id := s.enqueue()
	s.f.dispatcher.EXPECT().Deliver(gomock.Any(), gomock.Any()).Return(errors.New("timeout"))

	_, err := s.f.deliveries().DeliverPending(s.f.ctx, []uuid.UUID{id})
	s.Require().NoError(err)

	res, err := s.f.deliveries().DeliverPending(s.f.ctx, []uuid.UUID{id})
	s.Require().NoError(err)
	s.Equal(0, res.Attempted)
}

func (s *DeliveryTestSuite) TestRetryBacksOffUntilExhausted() {
	id := s.enqueue()
	s.f.dispatcher.EXPECT().Deliver(gomock.Any(), gomock.Any()).Return(errors.New("503 Service Unavailable")).Times(3)

	_, err := s.f.deliveries().DeliverPending(s.f.ctx, []uuid.UUID{id})
	s.Require().NoError(err)
	d := s.delivery(id)
	s.Equal(event.DeliveryFailed, d.Status)
	s.Equal(1, d.Attempts)
	s.Equal(t0.Add(time.Minute), d.NextAttemptAt)
	s.Require().NotNil(d.LastError)
	s.Equal("503 Service Unavailable", *d.LastError)

	s.Run("not due yet", func() {
		res, err := s.f.deliveries().RetryFailedDeliveries(s.f.ctx, t0.Add(30*time.Second))
		s.Require().NoError(err)
		s.Equal(0, res.Attempted)
	})

	s.Run("second attempt doubles the backoff", func() {
		s.f.clock.Set(t0.Add(time.Minute))
		res, err := s.f.deliveries().RetryFailedDeliveries(s.f.ctx, s.f.clock.Now())
		s.Require().NoError(err)
		s.Equal(1, res.Attempted)
		s.Equal(1, res.Failed)

		d := s.delivery(id)
		s.Equal(2, d.Attempts)
		s.Equal(t0.Add(3*time.Minute), d.NextAttemptAt)
	})

	s.Run("third attempt exhausts the row", func() {
		s.f.clock.Set(t0.Add(3 * time.Minute))
		res, err := s.f.deliveries().RetryFailedDeliveries(s.f.ctx, s.f.clock.Now())
		s.Require().NoError(err)
		s.Equal(1, res.Attempted)
		s.Equal(3, s.delivery(id).Attempts)
	})

	s.Run("exhausted rows are not retried", func() {
		s.f.clock.Set(t0.Add(time.Hour))
		res, err := s.f.deliveries().RetryFailedDeliveries(s.f.ctx, s.f.clock.Now())
		s.Require().NoError(err)
		s.Equal(0, res.Attempted)
	})
}

func (s *DeliveryTestSuite) TestRetryDeliversAndStops() {
	id := s.enqueue()
	gomock.InOrder(
		s.f.dispatcher.EXPECT().Deliver(gomock.Any(), gomock.Any()).Return(errors.New("connection refused")),
		s.f.dispatcher.EXPECT().Deliver(gomock.Any(), gomock.Any()).Return(nil),
	)

	_, err := s.f.deliveries().DeliverPending(s.f.ctx, []uuid.UUID{id})
	s.Require().NoError(err)

	s.f.db.SetNextAttempt(id, t0)
	res, err := s.f.deliveries().RetryFailedDeliveries(s.f.ctx, t0)
	s.Require().NoError(err)
	s.Equal(1, res.Delivered)

	d := s.delivery(id)
	s.Equal(event.DeliveryDelivered, d.Status)
	s.Equal(2, d.Attempts)
	s.Nil(d.LastError)

	res, err = s.f.deliveries().RetryFailedDeliveries(s.f.ctx, t0.Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(0, res.Attempted)
}

func (s *DeliveryTestSuite) TestInactiveSubscriptionIsSkipped() {
	off := event.Subscription{ID: uuid.New(), StoreID: s.f.storeID, URL: "https://hooks.test/off", Active: false}
	s.f.db.AddSubscription(off)
	d := event.NewDelivery(off, event.OrderCreated, []byte(`{}`), t0)
	s.Require().NoError(s.f.db.WithDB(s.f.ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Deliveries().Enqueue(ctx, []event.Delivery{d})
	}))

	res, err := s.f.deliveries().DeliverPending(s.f.ctx, []uuid.UUID{d.ID})
	s.Require().NoError(err)
	s.Equal(0, res.Attempted)
}
