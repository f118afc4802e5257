//go:build unit

package commands_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Thegreatsura/merchant/internal/domain/cart"
	"github.com/Thegreatsura/merchant/internal/pkg/errs"
	"github.com/Thegreatsura/merchant/internal/usecase/commands"
	"github.com/Thegreatsura/merchant/internal/usecase/shared"
	"github.com/Thegreatsura/merchant/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type CheckoutTestSuite struct {
	suite.Suite
	f *fixture
}

func (s *CheckoutTestSuite) SetupTest() {
	s.f = newFixture(s.T())
	s.f.addVariant("A", 1000, 10)
	s.f.addVariant("B", 500, 3)
}

func TestCheckoutSuite(t *testing.T) {
	suite.Run(t, new(CheckoutTestSuite))
}

func (s *CheckoutTestSuite) expectSession(id string) {
	s.f.gateway.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).
		Return(&shared.CheckoutSession{ID: id, URL: "https://checkout.test/" + id}, nil)
}

func (s *CheckoutTestSuite) TestSuccess() {
	cartID := s.f.openCart(line("A", 5), line("B", 3))

	var got shared.CheckoutSessionRequest
	s.f.gateway.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req shared.CheckoutSessionRequest) (*shared.CheckoutSession, error) {
			got = req
			return &shared.CheckoutSession{ID: "cs_1", URL: "https://checkout.test/cs_1"}, nil
		})

	res, err := s.f.carts().Checkout(s.f.ctx, s.f.storeID, cartID, commands.CheckoutOptions{})
	s.Require().NoError(err)
	s.Equal("cs_1", res.SessionID)
	s.Equal(int64(6500), res.Totals.TotalCents)

	s.Equal(cartID, got.CartID)
	s.Equal(s.f.storeID, got.StoreID)
	s.Require().Len(got.LineItems, 2)
	s.Equal("A", got.LineItems[0].SKU)
	s.Empty(got.CouponID)
	s.Equal(s.f.cfg.Checkout.SuccessURL, got.SuccessURL)

	snap, _ := s.f.db.Cart(cartID)
	s.Equal(cart.StatusCheckedOut, snap.Status)
	s.Require().NotNil(snap.CheckoutSessionID)
	s.Equal("cs_1", *snap.CheckoutSessionID)

	s.Equal(int64(5), s.f.reserved("A"))
	s.Equal(int64(3), s.f.reserved("B"))
	s.Equal(map[string]int64{"A": 5, "B": 3}, s.f.db.Holds(cartID))
}

func (s *CheckoutTestSuite) TestInsufficientInventoryReleasesEarlierHolds() {
	cartID := s.f.openCart(line("A", 5), line("B", 3))
	// B was 3 when the cart was filled; another cart now holds one of them
	s.f.db.SetLevel(s.f.storeID, "B", 3, 1)

	_, err := s.f.carts().Checkout(s.f.ctx, s.f.storeID, cartID, commands.CheckoutOptions{})

	var inv *errs.InsufficientInventoryError
	s.Require().ErrorAs(err, &inv)
	s.Equal("B", inv.SKU)
	s.ErrorIs(err, errs.ErrInsufficientInventory)

	s.Equal(int64(0), s.f.reserved("A"))
	s.Equal(int64(1), s.f.reserved("B"))
	s.Empty(s.f.db.Holds(cartID))

	snap, _ := s.f.db.Cart(cartID)
	s.Equal(cart.StatusOpen, snap.Status)
}

func (s *CheckoutTestSuite) TestProcessorFailureRollsBack() {
	cartID := s.f.openCart(line("A", 2), line("B", 1))
	s.f.gateway.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("stripe: connection reset"))

	_, err := s.f.carts().Checkout(s.f.ctx, s.f.storeID, cartID, commands.CheckoutOptions{})
	s.ErrorIs(err, errs.ErrProcessor)

	s.Equal(int64(0), s.f.reserved("A"))
	s.Equal(int64(0), s.f.reserved("B"))
	s.Empty(s.f.db.Holds(cartID))

	snap, _ := s.f.db.Cart(cartID)
	s.Equal(cart.StatusOpen, snap.Status)
	s.Nil(snap.CheckoutSessionID)

	// each compensation is a release ledger entry
	logs := s.f.db.Logs(s.f.storeID, "A")
	s.Require().Len(logs, 1)
	s.Equal(int64(-2), logs[0].Delta)
}

func (s *CheckoutTestSuite) TestCommitFailureRollsBack() {
	cartID := s.f.openCart(line("A", 1))
	s.expectSession("cs_lost")
	s.f.gateway.EXPECT().ExpireCheckoutSession(gomock.Any(), "cs_lost").Return(nil)

	calls := 0
	s.f.db.BeforeCommit = func() error {
		calls++
		// prepare commits, the mark-checked-out transaction does not
		if calls == 2 {
			return errors.New("connection lost")
		}
		return nil
	}

	_, err := s.f.carts().Checkout(s.f.ctx, s.f.storeID, cartID, commands.CheckoutOptions{})
	s.Error(err)
	s.f.db.BeforeCommit = nil

	s.Equal(int64(0), s.f.reserved("A"))
	snap, _ := s.f.db.Cart(cartID)
	s.Equal(cart.StatusOpen, snap.Status)
}

func (s *CheckoutTestSuite) TestCartEditedDuringCheckoutIsNotMarkedPaid() {
	cartID := s.f.openCart(line("A", 5), line("B", 3))

	var priced []shared.LineItem
	s.f.gateway.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req shared.CheckoutSessionRequest) (*shared.CheckoutSession, error) {
			priced = req.LineItems
			// the shopper edits the cart in another tab while the session is being created
			_, err := s.f.carts().ReplaceItems(ctx, s.f.storeID, cartID, []cart.Line{line("A", 1)})
			s.Require().NoError(err)
			return &shared.CheckoutSession{ID: "cs_stale", URL: "https://checkout.test/cs_stale"}, nil
		})
	s.f.gateway.EXPECT().ExpireCheckoutSession(gomock.Any(), "cs_stale").Return(nil)

	_, err := s.f.carts().Checkout(s.f.ctx, s.f.storeID, cartID, commands.CheckoutOptions{})
	s.ErrorIs(err, errs.ErrConflict)
	s.Len(priced, 2)

	snap, _ := s.f.db.Cart(cartID)
	s.Equal(cart.StatusOpen, snap.Status)
	s.Nil(snap.CheckoutSessionID)
	s.Require().Len(snap.Items, 1)
	s.Equal(int64(1), snap.Items[0].Quantity)

	s.Equal(int64(0), s.f.reserved("A"))
	s.Equal(int64(0), s.f.reserved("B"))
	s.Empty(s.f.db.Holds(cartID))

	// the edited cart checks out at its new contents
	s.f.gateway.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req shared.CheckoutSessionRequest) (*shared.CheckoutSession, error) {
			s.Require().Len(req.LineItems, 1)
			s.Equal(int64(1), req.LineItems[0].Quantity)
			return &shared.CheckoutSession{ID: "cs_fresh"}, nil
		})
	res, err := s.f.carts().Checkout(s.f.ctx, s.f.storeID, cartID, commands.CheckoutOptions{})
	s.Require().NoError(err)
	s.Equal("cs_fresh", res.SessionID)
	s.Equal(map[string]int64{"A": 1}, s.f.db.Holds(cartID))
}

func (s *CheckoutTestSuite) TestDiscountChangedDuringCheckoutIsNotMarkedPaid() {
	s.f.db.AddDiscount(builder.NewDiscountBuilder(s.f.storeID, "SAVE10").BuildParams())
	cartID := s.f.openCart(line("A", 2))

	s.f.gateway.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ shared.CheckoutSessionRequest) (*shared.CheckoutSession, error) {
			_, err := s.f.carts().ApplyDiscount(ctx, s.f.storeID, cartID, "SAVE10")
			s.Require().NoError(err)
			return &shared.CheckoutSession{ID: "cs_undiscounted"}, nil
		})
	s.f.gateway.EXPECT().ExpireCheckoutSession(gomock.Any(), "cs_undiscounted").Return(nil)

	_, err := s.f.carts().Checkout(s.f.ctx, s.f.storeID, cartID, commands.CheckoutOptions{})
	s.ErrorIs(err, errs.ErrConflict)
	s.Equal(int64(0), s.f.reserved("A"))
}

func (s *CheckoutTestSuite) TestSessionExpiryFailureStillReleasesHolds() {
	cartID := s.f.openCart(line("A", 2))

	s.f.gateway.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ shared.CheckoutSessionRequest) (*shared.CheckoutSession, error) {
			_, err := s.f.carts().ReplaceItems(ctx, s.f.storeID, cartID, []cart.Line{line("A", 3)})
			s.Require().NoError(err)
			return &shared.CheckoutSession{ID: "cs_orphan"}, nil
		})
	s.f.gateway.EXPECT().ExpireCheckoutSession(gomock.Any(), "cs_orphan").
		Return(errors.New("stripe: connection reset"))

	_, err := s.f.carts().Checkout(s.f.ctx, s.f.storeID, cartID, commands.CheckoutOptions{})
	s.ErrorIs(err, errs.ErrConflict)
	s.Equal(int64(0), s.f.reserved("A"))
	s.Empty(s.f.db.Holds(cartID))
}

func (s *CheckoutTestSuite) TestDiscountCreatesCoupon() {
	s.f.db.AddDiscount(builder.NewDiscountBuilder(s.f.storeID, "SAVE10").BuildParams())
	cartID := s.f.openCart(line("A", 2))
	_, err := s.f.carts().ApplyDiscount(s.f.ctx, s.f.storeID, cartID, "save10")
	s.Require().NoError(err)

	s.f.gateway.EXPECT().CreateCoupon(gomock.Any(), shared.CouponRequest{
		Name:           "SAVE10",
		AmountOffCents: 200,
		Currency:       "usd",
	}).Return("coupon_1", nil)
	s.f.gateway.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req shared.CheckoutSessionRequest) (*shared.CheckoutSession, error) {
			s.Equal("coupon_1", req.CouponID)
			s.Require().NotNil(req.DiscountID)
			return &shared.CheckoutSession{ID: "cs_2"}, nil
		})

	res, err := s.f.carts().Checkout(s.f.ctx, s.f.storeID, cartID, commands.CheckoutOptions{})
	s.Require().NoError(err)
	s.Equal(int64(200), res.Totals.DiscountCents)
	s.Equal(int64(1800), res.Totals.TotalCents)
}

func (s *CheckoutTestSuite) TestRejectsCartThatCannotCheckOut() {
	s.Run("empty cart", func() {
		cartID := s.f.openCart()
		_, err := s.f.carts().Checkout(s.f.ctx, s.f.storeID, cartID, commands.CheckoutOptions{})
		s.ErrorIs(err, cart.ErrEmpty)
	})

	s.Run("already checked out", func() {
		cartID := s.f.openCart(line("A", 1))
		s.expectSession("cs_once")
		_, err := s.f.carts().Checkout(s.f.ctx, s.f.storeID, cartID, commands.CheckoutOptions{})
		s.Require().NoError(err)

		_, err = s.f.carts().Checkout(s.f.ctx, s.f.storeID, cartID, commands.CheckoutOptions{})
		s.ErrorIs(err, errs.ErrConflict)
		s.Equal(int64(1), s.f.reserved("A"))
	})

	s.Run("cart of another store", func() {
		cartID := s.f.openCart(line("A", 1))
		_, err := s.f.carts().Checkout(s.f.ctx, uuid.New(), cartID, commands.CheckoutOptions{})
		s.ErrorIs(err, errs.ErrNotFound)
	})
}

func (s *CheckoutTestSuite) TestConcurrentCheckoutsForLastUnit() {
	s.f.addVariant("LAST", 2500, 1)
	first := s.f.openCart(line("LAST", 1))
	second := s.f.openCart(line("LAST", 1))

	s.f.gateway.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).
		Return(&shared.CheckoutSession{ID: "cs_race"}, nil).Times(1)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, id := range []uuid.UUID{first, second} {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, results[i] = s.f.carts().Checkout(s.f.ctx, s.f.storeID, id, commands.CheckoutOptions{})
		}(i, id)
	}
	wg.Wait()

	won := 0
	for _, err := range results {
		if err == nil {
			won++
			continue
		}
		s.ErrorIs(err, errs.ErrInsufficientInventory)
	}
	s.Equal(1, won)
	s.Equal(int64(1), s.f.reserved("LAST"))
}
