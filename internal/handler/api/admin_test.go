//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/inventory"
	"github.com/Thegreatsura/merchant/internal/domain/order"
	"github.com/Thegreatsura/merchant/internal/handler/api"
	resdto "github.com/Thegreatsura/merchant/internal/handler/dto/response"
	"github.com/Thegreatsura/merchant/internal/pkg/clock"
	"github.com/Thegreatsura/merchant/internal/pkg/errs"
	"github.com/Thegreatsura/merchant/internal/pkg/jwt"
	"github.com/Thegreatsura/merchant/internal/usecase/commands"
	"github.com/Thegreatsura/merchant/internal/usecase/queries"
	"github.com/Thegreatsura/merchant/tests/common/builder"
	"github.com/Thegreatsura/merchant/tests/common/httptest"
	commandsmock "github.com/Thegreatsura/merchant/tests/mock/commands"
	queriesmock "github.com/Thegreatsura/merchant/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type AdminHandlerTestSuite struct {
	suite.Suite
	router        *gin.Engine
	mockCtrl      *gomock.Controller
	inventoryCmds *commandsmock.MockInventoryCommands
	orderCmds     *commandsmock.MockOrderCommands
	sweep         *commandsmock.MockSweepCommands
	deliveries    *commandsmock.MockDeliveryCommands
	inventoryQ    *queriesmock.MockInventoryQueries
	orderQ        *queriesmock.MockOrderQueries
	clock         *clock.MockClock
	operatorID    uuid.UUID
	storeID       uuid.UUID
}

func (s *AdminHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.inventoryCmds = commandsmock.NewMockInventoryCommands(s.mockCtrl)
	s.orderCmds = commandsmock.NewMockOrderCommands(s.mockCtrl)
	s.sweep = commandsmock.NewMockSweepCommands(s.mockCtrl)
	s.deliveries = commandsmock.NewMockDeliveryCommands(s.mockCtrl)
	s.inventoryQ = queriesmock.NewMockInventoryQueries(s.mockCtrl)
	s.orderQ = queriesmock.NewMockOrderQueries(s.mockCtrl)
	s.clock = clock.NewMockClock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	s.operatorID = uuid.New()
	s.storeID = uuid.New()

	h := api.NewAdminHandler(s.inventoryCmds, s.orderCmds, s.sweep, s.deliveries, s.inventoryQ, s.orderQ, s.clock)

	// Mock authentication middleware for testing
	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		c.Set("operator_id", s.operatorID)
		c.Set("operator_role", jwt.RoleAdmin)
		c.Next()
	}

	admin := s.router.Group("/api/admin", authMiddleware)
	store := admin.Group("/stores/:storeId")
	store.GET("/inventory/:sku", h.GetInventory)
	store.POST("/inventory/:sku/adjustments", h.AdjustInventory)
	store.GET("/orders", h.ListOrders)
	store.GET("/orders/:orderId", h.GetOrder)
	store.POST("/orders/:orderId/refund", h.RefundOrder)
	store.PUT("/orders/:orderId/fulfillment", h.UpdateFulfillment)
	admin.POST("/jobs/sweep", h.Sweep)
	admin.POST("/jobs/deliveries/retry", h.RetryDeliveries)
}

func (s *AdminHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerTestSuite))
}

func (s *AdminHandlerTestSuite) storeURL(suffix string) string {
	return "/api/admin/stores/" + s.storeID.String() + suffix
}

// ================================================================================
// Inventory
// ================================================================================

func (s *AdminHandlerTestSuite) TestGetInventory() {
	view := &queries.InventoryView{StoreID: s.storeID, SKU: "A", OnHand: 10, Reserved: 4, Available: 6}

	s.Run("success: default log limit", func() {
		s.inventoryQ.EXPECT().GetInventory(gomock.Any(), s.storeID, "A", queries.DefaultLogLimit).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, s.storeURL("/inventory/A"), nil, "token")

		var body queries.InventoryView
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(int64(6), body.Available)
	})

	s.Run("success: explicit log limit", func() {
		s.inventoryQ.EXPECT().GetInventory(gomock.Any(), s.storeID, "A", 5).Return(view, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, s.storeURL("/inventory/A?logs=5"), nil, "token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 400 on non-numeric log limit", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, s.storeURL("/inventory/A?logs=many"), nil, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "logs must be an integer")
	})

	s.Run("error: 401 when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, s.storeURL("/inventory/A"), nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})
}

func (s *AdminHandlerTestSuite) TestAdjustInventory() {
	url := s.storeURL("/inventory/A/adjustments")
	level := &inventory.Level{StoreID: s.storeID, SKU: "A", OnHand: 15, Reserved: 4}

	s.Run("success: returns the new level", func() {
		s.inventoryCmds.EXPECT().AdjustInventory(gomock.Any(), s.storeID, "A", int64(5), "restock").Return(level, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"delta": 5, "note": "restock"}, "token")

		var body resdto.InventoryLevelResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(int64(15), body.OnHand)
		s.Equal(int64(11), body.Available)
	})

	s.Run("success: note defaults to the operator", func() {
		s.inventoryCmds.EXPECT().AdjustInventory(gomock.Any(), s.storeID, "A", int64(-2), "operator "+s.operatorID.String()).
			Return(level, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"delta": -2}, "token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 400 on zero delta", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"delta": 0}, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})

	s.Run("error: 409 below reserved", func() {
		s.inventoryCmds.EXPECT().AdjustInventory(gomock.Any(), s.storeID, "A", int64(-20), gomock.Any()).
			Return(nil, inventory.ErrBelowReserved).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"delta": -20}, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "below reserved")
	})
}

// ================================================================================
// Orders
// ================================================================================

func (s *AdminHandlerTestSuite) TestListOrders() {
	items := []*queries.OrderListItem{
		builder.NewOrderBuilder(s.storeID).BuildListItem(),
		builder.NewOrderBuilder(s.storeID).With(func(b *builder.OrderBuilder) { b.Number = "ORD-0002" }).BuildListItem(),
	}

	s.Run("success: paginated", func() {
		s.orderQ.EXPECT().ListOrders(gomock.Any(), s.storeID, 10, 20).Return(items, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, s.storeURL("/orders?limit=10&offset=20"), nil, "token")

		var body resdto.OrderListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Len(body.Orders, 2)
		s.Equal(10, body.Limit)
		s.Equal(20, body.Offset)
		s.Equal("ORD-0002", body.Orders[1].Number)
	})

	s.Run("success: empty list renders an array", func() {
		s.orderQ.EXPECT().ListOrders(gomock.Any(), s.storeID, queries.DefaultListLimit, 0).Return(nil, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, s.storeURL("/orders"), nil, "token")
		s.Contains(rec.Body.String(), `"orders":[]`)
	})

	s.Run("error: 400 on negative offset", func() {
		s.orderQ.EXPECT().ListOrders(gomock.Any(), s.storeID, queries.DefaultListLimit, -1).
			Return(nil, errs.InvalidRequest("offset must not be negative")).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, s.storeURL("/orders?offset=-1"), nil, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "offset must not be negative")
	})
}

func (s *AdminHandlerTestSuite) TestGetOrder() {
	b := builder.NewOrderBuilder(s.storeID)
	view := b.BuildView()
	url := s.storeURL("/orders/" + b.ID.String())

	s.Run("success", func() {
		s.orderQ.EXPECT().GetOrder(gomock.Any(), s.storeID, b.ID).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "token")

		var body resdto.OrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(b.ID, body.ID)
		s.Equal("ORD-0001", body.Number)
		s.Equal(int64(5000), body.TotalCents)
		s.Require().Len(body.Items, 1)
		s.Equal("A", body.Items[0].SKU)
	})

	s.Run("error: 404", func() {
		s.orderQ.EXPECT().GetOrder(gomock.Any(), s.storeID, b.ID).Return(nil, errs.NotFound("order")).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Not found")
	})

	s.Run("error: 400 on malformed order id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, s.storeURL("/orders/42"), nil, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "invalid orderId")
	})
}

func (s *AdminHandlerTestSuite) TestRefundOrder() {
	b := builder.NewOrderBuilder(s.storeID).With(func(b *builder.OrderBuilder) { b.Status = order.StatusRefunded })
	url := s.storeURL("/orders/" + b.ID.String() + "/refund")
	snap := b.BuildSnapshot()
	snap.RefundedCents = snap.Amounts.TotalCents
	result := &commands.OrderResult{Order: snap, RefundID: "re_1"}

	s.Run("success: full refund without body", func() {
		s.orderCmds.EXPECT().RefundOrder(gomock.Any(), s.storeID, b.ID, nil).Return(result, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "token")

		var body resdto.RefundResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("re_1", body.RefundID)
		s.Require().NotNil(body.Order)
		s.Equal("refunded", body.Order.Status)
		s.Equal(int64(5000), body.Order.TotalCents)
		s.Equal(int64(5000), body.Order.RefundedCents)
	})

	s.Run("success: partial amount", func() {
		amount := int64(1200)
		s.orderCmds.EXPECT().RefundOrder(gomock.Any(), s.storeID, b.ID, &amount).Return(result, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"amount_cents": 1200}, "token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedMsg    string
		}{
			{name: "already refunded", commandsError: order.ErrAlreadyRefunded, expectedStatus: http.StatusConflict, expectedMsg: "already refunded"},
			{name: "amount above total", commandsError: order.ErrRefundAmount, expectedStatus: http.StatusBadRequest, expectedMsg: "refund amount"},
			{name: "processor declined", commandsError: errs.Processor(errors.New("charge_already_refunded"), "refund"), expectedStatus: http.StatusBadGateway, expectedMsg: "Payment processor error"},
		}
		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.orderCmds.EXPECT().RefundOrder(gomock.Any(), s.storeID, b.ID, gomock.Any()).Return(nil, tc.commandsError).Times(1)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}

func (s *AdminHandlerTestSuite) TestUpdateFulfillment() {
	tracking := "1Z999"
	b := builder.NewOrderBuilder(s.storeID).With(func(b *builder.OrderBuilder) { b.Status = order.StatusShipped })
	url := s.storeURL("/orders/" + b.ID.String() + "/fulfillment")

	s.Run("success", func() {
		snap := b.BuildSnapshot()
		snap.TrackingNumber = &tracking
		s.orderCmds.EXPECT().UpdateFulfillment(gomock.Any(), s.storeID, b.ID, order.StatusShipped, &tracking).
			Return(&commands.OrderResult{Order: snap}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, map[string]any{"status": "shipped", "tracking_number": tracking}, "token")

		var body resdto.OrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("shipped", body.Status)
		s.Require().NotNil(body.TrackingNumber)
		s.Equal(tracking, *body.TrackingNumber)
	})

	s.Run("error: 400 on status outside fulfillment", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, map[string]any{"status": "refunded"}, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})

	s.Run("error: 409 on invalid transition", func() {
		s.orderCmds.EXPECT().UpdateFulfillment(gomock.Any(), s.storeID, b.ID, order.StatusShipped, nil).
			Return(nil, errs.Wrapf(order.ErrInvalidTransition, "paid to shipped")).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, map[string]any{"status": "shipped"}, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "transition not allowed")
	})
}

// ================================================================================
// Jobs
// ================================================================================

func (s *AdminHandlerTestSuite) TestJobs() {
	s.Run("sweep runs at the current time", func() {
		s.sweep.EXPECT().SweepExpiredCarts(gomock.Any(), s.clock.Now()).
			Return(&commands.SweepResult{Scanned: 3, Expired: 2, UnitsReleased: 5}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/admin/jobs/sweep", nil, "token")

		var body resdto.SweepResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(2, body.Expired)
		s.Equal(int64(5), body.UnitsReleased)
	})

	s.Run("delivery retry", func() {
		s.deliveries.EXPECT().RetryFailedDeliveries(gomock.Any(), s.clock.Now()).
			Return(&commands.DeliveryResult{Attempted: 4, Delivered: 3, Failed: 1}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/admin/jobs/deliveries/retry", nil, "token")

		var body resdto.DeliveryRetryResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(4, body.Attempted)
		s.Equal(1, body.Failed)
	})

	s.Run("error: 500 when the sweep cannot list carts", func() {
		s.sweep.EXPECT().SweepExpiredCarts(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset")).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/admin/jobs/sweep", nil, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusInternalServerError, "Internal server error")
	})
}
