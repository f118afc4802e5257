package api

import (
	"net/http"

	reqdto "github.com/Thegreatsura/merchant/internal/handler/dto/request"
	resdto "github.com/Thegreatsura/merchant/internal/handler/dto/response"
	"github.com/Thegreatsura/merchant/internal/handler/httperr"
	"github.com/Thegreatsura/merchant/internal/handler/middleware"
	"github.com/Thegreatsura/merchant/internal/pkg/clock"
	"github.com/Thegreatsura/merchant/internal/usecase/commands"
	"github.com/Thegreatsura/merchant/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	inventoryCmds commands.InventoryCommands
	orderCmds     commands.OrderCommands
	sweep         commands.SweepCommands
	deliveries    commands.DeliveryCommands
	inventoryQ    queries.InventoryQueries
	orderQ        queries.OrderQueries
	clock         clock.Clock
}

func NewAdminHandler(
	inventoryCmds commands.InventoryCommands,
	orderCmds commands.OrderCommands,
	sweep commands.SweepCommands,
	deliveries commands.DeliveryCommands,
	inventoryQ queries.InventoryQueries,
	orderQ queries.OrderQueries,
	clk clock.Clock,
) *AdminHandler {
	return &AdminHandler{
		inventoryCmds: inventoryCmds,
		orderCmds:     orderCmds,
		sweep:         sweep,
		deliveries:    deliveries,
		inventoryQ:    inventoryQ,
		orderQ:        orderQ,
		clock:         clk,
	}
}

// @Summary Get inventory level
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param storeId path string true "Store ID"
// @Param sku path string true "SKU"
// @Param logs query int false "Number of recent log entries (default 20)"
// @Success 200 {object} queries.InventoryView
// @Failure 404 {object} httperr.Response
// @Router /admin/stores/{storeId}/inventory/{sku} [get]
func (h *AdminHandler) GetInventory(c *gin.Context) {
	storeID, err := uuidParam(c, "storeId")
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	logLimit, err := intQuery(c, "logs", queries.DefaultLogLimit)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	view, err := h.inventoryQ.GetInventory(c.Request.Context(), storeID, c.Param("sku"), logLimit)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Adjust inventory
// @Description Apply a signed delta to on-hand stock. Negative deltas may not drop on-hand below reserved.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param storeId path string true "Store ID"
// @Param sku path string true "SKU"
// @Param request body reqdto.AdjustInventoryRequest true "Adjustment"
// @Success 200 {object} resdto.InventoryLevelResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /admin/stores/{storeId}/inventory/{sku}/adjustments [post]
func (h *AdminHandler) AdjustInventory(c *gin.Context) {
	storeID, err := uuidParam(c, "storeId")
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	var req reqdto.AdjustInventoryRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
		return
	}
	note := req.Note
	if operatorID, ok := middleware.GetOperatorID(c); ok && note == "" {
		note = "operator " + operatorID.String()
	}
	level, err := h.inventoryCmds.AdjustInventory(c.Request.Context(), storeID, c.Param("sku"), req.Delta, note)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromInventoryLevel(level))
}

// @Summary List orders
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param storeId path string true "Store ID"
// @Param limit query int false "Max items (default 50, max 200)"
// @Param offset query int false "Offset"
// @Success 200 {object} resdto.OrderListResponse
// @Failure 400 {object} httperr.Response
// @Router /admin/stores/{storeId}/orders [get]
func (h *AdminHandler) ListOrders(c *gin.Context) {
	storeID, err := uuidParam(c, "storeId")
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	limit, err := intQuery(c, "limit", queries.DefaultListLimit)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	items, err := h.orderQ.ListOrders(c.Request.Context(), storeID, limit, offset)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromOrderList(items, limit, offset))
}

// @Summary Get order
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param storeId path string true "Store ID"
// @Param orderId path string true "Order ID"
// @Success 200 {object} resdto.OrderResponse
// @Failure 404 {object} httperr.Response
// @Router /admin/stores/{storeId}/orders/{orderId} [get]
func (h *AdminHandler) GetOrder(c *gin.Context) {
	storeID, orderID, err := storeAndID(c, "orderId")
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	view, err := h.orderQ.GetOrder(c.Request.Context(), storeID, orderID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromOrderView(view)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Refund order
// @Description Refund the full total, or amount_cents when given. Orders are refunded once.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param storeId path string true "Store ID"
// @Param orderId path string true "Order ID"
// @Param request body reqdto.RefundOrderRequest false "Refund amount"
// @Success 200 {object} resdto.RefundResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /admin/stores/{storeId}/orders/{orderId}/refund [post]
func (h *AdminHandler) RefundOrder(c *gin.Context) {
	storeID, orderID, err := storeAndID(c, "orderId")
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	var req reqdto.RefundOrderRequest
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
			return
		}
	}
	result, err := h.orderCmds.RefundOrder(c.Request.Context(), storeID, orderID, req.AmountCents)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	order, err := resdto.FromOrderResult(result)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.RefundResponse{Order: order, RefundID: result.RefundID})
}

// @Summary Update fulfillment
// @Description Move an order paid→fulfilled or fulfilled→shipped.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param storeId path string true "Store ID"
// @Param orderId path string true "Order ID"
// @Param request body reqdto.UpdateFulfillmentRequest true "Fulfillment"
// @Success 200 {object} resdto.OrderResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /admin/stores/{storeId}/orders/{orderId}/fulfillment [put]
func (h *AdminHandler) UpdateFulfillment(c *gin.Context) {
	storeID, orderID, err := storeAndID(c, "orderId")
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	var req reqdto.UpdateFulfillmentRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
		return
	}
	status, err := req.ToStatus()
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	result, err := h.orderCmds.UpdateFulfillment(c.Request.Context(), storeID, orderID, status, req.TrackingNumber)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromOrderResult(result)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Sweep expired carts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.SweepResponse
// @Router /admin/jobs/sweep [post]
func (h *AdminHandler) Sweep(c *gin.Context) {
	result, err := h.sweep.SweepExpiredCarts(c.Request.Context(), h.clock.Now())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromSweepResult(result))
}

// @Summary Retry failed deliveries
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.DeliveryRetryResponse
// @Router /admin/jobs/deliveries/retry [post]
func (h *AdminHandler) RetryDeliveries(c *gin.Context) {
	result, err := h.deliveries.RetryFailedDeliveries(c.Request.Context(), h.clock.Now())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromDeliveryResult(result))
}
