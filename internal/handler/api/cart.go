package api

import (
	"net/http"

	reqdto "github.com/Thegreatsura/merchant/internal/handler/dto/request"
	resdto "github.com/Thegreatsura/merchant/internal/handler/dto/response"
	"github.com/Thegreatsura/merchant/internal/handler/httperr"
	"github.com/Thegreatsura/merchant/internal/usecase/commands"
	"github.com/Thegreatsura/merchant/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	cmds commands.CartCommands
	q    queries.CartQueries
}

func NewCartHandler(cmds commands.CartCommands, q queries.CartQueries) *CartHandler {
	return &CartHandler{cmds: cmds, q: q}
}

// @Summary Create cart
// @Description Open a new cart for a store. Currency defaults to the store currency.
// @Tags carts
// @Accept json
// @Produce json
// @Param storeId path string true "Store ID"
// @Param request body reqdto.CreateCartRequest false "Create cart request"
// @Success 201 {object} resdto.CartResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /stores/{storeId}/carts [post]
func (h *CartHandler) Create(c *gin.Context) {
	storeID, err := uuidParam(c, "storeId")
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	var req reqdto.CreateCartRequest
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
			return
		}
	}
	result, err := h.cmds.CreateCart(c.Request.Context(), storeID, req.CustomerEmail, req.Currency)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res := resdto.FromCartResult(result)
	c.Header("Location", "/api/stores/"+storeID.String()+"/carts/"+res.ID.String())
	c.JSON(http.StatusCreated, res)
}

// @Summary Get cart
// @Tags carts
// @Produce json
// @Param storeId path string true "Store ID"
// @Param cartId path string true "Cart ID"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /stores/{storeId}/carts/{cartId} [get]
func (h *CartHandler) Get(c *gin.Context) {
	storeID, cartID, err := storeAndID(c, "cartId")
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	view, err := h.q.GetCart(c.Request.Context(), storeID, cartID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromCartView(view)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Replace cart items
// @Description Replace the full item list. The batch is validated against the catalog and availability as a whole.
// @Tags carts
// @Accept json
// @Produce json
// @Param storeId path string true "Store ID"
// @Param cartId path string true "Cart ID"
// @Param request body reqdto.ReplaceItemsRequest true "Items"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /stores/{storeId}/carts/{cartId}/items [put]
func (h *CartHandler) ReplaceItems(c *gin.Context) {
	storeID, cartID, err := storeAndID(c, "cartId")
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	var req reqdto.ReplaceItemsRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
		return
	}
	result, err := h.cmds.ReplaceItems(c.Request.Context(), storeID, cartID, req.ToLines())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartResult(result))
}

// @Summary Apply discount
// @Tags carts
// @Accept json
// @Produce json
// @Param storeId path string true "Store ID"
// @Param cartId path string true "Cart ID"
// @Param request body reqdto.ApplyDiscountRequest true "Discount code"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /stores/{storeId}/carts/{cartId}/discount [post]
func (h *CartHandler) ApplyDiscount(c *gin.Context) {
	storeID, cartID, err := storeAndID(c, "cartId")
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	var req reqdto.ApplyDiscountRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
		return
	}
	result, err := h.cmds.ApplyDiscount(c.Request.Context(), storeID, cartID, req.Code)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartResult(result))
}

// @Summary Remove discount
// @Tags carts
// @Produce json
// @Param storeId path string true "Store ID"
// @Param cartId path string true "Cart ID"
// @Success 200 {object} resdto.CartResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /stores/{storeId}/carts/{cartId}/discount [delete]
func (h *CartHandler) RemoveDiscount(c *gin.Context) {
	storeID, cartID, err := storeAndID(c, "cartId")
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	result, err := h.cmds.RemoveDiscount(c.Request.Context(), storeID, cartID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartResult(result))
}

// @Summary Checkout
// @Description Reserve inventory for every item and open a hosted checkout session.
// @Tags carts
// @Accept json
// @Produce json
// @Param storeId path string true "Store ID"
// @Param cartId path string true "Cart ID"
// @Param request body reqdto.CheckoutRequest false "Redirect overrides"
// @Success 201 {object} resdto.CheckoutResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /stores/{storeId}/carts/{cartId}/checkout [post]
func (h *CartHandler) Checkout(c *gin.Context) {
	storeID, cartID, err := storeAndID(c, "cartId")
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	var req reqdto.CheckoutRequest
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
			return
		}
	}
	result, err := h.cmds.Checkout(c.Request.Context(), storeID, cartID, commands.CheckoutOptions{
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromCheckoutResult(result))
}
