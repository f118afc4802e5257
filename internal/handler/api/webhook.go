package api

import (
	"net/http"

	resdto "github.com/Thegreatsura/merchant/internal/handler/dto/response"
	"github.com/Thegreatsura/merchant/internal/handler/httperr"
	"github.com/Thegreatsura/merchant/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// Stripe caps event payloads well below this.
const maxWebhookBody = 512 << 10

type WebhookHandler struct {
	cmds commands.WebhookCommands
}

func NewWebhookHandler(cmds commands.WebhookCommands) *WebhookHandler {
	return &WebhookHandler{cmds: cmds}
}

// @Summary Payment processor webhook
// @Description Receives signed Stripe events. The raw body is verified against the store's webhook secret.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Stripe signature header"
// @Success 200 {object} resdto.WebhookResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /webhooks/stripe [post]
func (h *WebhookHandler) Stripe(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := c.GetRawData()
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Unreadable request body", nil)
		return
	}
	result, err := h.cmds.HandlePaymentEvent(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromWebhookResult(result))
}
