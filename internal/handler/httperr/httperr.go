package httperr

import (
	"net/http"

	"github.com/Thegreatsura/merchant/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// Abort classifies err against the error taxonomy and writes the matching response.
func Abort(c *gin.Context, err error) {
	status, msg, detail := Classify(err)
	AbortWithError(c, status, err, msg, detail)
}

func Classify(err error) (status int, msg string, detail any) {
	var inv *errs.InsufficientInventoryError
	var inel *errs.IneligibleError

	switch {
	case errs.As(err, &inv):
		return http.StatusConflict, "Insufficient inventory", gin.H{"sku": inv.SKU}
	case errs.As(err, &inel):
		return http.StatusUnprocessableEntity, "Discount not eligible", gin.H{"reason": string(inel.Reason)}
	case errs.Is(err, errs.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error(), nil
	case errs.Is(err, errs.ErrSignatureInvalid):
		return http.StatusBadRequest, "Invalid signature", nil
	case errs.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, "Not found", nil
	case errs.Is(err, errs.ErrConflict):
		return http.StatusConflict, err.Error(), nil
	case errs.Is(err, errs.ErrProcessor):
		return http.StatusBadGateway, "Payment processor error", nil
	default:
		return http.StatusInternalServerError, "Internal server error", nil
	}
}
