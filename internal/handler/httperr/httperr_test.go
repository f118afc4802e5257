//go:build unit

package httperr_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/Thegreatsura/merchant/internal/domain/cart"
	"github.com/Thegreatsura/merchant/internal/handler/httperr"
	"github.com/Thegreatsura/merchant/internal/infra"
	"github.com/Thegreatsura/merchant/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
		wantDetail any
	}{
		{name: "insufficient inventory carries the sku", err: errs.Wrap(errs.InsufficientInventory("A"), "reserve"), wantStatus: http.StatusConflict, wantMsg: "Insufficient inventory", wantDetail: gin.H{"sku": "A"}},
		{name: "ineligible carries the reason", err: errs.Ineligible(errs.ReasonMinimumNotMet, "min"), wantStatus: http.StatusUnprocessableEntity, wantMsg: "Discount not eligible", wantDetail: gin.H{"reason": "minimum_not_met"}},
		{name: "invalid request keeps its message", err: cart.ErrEmptyLines, wantStatus: http.StatusBadRequest, wantMsg: cart.ErrEmptyLines.Error()},
		{name: "signature", err: errs.SignatureInvalid(errors.New("bad")), wantStatus: http.StatusBadRequest, wantMsg: "Invalid signature"},
		{name: "not found", err: errs.NotFound("cart"), wantStatus: http.StatusNotFound, wantMsg: "Not found"},
		{name: "repository not found", err: infra.WrapRepoErr("cart not found", nil, infra.KindNotFound), wantStatus: http.StatusNotFound, wantMsg: "Not found"},
		{name: "repository duplicate is a conflict", err: infra.WrapRepoErr("duplicate order", errors.New("23505"), infra.KindDuplicateKey), wantStatus: http.StatusConflict},
		{name: "conflict", err: cart.ErrExpired, wantStatus: http.StatusConflict, wantMsg: cart.ErrExpired.Error()},
		{name: "processor", err: errs.Processor(errors.New("timeout"), "refund"), wantStatus: http.StatusBadGateway, wantMsg: "Payment processor error"},
		{name: "unclassified", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantMsg: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg, detail := httperr.Classify(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, msg)
			}
			assert.Equal(t, tt.wantDetail, detail)
		})
	}
}
