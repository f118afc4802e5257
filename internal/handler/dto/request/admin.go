package request

import (
	"github.com/Thegreatsura/merchant/internal/domain/order"
)

type AdjustInventoryRequest struct {
	Delta int64  `json:"delta" binding:"required"`
	Note  string `json:"note" binding:"max=500"`
}

type RefundOrderRequest struct {
	AmountCents *int64 `json:"amount_cents" binding:"omitempty,min=1"`
}

type UpdateFulfillmentRequest struct {
	Status         string  `json:"status" binding:"required,oneof=fulfilled shipped"`
	TrackingNumber *string `json:"tracking_number" binding:"omitempty,max=128"`
}

func (r *UpdateFulfillmentRequest) ToStatus() (order.Status, error) {
	return order.ParseStatus(r.Status)
}
