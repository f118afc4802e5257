package request

import (
	"github.com/Thegreatsura/merchant/internal/domain/cart"
)

type CreateCartRequest struct {
	CustomerEmail string `json:"customer_email" binding:"omitempty,max=254"`
	Currency      string `json:"currency" binding:"omitempty,len=3"`
}

type CartLineRequest struct {
	SKU      string `json:"sku" binding:"required,max=128"`
	Quantity int64  `json:"quantity" binding:"required,min=1"`
}

type ReplaceItemsRequest struct {
	Items []CartLineRequest `json:"items" binding:"required,min=1,dive"`
}

func (r *ReplaceItemsRequest) ToLines() []cart.Line {
	lines := make([]cart.Line, len(r.Items))
	for i, it := range r.Items {
		lines[i] = cart.Line{SKU: it.SKU, Quantity: it.Quantity}
	}
	return lines
}

type ApplyDiscountRequest struct {
	Code string `json:"code" binding:"required,max=64"`
}

// CheckoutRequest overrides the store's configured redirect URLs when set.
type CheckoutRequest struct {
	SuccessURL string `json:"success_url" binding:"omitempty,url"`
	CancelURL  string `json:"cancel_url" binding:"omitempty,url"`
}
