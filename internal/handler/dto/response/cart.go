package response

import (
	"time"

	"github.com/Thegreatsura/merchant/internal/usecase/commands"
	"github.com/Thegreatsura/merchant/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type CartItemResponse struct {
	SKU            string `json:"sku"`
	Title          string `json:"title"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
}

type TotalsResponse struct {
	SubtotalCents int64 `json:"subtotal_cents"`
	DiscountCents int64 `json:"discount_cents"`
	ShippingCents int64 `json:"shipping_cents"`
	TaxCents      int64 `json:"tax_cents"`
	TotalCents    int64 `json:"total_cents"`
}

type CartResponse struct {
	ID                uuid.UUID          `json:"id"`
	StoreID           uuid.UUID          `json:"store_id"`
	CustomerEmail     string             `json:"customer_email"`
	Currency          string             `json:"currency"`
	Status            string             `json:"status"`
	ExpiresAt         time.Time          `json:"expires_at"`
	DiscountCode      *string            `json:"discount_code,omitempty"`
	CheckoutSessionID *string            `json:"checkout_session_id,omitempty"`
	Items             []CartItemResponse `json:"items"`
	Totals            TotalsResponse     `json:"totals"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

func FromCartResult(r *commands.CartResult) *CartResponse {
	s := r.Cart
	items := make([]CartItemResponse, len(s.Items))
	for i, it := range s.Items {
		items[i] = CartItemResponse{
			SKU:            it.SKU,
			Title:          it.Title,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			LineTotalCents: it.LineTotalCents(),
		}
	}
	return &CartResponse{
		ID:                s.ID,
		StoreID:           s.StoreID,
		CustomerEmail:     s.CustomerEmail,
		Currency:          s.Currency,
		Status:            string(s.Status),
		ExpiresAt:         s.ExpiresAt,
		DiscountCode:      s.DiscountCode,
		CheckoutSessionID: s.CheckoutSessionID,
		Items:             items,
		Totals:            TotalsResponse(r.Totals),
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

func FromCartView(v *queries.CartView) (*CartResponse, error) {
	var res CartResponse
	if err := copier.Copy(&res, v); err != nil {
		return nil, err
	}
	if res.Items == nil {
		res.Items = []CartItemResponse{}
	}
	return &res, nil
}

type CheckoutResponse struct {
	CartID     uuid.UUID      `json:"cart_id"`
	SessionID  string         `json:"session_id"`
	SessionURL string         `json:"session_url"`
	Totals     TotalsResponse `json:"totals"`
}

func FromCheckoutResult(r *commands.CheckoutResult) *CheckoutResponse {
	return &CheckoutResponse{
		CartID:     r.CartID,
		SessionID:  r.SessionID,
		SessionURL: r.SessionURL,
		Totals:     TotalsResponse(r.Totals),
	}
}
