package response

import (
	"time"

	"github.com/Thegreatsura/merchant/internal/usecase/commands"
	"github.com/Thegreatsura/merchant/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type AddressResponse struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

type OrderItemResponse struct {
	SKU            string `json:"sku"`
	Title          string `json:"title"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	Number          string              `json:"number"`
	Status          string              `json:"status"`
	CustomerEmail   string              `json:"customer_email"`
	ShipTo          *AddressResponse    `json:"ship_to,omitempty"`
	SubtotalCents   int64               `json:"subtotal_cents"`
	DiscountCents   int64               `json:"discount_cents"`
	ShippingCents   int64               `json:"shipping_cents"`
	TaxCents        int64               `json:"tax_cents"`
	TotalCents      int64               `json:"total_cents"`
	RefundedCents   int64               `json:"refunded_cents"`
	DiscountCode    *string             `json:"discount_code,omitempty"`
	PaymentIntentID *string             `json:"payment_intent_id,omitempty"`
	TrackingNumber  *string             `json:"tracking_number,omitempty"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func FromOrderView(v *queries.OrderView) (*OrderResponse, error) {
	var res OrderResponse
	if err := copier.Copy(&res, v); err != nil {
		return nil, err
	}
	return &res, nil
}

// FromOrderResult flattens the amounts block, which copier does not do on its own.
func FromOrderResult(r *commands.OrderResult) (*OrderResponse, error) {
	var res OrderResponse
	if err := copier.Copy(&res, &r.Order); err != nil {
		return nil, err
	}
	a := r.Order.Amounts
	res.SubtotalCents = a.SubtotalCents
	res.DiscountCents = a.DiscountCents
	res.ShippingCents = a.ShippingCents
	res.TaxCents = a.TaxCents
	res.TotalCents = a.TotalCents
	return &res, nil
}

type OrderListItemResponse struct {
	ID            uuid.UUID `json:"id"`
	Number        string    `json:"number"`
	Status        string    `json:"status"`
	CustomerEmail string    `json:"customer_email"`
	TotalCents    int64     `json:"total_cents"`
	ItemCount     int64     `json:"item_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type OrderListResponse struct {
	Orders []OrderListItemResponse `json:"orders"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
}

func FromOrderList(items []*queries.OrderListItem, limit, offset int) *OrderListResponse {
	res := &OrderListResponse{Orders: make([]OrderListItemResponse, len(items)), Limit: limit, Offset: offset}
	for i, it := range items {
		res.Orders[i] = OrderListItemResponse{
			ID:            it.ID,
			Number:        it.Number,
			Status:        it.Status,
			CustomerEmail: it.CustomerEmail,
			TotalCents:    it.TotalCents,
			ItemCount:     it.ItemCount,
			CreatedAt:     it.CreatedAt,
		}
	}
	return res
}

type RefundResponse struct {
	Order    *OrderResponse `json:"order"`
	RefundID string         `json:"refund_id"`
}
