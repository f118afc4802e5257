package queries

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
	DefaultLogLimit  = 20
)

type CartItemView struct {
	SKU            string `json:"sku"`
	Title          string `json:"title"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
}

type TotalsView struct {
	SubtotalCents int64 `json:"subtotal_cents"`
	DiscountCents int64 `json:"discount_cents"`
	ShippingCents int64 `json:"shipping_cents"`
	TaxCents      int64 `json:"tax_cents"`
	TotalCents    int64 `json:"total_cents"`
}

type CartView struct {
	ID                uuid.UUID      `json:"id"`
	StoreID           uuid.UUID      `json:"store_id"`
	CustomerEmail     string         `json:"customer_email"`
	Currency          string         `json:"currency"`
	Status            string         `json:"status"`
	ExpiresAt         time.Time      `json:"expires_at"`
	DiscountID        *uuid.UUID     `json:"discount_id,omitempty"`
	DiscountCode      *string        `json:"discount_code,omitempty"`
	DiscountCents     int64          `json:"discount_cents"`
	CheckoutSessionID *string        `json:"checkout_session_id,omitempty"`
	Items             []CartItemView `json:"items"`
	Totals            TotalsView     `json:"totals"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

type AddressView struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

type OrderItemView struct {
	SKU            string `json:"sku"`
	Title          string `json:"title"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type OrderView struct {
	ID                uuid.UUID       `json:"id"`
	StoreID           uuid.UUID       `json:"store_id"`
	CartID            *uuid.UUID      `json:"cart_id,omitempty"`
	Number            string          `json:"number"`
	Status            string          `json:"status"`
	CustomerEmail     string          `json:"customer_email"`
	ShipTo            *AddressView    `json:"ship_to,omitempty"`
	SubtotalCents     int64           `json:"subtotal_cents"`
	DiscountCents     int64           `json:"discount_cents"`
	ShippingCents     int64           `json:"shipping_cents"`
	TaxCents          int64           `json:"tax_cents"`
	TotalCents        int64           `json:"total_cents"`
	RefundedCents     int64           `json:"refunded_cents"`
	DiscountCode      *string         `json:"discount_code,omitempty"`
	CheckoutSessionID *string         `json:"checkout_session_id,omitempty"`
	PaymentIntentID   *string         `json:"payment_intent_id,omitempty"`
	TrackingNumber    *string         `json:"tracking_number,omitempty"`
	Items             []OrderItemView `json:"items"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type OrderListItem struct {
	ID            uuid.UUID `json:"id"`
	Number        string    `json:"number"`
	Status        string    `json:"status"`
	CustomerEmail string    `json:"customer_email"`
	TotalCents    int64     `json:"total_cents"`
	ItemCount     int64     `json:"item_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type InventoryLogView struct {
	ID        uuid.UUID  `json:"id"`
	Delta     int64      `json:"delta"`
	Reason    string     `json:"reason"`
	CartID    *uuid.UUID `json:"cart_id,omitempty"`
	Note      string     `json:"note,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type InventoryView struct {
	StoreID   uuid.UUID          `json:"store_id"`
	SKU       string             `json:"sku"`
	Title     string             `json:"title"`
	OnHand    int64              `json:"on_hand"`
	Reserved  int64              `json:"reserved"`
	Available int64              `json:"available"`
	UpdatedAt time.Time          `json:"updated_at"`
	Logs      []InventoryLogView `json:"logs"`
}
