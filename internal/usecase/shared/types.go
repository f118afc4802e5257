package shared

//go:generate mockgen -source=types.go -destination=../../../tests/mock/shared/gateway_mock.go -package=sharedmock

import (
	"context"

	"github.com/Thegreatsura/merchant/internal/domain/event"
	"github.com/Thegreatsura/merchant/internal/domain/order"

	"github.com/google/uuid"
)

type LineItem struct {
	SKU            string
	Title          string
	Quantity       int64
	UnitPriceCents int64
}

type CouponRequest struct {
	Name           string
	AmountOffCents int64
	Currency       string
}

type CheckoutSessionRequest struct {
	StoreID       uuid.UUID
	CartID        uuid.UUID
	DiscountID    *uuid.UUID
	Currency      string
	CustomerEmail string
	LineItems     []LineItem
	ShippingCents int64
	CouponID      string
	SuccessURL    string
	CancelURL     string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// SessionDetails is the part of a checkout session event the materializer reads.
type SessionDetails struct {
	ID              string
	PaymentIntentID string
	CustomerEmail   string
	AmountSubtotal  *int64
	AmountTotal     *int64
	AmountTax       *int64
	AmountShipping  *int64
	AmountDiscount  *int64
	Metadata        map[string]string
	ShipTo          *order.Address
}

type PaymentEvent struct {
	ID      string
	Type    event.Type
	Session *SessionDetails
	Raw     []byte
}

const (
	MetadataCartID     = "cart_id"
	MetadataStoreID    = "store_id"
	MetadataDiscountID = "discount_id"
)

func (e *PaymentEvent) Metadata(key string) string {
	if e.Session == nil || e.Session.Metadata == nil {
		return ""
	}
	return e.Session.Metadata[key]
}

type PaymentGateway interface {
	CreateCoupon(ctx context.Context, req CouponRequest) (string, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error)
	ExpireCheckoutSession(ctx context.Context, sessionID string) error
	Refund(ctx context.Context, paymentIntentID string, amountCents int64) (string, error)
	// ParseUnverified decodes the envelope only; use it to locate the signing secret.
	ParseUnverified(payload []byte) (*PaymentEvent, error)
	VerifyEvent(payload []byte, signature, secret string) (*PaymentEvent, error)
}

type Dispatcher interface {
	Deliver(ctx context.Context, target event.Target) error
}

type EventStream interface {
	PublishOrderCreated(ctx context.Context, payload event.OrderCreatedPayload) error
}
