package order

import (
	"strings"
	"time"

	"github.com/Thegreatsura/merchant/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrAlreadyRefunded   = errs.Conflict("order is already refunded")
	ErrNoPaymentIntent   = errs.InvalidRequest("order has no payment to refund")
	ErrRefundAmount      = errs.InvalidRequest("refund amount must be positive and not exceed the order total")
	ErrInvalidTransition = errs.Conflict("order status transition not allowed")
	ErrNoItems           = errs.InvalidRequest("order requires at least one item")
)

type NewParams struct {
	StoreID           uuid.UUID
	CartID            *uuid.UUID
	Number            string
	CustomerEmail     string
	ShipTo            *Address
	Amounts           Amounts
	DiscountID        *uuid.UUID
	DiscountCode      *string
	CheckoutSessionID *string
	PaymentIntentID   *string
	Items             []Item
	Now               time.Time
}

type Order struct {
	id                uuid.UUID
	storeID           uuid.UUID
	cartID            *uuid.UUID
	number            string
	status            Status
	customerEmail     string
	shipTo            *Address
	amounts           Amounts
	discountID        *uuid.UUID
	discountCode      *string
	checkoutSessionID *string
	paymentIntentID   *string
	refundedCents     int64
	trackingNumber    *string
	items             []Item
	createdAt         time.Time
	updatedAt         time.Time
}

// New creates a paid order. Orders always start paid, whether materialized from a payment event or created in tests.
func New(p NewParams) (*Order, error) {
	if len(p.Items) == 0 {
		return nil, ErrNoItems
	}
	if p.Number == "" {
		return nil, errs.InvalidRequest("order number is required")
	}
	return &Order{
		id:                uuid.New(),
		storeID:           p.StoreID,
		cartID:            p.CartID,
		number:            p.Number,
		status:            StatusPaid,
		customerEmail:     strings.TrimSpace(p.CustomerEmail),
		shipTo:            p.ShipTo,
		amounts:           p.Amounts,
		discountID:        p.DiscountID,
		discountCode:      p.DiscountCode,
		checkoutSessionID: p.CheckoutSessionID,
		paymentIntentID:   p.PaymentIntentID,
		items:             p.Items,
		createdAt:         p.Now,
		updatedAt:         p.Now,
	}, nil
}

type Snapshot struct {
	ID                uuid.UUID
	StoreID           uuid.UUID
	CartID            *uuid.UUID
	Number            string
	Status            Status
	CustomerEmail     string
	ShipTo            *Address
	Amounts           Amounts
	DiscountID        *uuid.UUID
	DiscountCode      *string
	CheckoutSessionID *string
	PaymentIntentID   *string
	RefundedCents     int64
	TrackingNumber    *string
	Items             []Item
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func Reconstruct(s Snapshot) *Order {
	return &Order{
		id:                s.ID,
		storeID:           s.StoreID,
		cartID:            s.CartID,
		number:            s.Number,
		status:            s.Status,
		customerEmail:     s.CustomerEmail,
		shipTo:            s.ShipTo,
		amounts:           s.Amounts,
		discountID:        s.DiscountID,
		discountCode:      s.DiscountCode,
		checkoutSessionID: s.CheckoutSessionID,
		paymentIntentID:   s.PaymentIntentID,
		refundedCents:     s.RefundedCents,
		trackingNumber:    s.TrackingNumber,
		items:             s.Items,
		createdAt:         s.CreatedAt,
		updatedAt:         s.UpdatedAt,
	}
}

func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:                o.id,
		StoreID:           o.storeID,
		CartID:            o.cartID,
		Number:            o.number,
		Status:            o.status,
		CustomerEmail:     o.customerEmail,
		ShipTo:            o.shipTo,
		Amounts:           o.amounts,
		DiscountID:        o.discountID,
		DiscountCode:      o.discountCode,
		CheckoutSessionID: o.checkoutSessionID,
		PaymentIntentID:   o.paymentIntentID,
		RefundedCents:     o.refundedCents,
		TrackingNumber:    o.trackingNumber,
		Items:             o.items,
		CreatedAt:         o.createdAt,
		UpdatedAt:         o.updatedAt,
	}
}

// PrepareRefund resolves the single-shot refund amount; nil means the full total.
func (o *Order) PrepareRefund(amountCents *int64) (int64, error) {
	if o.status == StatusRefunded {
		return 0, ErrAlreadyRefunded
	}
	if o.paymentIntentID == nil || *o.paymentIntentID == "" {
		return 0, ErrNoPaymentIntent
	}
	amount := o.amounts.TotalCents
	if amountCents != nil {
		amount = *amountCents
	}
	if amount <= 0 || amount > o.amounts.TotalCents {
		return 0, ErrRefundAmount
	}
	return amount, nil
}

func (o *Order) MarkRefunded(amountCents int64, now time.Time) {
	o.status = StatusRefunded
	o.refundedCents = amountCents
	o.updatedAt = now
}

func (o *Order) UpdateFulfillment(next Status, tracking *string, now time.Time) error {
	if !o.status.CanFulfillTo(next) {
		return errs.Wrapf(ErrInvalidTransition, "%s to %s", o.status, next)
	}
	o.status = next
	if tracking != nil {
		t := strings.TrimSpace(*tracking)
		o.trackingNumber = &t
	}
	o.updatedAt = now
	return nil
}

func (o *Order) ID() uuid.UUID              { return o.id }
func (o *Order) StoreID() uuid.UUID         { return o.storeID }
func (o *Order) CartID() *uuid.UUID         { return o.cartID }
func (o *Order) Number() string             { return o.number }
func (o *Order) Status() Status             { return o.status }
func (o *Order) CustomerEmail() string      { return o.customerEmail }
func (o *Order) ShipTo() *Address           { return o.shipTo }
func (o *Order) Amounts() Amounts           { return o.amounts }
func (o *Order) DiscountID() *uuid.UUID     { return o.discountID }
func (o *Order) DiscountCode() *string      { return o.discountCode }
func (o *Order) CheckoutSessionID() *string { return o.checkoutSessionID }
func (o *Order) PaymentIntentID() *string   { return o.paymentIntentID }
func (o *Order) RefundedCents() int64       { return o.refundedCents }
func (o *Order) TrackingNumber() *string    { return o.trackingNumber }
func (o *Order) Items() []Item              { return o.items }
func (o *Order) CreatedAt() time.Time       { return o.createdAt }
func (o *Order) UpdatedAt() time.Time       { return o.updatedAt }
