package cart

import (
	"net/mail"
	"strings"
	"time"

	"github.com/Thegreatsura/merchant/internal/pkg/errs"

	"github.com/google/uuid"
)

const DefaultTTL = 30 * time.Minute

var (
	ErrNotOpen = errs.Conflict("cart is not open")
	ErrExpired = errs.Conflict("cart has expired")
	ErrEmpty   = errs.InvalidRequest("cart has no items")
)

type Cart struct {
	id                  uuid.UUID
	storeID             uuid.UUID
	customerEmail       string
	currency            string
	status              Status
	expiresAt           time.Time
	discountID          *uuid.UUID
	discountCode        *string
	discountAmountCents int64
	checkoutSessionID   *string
	items               []Item
	version             int64
	createdAt           time.Time
	updatedAt           time.Time
}

func New(storeID uuid.UUID, email, currency string, now time.Time, ttl time.Duration) (*Cart, error) {
	email = strings.TrimSpace(email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, ErrInvalidEmail
		}
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return nil, ErrInvalidCurrency
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cart{
		id:            uuid.New(),
		storeID:       storeID,
		customerEmail: email,
		currency:      currency,
		status:        StatusOpen,
		expiresAt:     now.Add(ttl),
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

type Snapshot struct {
	ID                  uuid.UUID
	StoreID             uuid.UUID
	CustomerEmail       string
	Currency            string
	Status              Status
	ExpiresAt           time.Time
	DiscountID          *uuid.UUID
	DiscountCode        *string
	DiscountAmountCents int64
	CheckoutSessionID   *string
	Items               []Item
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func Reconstruct(s Snapshot) *Cart {
	return &Cart{
		id:                  s.ID,
		storeID:             s.StoreID,
		customerEmail:       s.CustomerEmail,
		currency:            s.Currency,
		status:              s.Status,
		expiresAt:           s.ExpiresAt,
		discountID:          s.DiscountID,
		discountCode:        s.DiscountCode,
		discountAmountCents: s.DiscountAmountCents,
		checkoutSessionID:   s.CheckoutSessionID,
		items:               s.Items,
		version:             s.Version,
		createdAt:           s.CreatedAt,
		updatedAt:           s.UpdatedAt,
	}
}

func (c *Cart) Snapshot() Snapshot {
	items := make([]Item, len(c.items))
	copy(items, c.items)
	return Snapshot{
		ID:                  c.id,
		StoreID:             c.storeID,
		CustomerEmail:       c.customerEmail,
		Currency:            c.currency,
		Status:              c.status,
		ExpiresAt:           c.expiresAt,
		DiscountID:          c.discountID,
		DiscountCode:        c.discountCode,
		DiscountAmountCents: c.discountAmountCents,
		CheckoutSessionID:   c.checkoutSessionID,
		Items:               items,
		Version:             c.version,
		CreatedAt:           c.createdAt,
		UpdatedAt:           c.updatedAt,
	}
}

// IsExpiredAt is true once expires_at has passed, whatever the stored status.
func (c *Cart) IsExpiredAt(now time.Time) bool {
	return now.After(c.expiresAt)
}

// EnsureMutable guards every mutation. An open cart past its expiry is no longer mutable.
func (c *Cart) EnsureMutable(now time.Time) error {
	if c.status != StatusOpen {
		return errs.Wrapf(ErrNotOpen, "status %s", c.status)
	}
	if c.IsExpiredAt(now) {
		return ErrExpired
	}
	return nil
}

func (c *Cart) ReplaceItems(items []Item, now time.Time) error {
	if err := c.EnsureMutable(now); err != nil {
		return err
	}
	c.items = SortItems(items)
	c.touch(now)
	return nil
}

func (c *Cart) SubtotalCents() int64 {
	var sum int64
	for _, it := range c.items {
		sum += it.LineTotalCents()
	}
	return sum
}

func (c *Cart) AttachDiscount(id uuid.UUID, code string, amountCents int64, now time.Time) {
	c.discountID = &id
	c.discountCode = &code
	c.discountAmountCents = amountCents
	c.touch(now)
}

func (c *Cart) DetachDiscount(now time.Time) {
	c.discountID = nil
	c.discountCode = nil
	c.discountAmountCents = 0
	c.touch(now)
}

// touch marks a change to what the cart would be charged for.
func (c *Cart) touch(now time.Time) {
	c.version++
	c.updatedAt = now
}

func (c *Cart) HasDiscount() bool {
	return c.discountID != nil
}

func (c *Cart) Totals(shippingCents int64) Totals {
	if len(c.items) == 0 {
		shippingCents = 0
	}
	return NewTotals(c.SubtotalCents(), c.discountAmountCents, shippingCents, 0)
}

// MarkCheckedOut records the processor session. Version is left as is: persistence
// accepts the transition only while the stored version still matches the priced content.
func (c *Cart) MarkCheckedOut(sessionID string, discountAmountCents int64, now time.Time) error {
	if c.status != StatusOpen {
		return errs.Wrapf(ErrNotOpen, "status %s", c.status)
	}
	c.status = StatusCheckedOut
	c.checkoutSessionID = &sessionID
	c.discountAmountCents = discountAmountCents
	c.updatedAt = now
	return nil
}

// MarkExpired is the sweeper transition: only open carts past expires_at.
func (c *Cart) MarkExpired(now time.Time) error {
	if c.status != StatusOpen {
		return errs.Wrapf(ErrNotOpen, "status %s", c.status)
	}
	if !c.IsExpiredAt(now) {
		return errs.Conflict("cart has not expired yet")
	}
	c.status = StatusExpired
	c.updatedAt = now
	return nil
}

func (c *Cart) ID() uuid.UUID              { return c.id }
func (c *Cart) StoreID() uuid.UUID         { return c.storeID }
func (c *Cart) CustomerEmail() string      { return c.customerEmail }
func (c *Cart) Currency() string           { return c.currency }
func (c *Cart) Status() Status             { return c.status }
func (c *Cart) ExpiresAt() time.Time       { return c.expiresAt }
func (c *Cart) DiscountID() *uuid.UUID     { return c.discountID }
func (c *Cart) DiscountCode() *string      { return c.discountCode }
func (c *Cart) DiscountAmountCents() int64 { return c.discountAmountCents }
func (c *Cart) CheckoutSessionID() *string { return c.checkoutSessionID }
func (c *Cart) Items() []Item              { return c.items }
func (c *Cart) Version() int64             { return c.version }
func (c *Cart) CreatedAt() time.Time       { return c.createdAt }
func (c *Cart) UpdatedAt() time.Time       { return c.updatedAt }
