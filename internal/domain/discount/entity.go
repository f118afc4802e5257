package discount

import (
	"strings"
	"time"

	"github.com/Thegreatsura/merchant/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrEmptyCode       = errs.InvalidRequest("discount code is required")
	ErrNegativeValue   = errs.InvalidRequest("discount value cannot be negative")
	ErrPercentOverflow = errs.InvalidRequest("percentage discount must be between 0 and 100")
)

type Params struct {
	ID                    uuid.UUID
	StoreID               uuid.UUID
	Code                  string
	Type                  Type
	Value                 int64
	Status                Status
	MinPurchaseCents      int64
	MaxDiscountCents      *int64
	StartsAt              *time.Time
	ExpiresAt             *time.Time
	UsageLimit            *int64
	UsageLimitPerCustomer *int64
	UsageCount            int64
}

type Discount struct {
	id                    uuid.UUID
	storeID               uuid.UUID
	code                  string
	typ                   Type
	value                 int64
	status                Status
	minPurchaseCents      int64
	maxDiscountCents      *int64
	startsAt              *time.Time
	expiresAt             *time.Time
	usageLimit            *int64
	usageLimitPerCustomer *int64
	usageCount            int64
}

func New(p Params) (*Discount, error) {
	code := NormalizeCode(p.Code)
	if code == "" {
		return nil, ErrEmptyCode
	}
	if p.Value < 0 {
		return nil, ErrNegativeValue
	}
	if p.Type == TypePercentage && p.Value > 100 {
		return nil, ErrPercentOverflow
	}
	if _, err := ParseType(string(p.Type)); err != nil {
		return nil, err
	}
	if _, err := ParseStatus(string(p.Status)); err != nil {
		return nil, err
	}
	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Discount{
		id:                    id,
		storeID:               p.StoreID,
		code:                  code,
		typ:                   p.Type,
		value:                 p.Value,
		status:                p.Status,
		minPurchaseCents:      p.MinPurchaseCents,
		maxDiscountCents:      p.MaxDiscountCents,
		startsAt:              p.StartsAt,
		expiresAt:             p.ExpiresAt,
		usageLimit:            p.UsageLimit,
		usageLimitPerCustomer: p.UsageLimitPerCustomer,
		usageCount:            p.UsageCount,
	}, nil
}

// NormalizeCode is the canonical form used for storage and lookup.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Calculate returns the discount in cents for subtotalCents. It never exceeds the subtotal.
func (d *Discount) Calculate(subtotalCents int64) int64 {
	if subtotalCents <= 0 || d.value <= 0 {
		return 0
	}
	switch d.typ {
	case TypePercentage:
		amount := subtotalCents * d.value / 100
		if d.maxDiscountCents != nil && amount > *d.maxDiscountCents {
			amount = *d.maxDiscountCents
		}
		return min(amount, subtotalCents)
	case TypeFixedAmount:
		return min(d.value, subtotalCents)
	default:
		return 0
	}
}

// Validate checks eligibility at now for a cart worth subtotalCents whose customer
// has already used this discount customerUses times.
func (d *Discount) Validate(subtotalCents, customerUses int64, now time.Time) error {
	if d.status != StatusActive {
		return errs.Ineligible(errs.ReasonInactive, "discount %s is %s", d.code, d.status)
	}
	if d.startsAt != nil && now.Before(*d.startsAt) {
		return errs.Ineligible(errs.ReasonNotStarted, "discount %s is not active yet", d.code)
	}
	if d.expiresAt != nil && now.After(*d.expiresAt) {
		return errs.Ineligible(errs.ReasonExpired, "discount %s has expired", d.code)
	}
	if subtotalCents < d.minPurchaseCents {
		return errs.Ineligible(errs.ReasonMinimumNotMet, "discount %s requires a minimum purchase of %d cents", d.code, d.minPurchaseCents)
	}
	if d.usageLimit != nil && d.usageCount >= *d.usageLimit {
		return errs.Ineligible(errs.ReasonUsageLimitReached, "discount %s has reached its usage limit", d.code)
	}
	if d.usageLimitPerCustomer != nil && customerUses >= *d.usageLimitPerCustomer {
		return errs.Ineligible(errs.ReasonCustomerLimit, "discount %s has already been used by this customer", d.code)
	}
	return nil
}

// CountableAt reports whether a completed order should count toward usage.
// Limits are enforced by the conditional increment, not here.
func (d *Discount) CountableAt(now time.Time) bool {
	if d.status != StatusActive {
		return false
	}
	if d.startsAt != nil && now.Before(*d.startsAt) {
		return false
	}
	if d.expiresAt != nil && now.After(*d.expiresAt) {
		return false
	}
	return true
}

func (d *Discount) ID() uuid.UUID                 { return d.id }
func (d *Discount) StoreID() uuid.UUID            { return d.storeID }
func (d *Discount) Code() string                  { return d.code }
func (d *Discount) Type() Type                    { return d.typ }
func (d *Discount) Value() int64                  { return d.value }
func (d *Discount) Status() Status                { return d.status }
func (d *Discount) MinPurchaseCents() int64       { return d.minPurchaseCents }
func (d *Discount) MaxDiscountCents() *int64      { return d.maxDiscountCents }
func (d *Discount) StartsAt() *time.Time          { return d.startsAt }
func (d *Discount) ExpiresAt() *time.Time         { return d.expiresAt }
func (d *Discount) UsageLimit() *int64            { return d.usageLimit }
func (d *Discount) UsageLimitPerCustomer() *int64 { return d.usageLimitPerCustomer }
func (d *Discount) UsageCount() int64             { return d.usageCount }
