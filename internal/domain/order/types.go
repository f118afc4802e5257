package order

import (
	"fmt"

	"github.com/Thegreatsura/merchant/internal/pkg/errs"
)

type Status string

const (
	StatusPaid      Status = "paid"
	StatusFulfilled Status = "fulfilled"
	StatusShipped   Status = "shipped"
	StatusRefunded  Status = "refunded"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPaid, StatusFulfilled, StatusShipped, StatusRefunded:
		return Status(s), nil
	default:
		return "", errs.InvalidRequest("unknown order status " + s)
	}
}

// CanFulfillTo lists the operator fulfillment transitions.
func (s Status) CanFulfillTo(next Status) bool {
	switch s {
	case StatusPaid:
		return next == StatusFulfilled
	case StatusFulfilled:
		return next == StatusShipped
	case StatusShipped, StatusRefunded:
		return false
	default:
		return false
	}
}

// FormatNumber renders a per-store sequence as ORD-0001. Sequences past 9999 keep growing in width.
func FormatNumber(seq int64) string {
	return fmt.Sprintf("ORD-%04d", seq)
}

type Address struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

type Amounts struct {
	SubtotalCents int64
	DiscountCents int64
	ShippingCents int64
	TaxCents      int64
	TotalCents    int64
}

type Item struct {
	SKU            string
	Title          string
	Quantity       int64
	UnitPriceCents int64
}
