package cart

import (
	"sort"
	"strings"

	"github.com/Thegreatsura/merchant/internal/pkg/errs"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusCheckedOut Status = "checked_out"
	StatusExpired    Status = "expired"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOpen, StatusCheckedOut, StatusExpired:
		return Status(s), nil
	default:
		return "", errs.InvalidRequest("unknown cart status " + s)
	}
}

var (
	ErrEmptyLines      = errs.InvalidRequest("at least one item is required")
	ErrDuplicateSKU    = errs.InvalidRequest("duplicate sku in items")
	ErrLineQuantity    = errs.InvalidRequest("item quantity must be positive")
	ErrLineSKU         = errs.InvalidRequest("item sku is required")
	ErrInvalidEmail    = errs.InvalidRequest("customer email is invalid")
	ErrInvalidCurrency = errs.InvalidRequest("currency must be a 3-letter code")
)

// Line is a requested (sku, quantity) pair before it is validated against the catalog.
type Line struct {
	SKU      string
	Quantity int64
}

// ValidateLines checks shape only: non-empty skus, positive quantities, no duplicates.
func ValidateLines(lines []Line) ([]Line, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyLines
	}
	seen := make(map[string]struct{}, len(lines))
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		sku := strings.TrimSpace(l.SKU)
		if sku == "" {
			return nil, ErrLineSKU
		}
		if l.Quantity <= 0 {
			return nil, errs.Wrapf(ErrLineQuantity, "sku %s", sku)
		}
		if _, dup := seen[sku]; dup {
			return nil, errs.Wrapf(ErrDuplicateSKU, "sku %s", sku)
		}
		seen[sku] = struct{}{}
		out = append(out, Line{SKU: sku, Quantity: l.Quantity})
	}
	return out, nil
}

// Item snapshots title and unit price at the time it was added.
type Item struct {
	SKU            string
	Title          string
	Quantity       int64
	UnitPriceCents int64
}

func (i Item) LineTotalCents() int64 {
	return i.Quantity * i.UnitPriceCents
}

func SortItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	sort.Slice(out, func(a, b int) bool { return out[a].SKU < out[b].SKU })
	return out
}

type Totals struct {
	SubtotalCents int64
	DiscountCents int64
	ShippingCents int64
	TaxCents      int64
	TotalCents    int64
}

func NewTotals(subtotal, discount, shipping, tax int64) Totals {
	total := subtotal - discount + shipping + tax
	if total < 0 {
		total = 0
	}
	return Totals{
		SubtotalCents: subtotal,
		DiscountCents: discount,
		ShippingCents: shipping,
		TaxCents:      tax,
		TotalCents:    total,
	}
}
