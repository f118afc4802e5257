package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Reason tags an append-only log entry. Reservations are implicit in the update itself and are not logged.
type Reason string

const (
	ReasonRelease    Reason = "release"
	ReasonSale       Reason = "sale"
	ReasonAdjustment Reason = "adjustment"
)

func (r Reason) Valid() bool {
	switch r {
	case ReasonRelease, ReasonSale, ReasonAdjustment:
		return true
	default:
		return false
	}
}

type LogEntry struct {
	ID        uuid.UUID
	StoreID   uuid.UUID
	SKU       string
	Delta     int64
	Reason    Reason
	CartID    *uuid.UUID
	Note      string
	CreatedAt time.Time
}

// Adjustment is an operator correction or restock of on_hand.
type Adjustment struct {
	StoreID uuid.UUID
	SKU     string
	Delta   int64
	Note    string
}

func NewAdjustment(storeID uuid.UUID, sku string, delta int64, note string) (Adjustment, error) {
	sku = NormalizeSKU(sku)
	if sku == "" {
		return Adjustment{}, ErrInvalidSKU
	}
	if delta == 0 {
		return Adjustment{}, ErrZeroAdjustment
	}
	return Adjustment{StoreID: storeID, SKU: sku, Delta: delta, Note: note}, nil
}

// Apply returns the level after the adjustment, or ErrBelowReserved.
func (a Adjustment) Apply(l Level, now time.Time) (Level, error) {
	next := l.OnHand + a.Delta
	if next < l.Reserved || next < 0 {
		return l, ErrBelowReserved
	}
	l.OnHand = next
	l.UpdatedAt = now
	return l, nil
}
