package inventory

import (
	"strings"
	"time"

	"github.com/Thegreatsura/merchant/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrInvalidSKU      = errs.InvalidRequest("sku is required")
	ErrInvalidQuantity = errs.InvalidRequest("quantity must be positive")
	ErrZeroAdjustment  = errs.InvalidRequest("adjustment delta must be non-zero")
	ErrBelowReserved   = errs.Conflict("adjustment would drop on hand below reserved")
)

// Level is the per-(store, sku) counter pair. 0 <= Reserved <= OnHand holds after every mutation.
type Level struct {
	StoreID   uuid.UUID
	SKU       string
	OnHand    int64
	Reserved  int64
	UpdatedAt time.Time
}

func (l Level) Available() int64 {
	return l.OnHand - l.Reserved
}

func (l Level) CanReserve(qty int64) bool {
	return qty > 0 && l.Available() >= qty
}

// Hold is the reserved quantity attributable to one cart for one sku.
type Hold struct {
	CartID   uuid.UUID
	StoreID  uuid.UUID
	SKU      string
	Quantity int64
}

func NewHold(storeID, cartID uuid.UUID, sku string, qty int64) (Hold, error) {
	sku = NormalizeSKU(sku)
	if sku == "" {
		return Hold{}, ErrInvalidSKU
	}
	if qty <= 0 {
		return Hold{}, ErrInvalidQuantity
	}
	return Hold{CartID: cartID, StoreID: storeID, SKU: sku, Quantity: qty}, nil
}

func NormalizeSKU(sku string) string {
	return strings.TrimSpace(sku)
}
