package discount

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Usage is appended once per order that consumed a discount.
type Usage struct {
	ID            uuid.UUID
	DiscountID    uuid.UUID
	OrderID       uuid.UUID
	CustomerEmail string
	AmountCents   int64
	CreatedAt     time.Time
}

func NewUsage(discountID, orderID uuid.UUID, email string, amountCents int64, now time.Time) Usage {
	return Usage{
		ID:            uuid.New(),
		DiscountID:    discountID,
		OrderID:       orderID,
		CustomerEmail: NormalizeEmail(email),
		AmountCents:   amountCents,
		CreatedAt:     now,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
