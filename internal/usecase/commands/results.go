package commands

import (
	"github.com/Thegreatsura/merchant/internal/domain/cart"
	"github.com/Thegreatsura/merchant/internal/domain/order"

	"github.com/google/uuid"
)

type CartResult struct {
	Cart   cart.Snapshot
	Totals cart.Totals
}

type CheckoutResult struct {
	CartID     uuid.UUID
	SessionID  string
	SessionURL string
	Totals     cart.Totals
}

type WebhookResult struct {
	EventID   string
	Duplicate bool
	OrderID   *uuid.UUID
	Released  int64
}

type SweepResult struct {
	Scanned       int
	Expired       int
	UnitsReleased int64
	Failed        int
}

type DeliveryResult struct {
	Attempted int
	Delivered int
	Failed    int
}

type OrderResult struct {
	Order    order.Snapshot
	RefundID string
}
