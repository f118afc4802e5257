package response

import (
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/inventory"
	"github.com/Thegreatsura/merchant/internal/usecase/commands"

	"github.com/google/uuid"
)

type InventoryLevelResponse struct {
	StoreID   uuid.UUID `json:"store_id"`
	SKU       string    `json:"sku"`
	OnHand    int64     `json:"on_hand"`
	Reserved  int64     `json:"reserved"`
	Available int64     `json:"available"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromInventoryLevel(l *inventory.Level) *InventoryLevelResponse {
	return &InventoryLevelResponse{
		StoreID:   l.StoreID,
		SKU:       l.SKU,
		OnHand:    l.OnHand,
		Reserved:  l.Reserved,
		Available: l.Available(),
		UpdatedAt: l.UpdatedAt,
	}
}

type SweepResponse struct {
	Scanned       int   `json:"scanned"`
	Expired       int   `json:"expired"`
	UnitsReleased int64 `json:"units_released"`
	Failed        int   `json:"failed"`
}

func FromSweepResult(r *commands.SweepResult) *SweepResponse {
	return &SweepResponse{
		Scanned:       r.Scanned,
		Expired:       r.Expired,
		UnitsReleased: r.UnitsReleased,
		Failed:        r.Failed,
	}
}

type DeliveryRetryResponse struct {
	Attempted int `json:"attempted"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

func FromDeliveryResult(r *commands.DeliveryResult) *DeliveryRetryResponse {
	return &DeliveryRetryResponse{
		Attempted: r.Attempted,
		Delivered: r.Delivered,
		Failed:    r.Failed,
	}
}

type WebhookResponse struct {
	Received  bool       `json:"received"`
	EventID   string     `json:"event_id"`
	Duplicate bool       `json:"duplicate"`
	OrderID   *uuid.UUID `json:"order_id,omitempty"`
}

func FromWebhookResult(r *commands.WebhookResult) *WebhookResponse {
	return &WebhookResponse{
		Received:  true,
		EventID:   r.EventID,
		Duplicate: r.Duplicate,
		OrderID:   r.OrderID,
	}
}
