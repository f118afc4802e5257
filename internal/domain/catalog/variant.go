package catalog

import "github.com/google/uuid"

type VariantStatus string

const (
	VariantActive   VariantStatus = "active"
	VariantArchived VariantStatus = "archived"
)

// Variant is the sellable unit a cart line points at.
type Variant struct {
	StoreID    uuid.UUID
	SKU        string
	Title      string
	PriceCents int64
	Status     VariantStatus
}

func (v Variant) IsActive() bool {
	return v.Status == VariantActive
}
