//go:build unit || e2e

package builder

import (
	"github.com/Thegreatsura/merchant/internal/domain/catalog"
	"github.com/Thegreatsura/merchant/internal/domain/store"

	"github.com/google/uuid"
)

type StoreBuilder struct {
	ID            uuid.UUID
	Name          string
	Currency      string
	WebhookSecret *string
	SuccessURL    *string
	CancelURL     *string
}

func NewStoreBuilder() *StoreBuilder {
	secret := "whsec_test_secret"
	return &StoreBuilder{
		ID:            uuid.New(),
		Name:          "Test Store",
		Currency:      "usd",
		WebhookSecret: &secret,
	}
}

func (b *StoreBuilder) With(mutate func(*StoreBuilder)) *StoreBuilder {
	mutate(b)
	return b
}

func (b *StoreBuilder) BuildDomain() store.Store {
	return store.Store{
		ID:            b.ID,
		Name:          b.Name,
		Currency:      b.Currency,
		WebhookSecret: b.WebhookSecret,
		SuccessURL:    b.SuccessURL,
		CancelURL:     b.CancelURL,
	}
}

type VariantBuilder struct {
	StoreID    uuid.UUID
	SKU        string
	Title      string
	PriceCents int64
	Status     catalog.VariantStatus
}

func NewVariantBuilder(storeID uuid.UUID, sku string) *VariantBuilder {
	return &VariantBuilder{
		StoreID:    storeID,
		SKU:        sku,
		Title:      "Variant " + sku,
		PriceCents: 1000,
		Status:     catalog.VariantActive,
	}
}

func (b *VariantBuilder) With(mutate func(*VariantBuilder)) *VariantBuilder {
	mutate(b)
	return b
}

func (b *VariantBuilder) BuildDomain() catalog.Variant {
	return catalog.Variant{
		StoreID:    b.StoreID,
		SKU:        b.SKU,
		Title:      b.Title,
		PriceCents: b.PriceCents,
		Status:     b.Status,
	}
}
