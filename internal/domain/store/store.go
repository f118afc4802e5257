package store

import (
	"strings"

	"github.com/google/uuid"
)

// Store is a tenant. Every cart, variant, discount and order belongs to exactly one.
type Store struct {
	ID            uuid.UUID
	Name          string
	Currency      string
	WebhookSecret *string
	SuccessURL    *string
	CancelURL     *string
}

func (s Store) HasWebhookSecret() bool {
	return s.WebhookSecret != nil && *s.WebhookSecret != ""
}

func NormalizeCurrency(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}
