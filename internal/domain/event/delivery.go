package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const OrderCreated = "order.created"

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)

const baseBackoff = time.Minute

type Subscription struct {
	ID      uuid.UUID
	StoreID uuid.UUID
	URL     string
	Secret  string
	Active  bool
}

// Delivery is an outbox row: one event for one subscriber.
type Delivery struct {
	ID             uuid.UUID
	SubscriptionID uuid.UUID
	StoreID        uuid.UUID
	EventType      string
	Payload        []byte
	Status         DeliveryStatus
	Attempts       int
	LastError      *string
	NextAttemptAt  time.Time
	DeliveredAt    *time.Time
	CreatedAt      time.Time
}

func NewDelivery(sub Subscription, eventType string, payload []byte, now time.Time) Delivery {
	return Delivery{
		ID:             uuid.New(),
		SubscriptionID: sub.ID,
		StoreID:        sub.StoreID,
		EventType:      eventType,
		Payload:        payload,
		Status:         DeliveryPending,
		NextAttemptAt:  now,
		CreatedAt:      now,
	}
}

func (d *Delivery) RecordSuccess(now time.Time) {
	d.Attempts++
	d.Status = DeliveryDelivered
	d.LastError = nil
	d.DeliveredAt = &now
}

// RecordFailure schedules the next attempt at 1m * 2^(attempts-1).
func (d *Delivery) RecordFailure(cause error, now time.Time) {
	d.Attempts++
	d.Status = DeliveryFailed
	msg := cause.Error()
	d.LastError = &msg
	shift := min(d.Attempts-1, 12)
	d.NextAttemptAt = now.Add(baseBackoff << shift)
}

func (d *Delivery) Exhausted(maxAttempts int) bool {
	return d.Attempts >= maxAttempts
}

// Target carries what the dispatcher needs to post a delivery.
type Target struct {
	Delivery Delivery
	URL      string
	Secret   string
}

type OrderItemPayload struct {
	SKU            string `json:"sku"`
	Title          string `json:"title"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// OrderCreatedPayload is the body posted to subscribers and published to the stream.
type OrderCreatedPayload struct {
	Event         string             `json:"event"`
	OrderID       uuid.UUID          `json:"order_id"`
	StoreID       uuid.UUID          `json:"store_id"`
	Number        string             `json:"number"`
	CustomerEmail string             `json:"customer_email"`
	TotalCents    int64              `json:"total_cents"`
	DiscountCents int64              `json:"discount_cents"`
	Currency      string             `json:"currency"`
	Items         []OrderItemPayload `json:"items"`
	CreatedAt     time.Time          `json:"created_at"`
}

func (p OrderCreatedPayload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}
