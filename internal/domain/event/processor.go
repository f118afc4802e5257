package event

import (
	"time"

	"github.com/google/uuid"
)

// Type is the payment processor event type. Only the checkout session types drive behavior.
type Type string

const (
	TypeCheckoutCompleted Type = "checkout.session.completed"
	TypeCheckoutExpired   Type = "checkout.session.expired"
)

// Kind collapses processor types into the closed set the materializer branches on.
type Kind int

const (
	KindIgnored Kind = iota
	KindCheckoutCompleted
	KindCheckoutExpired
)

func (t Type) Kind() Kind {
	switch t {
	case TypeCheckoutCompleted:
		return KindCheckoutCompleted
	case TypeCheckoutExpired:
		return KindCheckoutExpired
	default:
		return KindIgnored
	}
}

// ProcessorEvent is the write-once dedup record of a processed processor event id.
type ProcessorEvent struct {
	ID          string
	StoreID     uuid.UUID
	Type        Type
	Payload     []byte
	ProcessedAt time.Time
}
