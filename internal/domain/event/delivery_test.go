//go:build unit

package event_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelivery_Backoff(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	d := event.NewDelivery(event.Subscription{ID: uuid.New(), StoreID: uuid.New()}, event.OrderCreated, []byte(`{}`), now)
	require.Equal(t, event.DeliveryPending, d.Status)

	want := []time.Duration{time.Minute, 2 * time.Minute, 4 * time.Minute, 8 * time.Minute}
	for i, w := range want {
		d.RecordFailure(errors.New("503"), now)
		assert.Equal(t, i+1, d.Attempts)
		assert.Equal(t, now.Add(w), d.NextAttemptAt)
		assert.Equal(t, event.DeliveryFailed, d.Status)
	}
	assert.True(t, d.Exhausted(4))
	assert.False(t, d.Exhausted(5))

	d.RecordSuccess(now)
	assert.Equal(t, event.DeliveryDelivered, d.Status)
	assert.Nil(t, d.LastError)
	require.NotNil(t, d.DeliveredAt)
}

func TestType_Kind(t *testing.T) {
	assert.Equal(t, event.KindCheckoutCompleted, event.TypeCheckoutCompleted.Kind())
	assert.Equal(t, event.KindCheckoutExpired, event.TypeCheckoutExpired.Kind())
	assert.Equal(t, event.KindIgnored, event.Type("charge.refunded").Kind())
}
