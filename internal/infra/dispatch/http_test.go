//go:build unit

package dispatch_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/event"
	"github.com/Thegreatsura/merchant/internal/infra/dispatch"
	"github.com/Thegreatsura/merchant/internal/pkg/clock"
	"github.com/Thegreatsura/merchant/internal/pkg/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func target(url string) event.Target {
	sub := event.Subscription{ID: uuid.New(), StoreID: uuid.New(), URL: url, Secret: "sub_secret", Active: true}
	return event.Target{
		Delivery: event.NewDelivery(sub, event.OrderCreated, []byte(`{"event":"order.created"}`), time.Now()),
		URL:      url,
		Secret:   sub.Secret,
	}
}

func TestHTTPDispatcher_Deliver(t *testing.T) {
	cfg := config.DispatchConfig{Timeout: time.Second, RatePerSec: 0}

	t.Run("posts signed payload", func(t *testing.T) {
		var gotHeader http.Header
		var gotBody []byte
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotHeader = r.Header.Clone()
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		tg := target(srv.URL)
		err := dispatch.NewHTTPDispatcher(cfg).Deliver(context.Background(), tg)
		require.NoError(t, err)

		assert.Equal(t, tg.Delivery.Payload, gotBody)
		assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
		assert.Equal(t, event.OrderCreated, gotHeader.Get(dispatch.HeaderEvent))
		assert.Equal(t, tg.Delivery.ID.String(), gotHeader.Get(dispatch.HeaderDelivery))
		assert.Equal(t, "sha256="+dispatch.Sign("sub_secret", gotBody), gotHeader.Get(dispatch.HeaderSignature))
	})

	t.Run("non-2xx is a failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		err := dispatch.NewHTTPDispatcher(cfg).Deliver(context.Background(), target(srv.URL))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("slow subscriber times out", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		short := config.DispatchConfig{Timeout: 50 * time.Millisecond}
		err := dispatch.NewHTTPDispatcher(short).Deliver(context.Background(), target(srv.URL))
		assert.Error(t, err)
	})

	t.Run("unreachable subscriber", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		err := dispatch.NewHTTPDispatcher(cfg).Deliver(context.Background(), target(url))
		assert.Error(t, err)
	})
}

func TestSign(t *testing.T) {
	// echo -n 'hello' | openssl dgst -sha256 -hmac key
	assert.Equal(t, "9307b3b915efb5171ff14d8cb55fbcc798c6c0ef1456d66ded1a6aa723a58b7b", dispatch.Sign("key", []byte("hello")))
}

func TestKafkaStream_DisabledWithoutBrokers(t *testing.T) {
	s := dispatch.NewKafkaStream(config.KafkaConfig{Brokers: " , ", OrderTopic: "merchant.orders"}, clock.NewRealClock())
	assert.False(t, s.Enabled())
	assert.NoError(t, s.PublishOrderCreated(context.Background(), event.OrderCreatedPayload{Event: event.OrderCreated}))
	assert.NoError(t, s.Close())
}
