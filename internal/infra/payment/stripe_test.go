//go:build unit

package payment_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/event"
	"github.com/Thegreatsura/merchant/internal/infra/payment"
	"github.com/Thegreatsura/merchant/internal/pkg/config"
	"github.com/Thegreatsura/merchant/internal/pkg/errs"
	"github.com/Thegreatsura/merchant/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80/webhook"
)

const secret = "whsec_test_secret"

const completedPayload = `{
  "id": "evt_1",
  "object": "event",
  "type": "checkout.session.completed",
  "data": {
    "object": {
      "id": "cs_1",
      "object": "checkout.session",
      "payment_intent": "pi_1",
      "customer_details": {"email": "shopper@example.com"},
      "amount_subtotal": 5000,
      "amount_total": 4700,
      "total_details": {"amount_discount": 500, "amount_shipping": 200, "amount_tax": 0},
      "metadata": {"cart_id": "8d0f5f8e-6f76-4c1e-9a51-7d0c0f9b7a11", "store_id": "aa1e7c1b-3a2e-4bb4-9a7e-2d3b4f8e5c21"},
      "shipping_details": {
        "name": "Ada Lovelace",
        "address": {"line1": "1 Main St", "city": "Springfield", "postal_code": "12345", "country": "US"}
      }
    }
  }
}`

func TestStripeGateway_VerifyEvent(t *testing.T) {
	g := payment.NewStripeGateway(config.StripeConfig{SecretKey: "sk_test_dummy"})

	t.Run("valid signature yields session details", func(t *testing.T) {
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload:   []byte(completedPayload),
			Secret:    secret,
			Timestamp: time.Now(),
		})

		ev, err := g.VerifyEvent(signed.Payload, signed.Header, secret)
		require.NoError(t, err)
		assert.Equal(t, "evt_1", ev.ID)
		assert.Equal(t, event.TypeCheckoutCompleted, ev.Type)
		require.NotNil(t, ev.Session)
		assert.Equal(t, "cs_1", ev.Session.ID)
		assert.Equal(t, "pi_1", ev.Session.PaymentIntentID)
		assert.Equal(t, "shopper@example.com", ev.Session.CustomerEmail)
		assert.Equal(t, int64(4700), *ev.Session.AmountTotal)
		assert.Equal(t, int64(500), *ev.Session.AmountDiscount)
		assert.Equal(t, "aa1e7c1b-3a2e-4bb4-9a7e-2d3b4f8e5c21", ev.Session.Metadata[shared.MetadataStoreID])
		require.NotNil(t, ev.Session.ShipTo)
		assert.Equal(t, "Ada Lovelace", ev.Session.ShipTo.Name)
		assert.Equal(t, "US", ev.Session.ShipTo.Country)
		assert.Equal(t, int64(200), *ev.Session.AmountShipping)
	})

	t.Run("wrong secret", func(t *testing.T) {
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload: []byte(completedPayload),
			Secret:  "whsec_other",
		})
		_, err := g.VerifyEvent(signed.Payload, signed.Header, secret)
		assert.Error(t, err)
	})

	t.Run("tampered body", func(t *testing.T) {
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload: []byte(completedPayload),
			Secret:  secret,
		})
		tampered := append([]byte{}, signed.Payload...)
		tampered[len(tampered)-2] = ' '
		_, err := g.VerifyEvent(tampered, signed.Header, secret)
		assert.Error(t, err)
	})
}

func TestStripeGateway_ParseUnverified(t *testing.T) {
	g := payment.NewStripeGateway(config.StripeConfig{SecretKey: "sk_test_dummy"})

	t.Run("reads metadata without a signature", func(t *testing.T) {
		ev, err := g.ParseUnverified([]byte(completedPayload))
		require.NoError(t, err)
		require.NotNil(t, ev.Session)
		assert.Equal(t, "8d0f5f8e-6f76-4c1e-9a51-7d0c0f9b7a11", ev.Session.Metadata[shared.MetadataCartID])
	})

	t.Run("expanded payment intent object", func(t *testing.T) {
		ev, err := g.ParseUnverified([]byte(`{"id":"evt_2","type":"checkout.session.expired","data":{"object":{"id":"cs_2","payment_intent":{"id":"pi_2"}}}}`))
		require.NoError(t, err)
		assert.Equal(t, "pi_2", ev.Session.PaymentIntentID)
	})

	t.Run("customer address when no shipping was collected", func(t *testing.T) {
		ev, err := g.ParseUnverified([]byte(`{"id":"evt_6","type":"checkout.session.completed","data":{"object":{"id":"cs_6","customer_details":{"name":"Grace","email":"g@example.com","address":{"line1":"2 Side St","country":"GB"}}}}}`))
		require.NoError(t, err)
		require.NotNil(t, ev.Session.ShipTo)
		assert.Equal(t, "Grace", ev.Session.ShipTo.Name)
		assert.Equal(t, "GB", ev.Session.ShipTo.Country)
		assert.Equal(t, "g@example.com", ev.Session.CustomerEmail)
	})

	t.Run("missing amounts stay unset", func(t *testing.T) {
		ev, err := g.ParseUnverified([]byte(`{"id":"evt_7","type":"checkout.session.expired","data":{"object":{"id":"cs_7"}}}`))
		require.NoError(t, err)
		assert.Nil(t, ev.Session.AmountTotal)
		assert.Nil(t, ev.Session.AmountDiscount)
		assert.Nil(t, ev.Session.ShipTo)
	})

	t.Run("ignored types skip session decoding", func(t *testing.T) {
		ev, err := g.ParseUnverified([]byte(`{"id":"evt_3","type":"charge.refunded","data":{"object":{"id":"ch_3","object":"charge"}}}`))
		require.NoError(t, err)
		assert.Nil(t, ev.Session)
	})

	malformed := map[string]string{
		"not json":       `{`,
		"missing id":     `{"type":"checkout.session.completed"}`,
		"missing type":   `{"id":"evt_4"}`,
		"session string": `{"id":"evt_5","type":"checkout.session.completed","data":{"object":"cs_5"}}`,
	}
	for name, body := range malformed {
		t.Run(name, func(t *testing.T) {
			_, err := g.ParseUnverified([]byte(body))
			require.Error(t, err)
			assert.ErrorIs(t, err, payment.ErrMalformedEvent)
			assert.True(t, errs.Is(err, payment.ErrMalformedEvent))
		})
	}
}

type recordedRequest struct {
	path           string
	form           url.Values
	idempotencyKey string
}

func fakeStripe(t *testing.T, reply string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var got []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		got = append(got, recordedRequest{path: r.URL.Path, form: form, idempotencyKey: r.Header.Get("Idempotency-Key")})
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestStripeGateway_Refund(t *testing.T) {
	srv, got := fakeStripe(t, `{"id":"re_1","object":"refund"}`)
	g := payment.NewStripeGateway(config.StripeConfig{SecretKey: "sk_test_dummy", APIBase: srv.URL})

	id, err := g.Refund(context.Background(), "pi_1", 1200)
	require.NoError(t, err)
	assert.Equal(t, "re_1", id)

	require.Len(t, *got, 1)
	req := (*got)[0]
	assert.Equal(t, "/v1/refunds", req.path)
	assert.Equal(t, "pi_1", req.form.Get("payment_intent"))
	assert.Equal(t, "1200", req.form.Get("amount"))
	assert.Equal(t, "refund-pi_1-1200", req.idempotencyKey)
}

func TestStripeGateway_ExpireCheckoutSession(t *testing.T) {
	srv, got := fakeStripe(t, `{"id":"cs_1","object":"checkout.session","status":"expired"}`)
	g := payment.NewStripeGateway(config.StripeConfig{SecretKey: "sk_test_dummy", APIBase: srv.URL})

	require.NoError(t, g.ExpireCheckoutSession(context.Background(), "cs_1"))
	require.Len(t, *got, 1)
	assert.Equal(t, "/v1/checkout/sessions/cs_1/expire", (*got)[0].path)
}

func TestStripeGateway_CreateCheckoutSession(t *testing.T) {
	srv, got := fakeStripe(t, `{"id":"cs_1","object":"checkout.session","url":"https://checkout.stripe.test/cs_1"}`)
	g := payment.NewStripeGateway(config.StripeConfig{SecretKey: "sk_test_dummy", APIBase: srv.URL})

	cartID, storeID, discountID := uuid.New(), uuid.New(), uuid.New()
	session, err := g.CreateCheckoutSession(context.Background(), shared.CheckoutSessionRequest{
		CartID:        cartID,
		StoreID:       storeID,
		DiscountID:    &discountID,
		CustomerEmail: "shopper@example.com",
		Currency:      "usd",
		LineItems:     []shared.LineItem{{SKU: "A", Title: "Tee", Quantity: 2, UnitPriceCents: 1500}},
		CouponID:      "coupon_1",
		ShippingCents: 500,
		SuccessURL:    "https://shop.test/ok",
		CancelURL:     "https://shop.test/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.ID)
	assert.Equal(t, "https://checkout.stripe.test/cs_1", session.URL)

	require.Len(t, *got, 1)
	form := (*got)[0].form
	assert.Equal(t, "/v1/checkout/sessions", (*got)[0].path)
	assert.Equal(t, "payment", form.Get("mode"))
	assert.Equal(t, cartID.String(), form.Get("client_reference_id"))
	assert.Equal(t, cartID.String(), form.Get("metadata[cart_id]"))
	assert.Equal(t, storeID.String(), form.Get("metadata[store_id]"))
	assert.Equal(t, discountID.String(), form.Get("metadata[discount_id]"))
	assert.Equal(t, storeID.String(), form.Get("payment_intent_data[metadata][store_id]"))
	assert.Equal(t, "1500", form.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "A", form.Get("line_items[0][price_data][product_data][metadata][sku]"))
	assert.Equal(t, "coupon_1", form.Get("discounts[0][coupon]"))
	assert.Equal(t, "500", form.Get("shipping_options[0][shipping_rate_data][fixed_amount][amount]"))
}

func TestStripeGateway_CreateCoupon(t *testing.T) {
	srv, got := fakeStripe(t, `{"id":"coupon_1","object":"coupon"}`)
	g := payment.NewStripeGateway(config.StripeConfig{SecretKey: "sk_test_dummy", APIBase: srv.URL})

	id, err := g.CreateCoupon(context.Background(), shared.CouponRequest{
		Name:           "  A VERY LONG DISCOUNT CODE NAME THAT KEEPS GOING  ",
		AmountOffCents: 700,
		Currency:       "usd",
	})
	require.NoError(t, err)
	assert.Equal(t, "coupon_1", id)

	form := (*got)[0].form
	assert.Equal(t, "700", form.Get("amount_off"))
	assert.Equal(t, "once", form.Get("duration"))
	assert.Equal(t, "1", form.Get("max_redemptions"))
	assert.Len(t, form.Get("name"), 40)
}
