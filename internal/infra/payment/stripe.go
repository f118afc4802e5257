package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/Thegreatsura/merchant/internal/domain/event"
	"github.com/Thegreatsura/merchant/internal/domain/order"
	"github.com/Thegreatsura/merchant/internal/pkg/config"
	"github.com/Thegreatsura/merchant/internal/pkg/errs"
	"github.com/Thegreatsura/merchant/internal/usecase/shared"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
	"github.com/stripe/stripe-go/v80/webhook"
)

const couponNameMax = 40

var ErrMalformedEvent = errs.New("malformed processor event")

// StripeGateway talks to Stripe through a per-instance client; stripe.Key is never set globally.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(cfg config.StripeConfig) *StripeGateway {
	api := &client.API{}
	var backends *stripe.Backends
	if cfg.APIBase != "" {
		backendCfg := &stripe.BackendConfig{
			URL:               stripe.String(cfg.APIBase),
			MaxNetworkRetries: stripe.Int64(0),
		}
		backends = &stripe.Backends{
			API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
			Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendCfg),
			Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendCfg),
		}
	}
	api.Init(cfg.SecretKey, backends)
	return &StripeGateway{api: api}
}

var _ shared.PaymentGateway = (*StripeGateway)(nil)

// CreateCoupon makes a single-use amount-off coupon carrying an internal discount into the session.
func (g *StripeGateway) CreateCoupon(ctx context.Context, req shared.CouponRequest) (string, error) {
	params := &stripe.CouponParams{
		AmountOff:      stripe.Int64(req.AmountOffCents),
		Currency:       stripe.String(req.Currency),
		Duration:       stripe.String(string(stripe.CouponDurationOnce)),
		MaxRedemptions: stripe.Int64(1),
	}
	if name := truncate(req.Name, couponNameMax); name != "" {
		params.Name = stripe.String(name)
	}
	params.Context = ctx

	c, err := g.api.Coupons.New(params)
	if err != nil {
		return "", errs.Wrap(err, "stripe coupon")
	}
	return c.ID, nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req shared.CheckoutSessionRequest) (*shared.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.CartID.String()),
		Metadata:          sessionMetadata(req),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: sessionMetadata(req),
		},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for _, it := range req.LineItems {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(it.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(it.UnitPriceCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:     stripe.String(it.Title),
					Metadata: map[string]string{"sku": it.SKU},
				},
			},
		})
	}
	if req.CouponID != "" {
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{{Coupon: stripe.String(req.CouponID)}}
	}
	if req.ShippingCents > 0 {
		params.ShippingOptions = []*stripe.CheckoutSessionShippingOptionParams{{
			ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
				DisplayName: stripe.String("Standard shipping"),
				Type:        stripe.String("fixed_amount"),
				FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
					Amount:   stripe.Int64(req.ShippingCents),
					Currency: stripe.String(req.Currency),
				},
			},
		}}
	}
	params.Context = ctx

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, errs.Wrap(err, "stripe checkout session")
	}
	return &shared.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// Refund is idempotent per payment intent and amount, so a retried transaction never refunds twice.
func (g *StripeGateway) Refund(ctx context.Context, paymentIntentID string, amountCents int64) (string, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
		Amount:        stripe.Int64(amountCents),
	}
	params.SetIdempotencyKey("refund-" + paymentIntentID + "-" + strconv.FormatInt(amountCents, 10))
	params.Context = ctx

	r, err := g.api.Refunds.New(params)
	if err != nil {
		return "", errs.Wrap(err, "stripe refund")
	}
	return r.ID, nil
}

// ExpireCheckoutSession closes a session nobody will be sent to. Already expired or completed sessions are not an error here.
func (g *StripeGateway) ExpireCheckoutSession(ctx context.Context, sessionID string) error {
	params := &stripe.CheckoutSessionExpireParams{}
	params.Context = ctx

	if _, err := g.api.CheckoutSessions.Expire(sessionID, params); err != nil {
		var serr *stripe.Error
		if errs.As(err, &serr) && serr.HTTPStatusCode == http.StatusBadRequest {
			return nil
		}
		return errs.Wrap(err, "stripe expire checkout session")
	}
	return nil
}

func (g *StripeGateway) ParseUnverified(payload []byte) (*shared.PaymentEvent, error) {
	var ev stripe.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, errs.Wrapf(ErrMalformedEvent, "decode event: %v", err)
	}
	return toPaymentEvent(&ev, payload)
}

func (g *StripeGateway) VerifyEvent(payload []byte, signature, secret string) (*shared.PaymentEvent, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, err
	}
	return toPaymentEvent(&ev, payload)
}

func sessionMetadata(req shared.CheckoutSessionRequest) map[string]string {
	md := map[string]string{
		shared.MetadataCartID:  req.CartID.String(),
		shared.MetadataStoreID: req.StoreID.String(),
	}
	if req.DiscountID != nil {
		md[shared.MetadataDiscountID] = req.DiscountID.String()
	}
	return md
}

func toPaymentEvent(ev *stripe.Event, raw []byte) (*shared.PaymentEvent, error) {
	if ev.ID == "" || ev.Type == "" {
		return nil, errs.Wrap(ErrMalformedEvent, "missing id or type")
	}
	out := &shared.PaymentEvent{ID: ev.ID, Type: event.Type(ev.Type), Raw: raw}
	if out.Type.Kind() == event.KindIgnored || ev.Data == nil || len(ev.Data.Raw) == 0 {
		return out, nil
	}
	var s stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
		return nil, errs.Wrapf(ErrMalformedEvent, "decode checkout session: %v", err)
	}
	out.Session = sessionDetails(&s)
	return out, nil
}

// sessionDetails leaves amounts nil when the session carries none, so the cart values apply.
func sessionDetails(s *stripe.CheckoutSession) *shared.SessionDetails {
	d := &shared.SessionDetails{
		ID:            s.ID,
		CustomerEmail: s.CustomerEmail,
		Metadata:      s.Metadata,
	}
	if s.PaymentIntent != nil {
		d.PaymentIntentID = s.PaymentIntent.ID
	}
	if d.CustomerEmail == "" && s.CustomerDetails != nil {
		d.CustomerEmail = s.CustomerDetails.Email
	}
	if s.AmountSubtotal != 0 || s.AmountTotal != 0 {
		d.AmountSubtotal = stripe.Int64(s.AmountSubtotal)
		d.AmountTotal = stripe.Int64(s.AmountTotal)
	}
	if t := s.TotalDetails; t != nil {
		d.AmountDiscount = stripe.Int64(t.AmountDiscount)
		d.AmountShipping = stripe.Int64(t.AmountShipping)
		d.AmountTax = stripe.Int64(t.AmountTax)
	}
	d.ShipTo = shipTo(s)
	return d
}

func shipTo(s *stripe.CheckoutSession) *order.Address {
	var (
		name string
		addr *stripe.Address
	)
	switch {
	case s.ShippingDetails != nil && s.ShippingDetails.Address != nil:
		name, addr = s.ShippingDetails.Name, s.ShippingDetails.Address
	case s.CustomerDetails != nil && s.CustomerDetails.Address != nil:
		name, addr = s.CustomerDetails.Name, s.CustomerDetails.Address
	default:
		return nil
	}
	return &order.Address{
		Name:       name,
		Line1:      addr.Line1,
		Line2:      addr.Line2,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
