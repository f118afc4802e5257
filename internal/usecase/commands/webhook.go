package commands

//go:generate mockgen -source=webhook.go -destination=../../../tests/mock/commands/webhook_mock.go -package=commandsmock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/cart"
	"github.com/Thegreatsura/merchant/internal/domain/discount"
	"github.com/Thegreatsura/merchant/internal/domain/event"
	"github.com/Thegreatsura/merchant/internal/domain/order"
	"github.com/Thegreatsura/merchant/internal/domain/store"
	"github.com/Thegreatsura/merchant/internal/pkg/clock"
	"github.com/Thegreatsura/merchant/internal/pkg/errs"
	"github.com/Thegreatsura/merchant/internal/pkg/metrics"
	"github.com/Thegreatsura/merchant/internal/usecase/shared"

	"github.com/google/uuid"
)

type WebhookCommands interface {
	HandlePaymentEvent(ctx context.Context, payload []byte, signature string) (*WebhookResult, error)
	// Drain waits for post-commit work started by HandlePaymentEvent.
	Drain(ctx context.Context) error
}

type webhookCommandsImpl struct {
	uow        shared.UnitOfWork
	payments   shared.PaymentGateway
	deliveries DeliveryCommands
	stream     shared.EventStream
	clock      clock.Clock
	metrics    *metrics.Metrics

	inflight sync.WaitGroup
}

func NewWebhookCommands(
	uow shared.UnitOfWork,
	payments shared.PaymentGateway,
	deliveries DeliveryCommands,
	stream shared.EventStream,
	clk clock.Clock,
	m *metrics.Metrics,
) WebhookCommands {
	return &webhookCommandsImpl{
		uow:        uow,
		payments:   payments,
		deliveries: deliveries,
		stream:     stream,
		clock:      clk,
		metrics:    m,
	}
}

// materialized carries post-commit work out of the transaction.
type materialized struct {
	orderID    uuid.UUID
	payload    event.OrderCreatedPayload
	deliveries []uuid.UUID
}

func (uc *webhookCommandsImpl) HandlePaymentEvent(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	st, err := uc.resolveStore(ctx, payload)
	if err != nil {
		return nil, err
	}

	ev, err := uc.payments.VerifyEvent(payload, signature, *st.WebhookSecret)
	if err != nil {
		uc.metrics.WebhookEvents.WithLabelValues("unknown", "signature_invalid").Inc()
		return nil, errs.SignatureInvalid(err)
	}

	res := &WebhookResult{EventID: ev.ID}
	var done *materialized

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res.Duplicate, res.Released, done = false, 0, nil

		fresh, err := tx.Events().Record(ctx, event.ProcessorEvent{
			ID:          ev.ID,
			StoreID:     st.ID,
			Type:        ev.Type,
			Payload:     payload,
			ProcessedAt: uc.clock.Now(),
		})
		if err != nil {
			return err
		}
		if !fresh {
			res.Duplicate = true
			return nil
		}

		switch ev.Type.Kind() {
		case event.KindCheckoutCompleted:
			done, err = uc.materialize(ctx, tx, st, ev)
			return err
		case event.KindCheckoutExpired:
			res.Released, err = uc.releaseExpiredSession(ctx, tx, st, ev)
			return err
		default:
			return nil
		}
	})
	if err != nil {
		uc.metrics.WebhookEvents.WithLabelValues(string(ev.Type), resultError).Inc()
		return nil, err
	}

	switch {
	case res.Duplicate:
		uc.metrics.WebhookEvents.WithLabelValues(string(ev.Type), "duplicate").Inc()
		slog.InfoContext(ctx, "duplicate processor event ignored", slog.String("event_id", ev.ID))
		return res, nil
	case done != nil:
		res.OrderID = &done.orderID
		uc.inflight.Add(1)
		go func() {
			defer uc.inflight.Done()
			uc.afterCommit(ctx, done)
		}()
	}
	uc.metrics.WebhookEvents.WithLabelValues(string(ev.Type), resultOK).Inc()
	return res, nil
}

// resolveStore reads the target store from unverified metadata so its signing secret can be used.
func (uc *webhookCommandsImpl) resolveStore(ctx context.Context, payload []byte) (*store.Store, error) {
	envelope, err := uc.payments.ParseUnverified(payload)
	if err != nil {
		return nil, errs.InvalidRequest("malformed event payload")
	}
	storeID, err := uuid.Parse(envelope.Metadata(shared.MetadataStoreID))
	if err != nil {
		return nil, errs.NotFound("store for event")
	}

	var st *store.Store
	err = uc.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		st, err = tx.Stores().ByID(ctx, storeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !st.HasWebhookSecret() {
		return nil, errs.NotFound("webhook secret for store")
	}
	return st, nil
}

func (uc *webhookCommandsImpl) materialize(ctx context.Context, tx shared.Tx, st *store.Store, ev *shared.PaymentEvent) (*materialized, error) {
	c, ok, err := uc.loadEventCart(ctx, tx, st, ev)
	if err != nil || !ok {
		return nil, err
	}

	exists, err := tx.Orders().ExistsForCart(ctx, c.ID())
	if err != nil {
		return nil, err
	}
	if exists {
		slog.InfoContext(ctx, "order already exists for cart",
			slog.String("cart_id", c.ID().String()),
			slog.String("event_id", ev.ID))
		return nil, nil
	}

	now := uc.clock.Now()
	d, counted, err := uc.countDiscount(ctx, tx, c)
	if err != nil {
		return nil, err
	}

	seq, err := tx.Stores().NextOrderSeq(ctx, st.ID)
	if err != nil {
		return nil, err
	}

	o, err := order.New(orderParams(c, ev, order.FormatNumber(seq), now))
	if err != nil {
		return nil, err
	}
	if err := tx.Orders().Create(ctx, o); err != nil {
		return nil, err
	}

	for _, it := range o.Items() {
		sold, err := tx.Inventory().Sell(ctx, st.ID, c.ID(), it.SKU, it.Quantity)
		if err != nil {
			return nil, err
		}
		if !sold {
			slog.WarnContext(ctx, "inventory shortfall on sale",
				slog.String("order_id", o.ID().String()),
				slog.String("sku", it.SKU),
				slog.Int64("quantity", it.Quantity))
		}
	}
	// any hold not consumed by a sale belongs to no live payment attempt anymore
	if _, err := tx.Inventory().ReleaseCart(ctx, c.ID()); err != nil {
		return nil, err
	}

	if counted {
		usage := discount.NewUsage(d.ID(), o.ID(), o.CustomerEmail(), o.Amounts().DiscountCents, now)
		if err := tx.Discounts().RecordUsage(ctx, usage); err != nil {
			return nil, err
		}
	}

	payload := orderCreatedPayload(o, c.Currency())
	ids, err := uc.enqueue(ctx, tx, st.ID, payload)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order materialized",
		slog.String("order_id", o.ID().String()),
		slog.String("number", o.Number()),
		slog.String("cart_id", c.ID().String()),
		slog.String("event_id", ev.ID))

	return &materialized{orderID: o.ID(), payload: payload, deliveries: ids}, nil
}

// loadEventCart returns ok=false when the event names no cart this store knows; the event is still recorded.
func (uc *webhookCommandsImpl) loadEventCart(ctx context.Context, tx shared.Tx, st *store.Store, ev *shared.PaymentEvent) (*cart.Cart, bool, error) {
	cartID, err := uuid.Parse(ev.Metadata(shared.MetadataCartID))
	if err != nil {
		slog.WarnContext(ctx, "processor event without cart id", slog.String("event_id", ev.ID))
		return nil, false, nil
	}
	c, err := tx.Carts().ByIDForUpdate(ctx, cartID)
	if errs.Is(err, errs.ErrNotFound) {
		slog.WarnContext(ctx, "processor event for unknown cart",
			slog.String("event_id", ev.ID),
			slog.String("cart_id", cartID.String()))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if c.StoreID() != st.ID {
		slog.WarnContext(ctx, "processor event cart belongs to another store",
			slog.String("event_id", ev.ID),
			slog.String("cart_id", cartID.String()))
		return nil, false, nil
	}
	return c, true, nil
}

// countDiscount is accounting only. The order records what was charged either way.
func (uc *webhookCommandsImpl) countDiscount(ctx context.Context, tx shared.Tx, c *cart.Cart) (*discount.Discount, bool, error) {
	if c.DiscountID() == nil {
		return nil, false, nil
	}
	d, err := tx.Discounts().ByID(ctx, *c.DiscountID())
	if errs.Is(err, errs.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !d.CountableAt(uc.clock.Now()) {
		return d, false, nil
	}
	counted, err := tx.Discounts().IncrementUsage(ctx, d.ID())
	if err != nil {
		return nil, false, err
	}
	if !counted {
		slog.InfoContext(ctx, "discount usage limit reached; usage not counted",
			slog.String("discount_id", d.ID().String()),
			slog.String("cart_id", c.ID().String()))
	}
	return d, counted, nil
}

func (uc *webhookCommandsImpl) enqueue(ctx context.Context, tx shared.Tx, storeID uuid.UUID, payload event.OrderCreatedPayload) ([]uuid.UUID, error) {
	subs, err := tx.Deliveries().ActiveSubscriptions(ctx, storeID)
	if err != nil || len(subs) == 0 {
		return nil, err
	}
	body, err := payload.Marshal()
	if err != nil {
		return nil, errs.Wrap(err, "marshal order.created payload")
	}
	now := uc.clock.Now()
	ds := make([]event.Delivery, 0, len(subs))
	ids := make([]uuid.UUID, 0, len(subs))
	for _, sub := range subs {
		d := event.NewDelivery(sub, event.OrderCreated, body, now)
		ds = append(ds, d)
		ids = append(ids, d.ID)
	}
	if err := tx.Deliveries().Enqueue(ctx, ds); err != nil {
		return nil, err
	}
	return ids, nil
}

// releaseExpiredSession frees holds of a cart whose processor session can no longer be paid.
func (uc *webhookCommandsImpl) releaseExpiredSession(ctx context.Context, tx shared.Tx, st *store.Store, ev *shared.PaymentEvent) (int64, error) {
	c, ok, err := uc.loadEventCart(ctx, tx, st, ev)
	if err != nil || !ok {
		return 0, err
	}
	holds, err := tx.Inventory().ReleaseCart(ctx, c.ID())
	if err != nil {
		return 0, err
	}
	var units int64
	for _, h := range holds {
		units += h.Quantity
	}
	if units > 0 {
		slog.InfoContext(ctx, "released holds of expired checkout session",
			slog.String("cart_id", c.ID().String()),
			slog.Int64("units", units))
	}
	return units, nil
}

func (uc *webhookCommandsImpl) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		uc.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// afterCommit runs off the request path: failures stay in the outbox for the retry job.
func (uc *webhookCommandsImpl) afterCommit(ctx context.Context, m *materialized) {
	ctx = context.WithoutCancel(ctx)
	if len(m.deliveries) > 0 {
		if _, err := uc.deliveries.DeliverPending(ctx, m.deliveries); err != nil {
			slog.WarnContext(ctx, "immediate delivery failed", slog.String("order_id", m.orderID.String()), slog.String("error", err.Error()))
		}
	}
	if err := uc.stream.PublishOrderCreated(ctx, m.payload); err != nil {
		slog.WarnContext(ctx, "order stream publish failed", slog.String("order_id", m.orderID.String()), slog.String("error", err.Error()))
	}
}

func orderParams(c *cart.Cart, ev *shared.PaymentEvent, number string, now time.Time) order.NewParams {
	cartTotals := c.Totals(0)
	s := ev.Session
	if s == nil {
		s = &shared.SessionDetails{}
	}

	subtotal := valueOr(s.AmountSubtotal, cartTotals.SubtotalCents)
	discountCents := valueOr(s.AmountDiscount, c.DiscountAmountCents())
	shipping := valueOr(s.AmountShipping, 0)
	tax := valueOr(s.AmountTax, 0)
	total := valueOr(s.AmountTotal, cart.NewTotals(subtotal, discountCents, shipping, tax).TotalCents)

	items := make([]order.Item, 0, len(c.Items()))
	for _, it := range cart.SortItems(c.Items()) {
		items = append(items, order.Item{
			SKU:            it.SKU,
			Title:          it.Title,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}

	cartID := c.ID()
	p := order.NewParams{
		StoreID:       c.StoreID(),
		CartID:        &cartID,
		Number:        number,
		CustomerEmail: firstNonEmpty(s.CustomerEmail, c.CustomerEmail()),
		ShipTo:        s.ShipTo,
		Amounts: order.Amounts{
			SubtotalCents: subtotal,
			DiscountCents: discountCents,
			ShippingCents: shipping,
			TaxCents:      tax,
			TotalCents:    total,
		},
		DiscountID:   c.DiscountID(),
		DiscountCode: c.DiscountCode(),
		Items:        items,
		Now:          now,
	}
	if s.ID != "" {
		p.CheckoutSessionID = &s.ID
	}
	if s.PaymentIntentID != "" {
		p.PaymentIntentID = &s.PaymentIntentID
	}
	return p
}

func orderCreatedPayload(o *order.Order, currency string) event.OrderCreatedPayload {
	items := make([]event.OrderItemPayload, 0, len(o.Items()))
	for _, it := range o.Items() {
		items = append(items, event.OrderItemPayload{
			SKU:            it.SKU,
			Title:          it.Title,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}
	return event.OrderCreatedPayload{
		Event:         event.OrderCreated,
		OrderID:       o.ID(),
		StoreID:       o.StoreID(),
		Number:        o.Number(),
		CustomerEmail: o.CustomerEmail(),
		TotalCents:    o.Amounts().TotalCents,
		DiscountCents: o.Amounts().DiscountCents,
		Currency:      currency,
		Items:         items,
		CreatedAt:     o.CreatedAt(),
	}
}

func valueOr(v *int64, fallback int64) int64 {
	if v == nil {
		return fallback
	}
	return *v
}
