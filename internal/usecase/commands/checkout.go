package commands

import (
	"context"
	"log/slog"

	"github.com/Thegreatsura/merchant/internal/domain/cart"
	"github.com/Thegreatsura/merchant/internal/domain/inventory"
	"github.com/Thegreatsura/merchant/internal/domain/store"
	"github.com/Thegreatsura/merchant/internal/pkg/errs"
	"github.com/Thegreatsura/merchant/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	resultOK           = "ok"
	resultInsufficient = "insufficient"
	resultProcessor    = "processor_error"
	resultConflict     = "conflict"
	resultError        = "error"
)

// Checkout reserves every item, then opens a processor session. Reservations are
// independent saga steps; any failure after the first reserve releases what this call took.
func (uc *cartCommandsImpl) Checkout(ctx context.Context, storeID, cartID uuid.UUID, opts CheckoutOptions) (res *CheckoutResult, err error) {
	defer func() {
		outcome := checkoutOutcome(err)
		if err == nil && res == nil {
			outcome = resultError
		}
		uc.metrics.Checkouts.WithLabelValues(outcome).Inc()
	}()

	c, st, err := uc.prepareCheckout(ctx, storeID, cartID)
	if err != nil {
		return nil, err
	}
	holds, err := holdsFor(c)
	if err != nil {
		return nil, err
	}

	var (
		reserved []inventory.Hold
		session  *shared.CheckoutSession
	)
	committed := false
	defer func() {
		if committed {
			return
		}
		rec := recover()
		detached := context.WithoutCancel(ctx)
		if session != nil {
			uc.expireSession(detached, cartID, session.ID)
		}
		uc.compensate(detached, cartID, reserved)
		if rec != nil {
			panic(rec)
		}
	}()

	for _, h := range holds {
		ok, rerr := uc.reserve(ctx, h)
		if rerr != nil {
			return nil, rerr
		}
		if !ok {
			return nil, errs.InsufficientInventory(h.SKU)
		}
		reserved = append(reserved, h)
	}

	totals := c.Totals(uc.cfg.DefaultShippingCents)
	session, err = uc.openSession(ctx, c, st, totals, opts)
	if err != nil {
		return nil, err
	}

	// the session was priced from c; a cart swept or edited since then must not be marked paid for it
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if merr := c.MarkCheckedOut(session.ID, totals.DiscountCents, uc.clock.Now()); merr != nil {
			return merr
		}
		ok, merr := tx.Carts().MarkCheckedOut(ctx, c)
		if merr != nil {
			return merr
		}
		if !ok {
			return errs.Wrap(cart.ErrNotOpen, "cart changed during checkout")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	committed = true

	slog.InfoContext(ctx, "checkout session created",
		slog.String("store_id", storeID.String()),
		slog.String("cart_id", cartID.String()),
		slog.String("session_id", session.ID),
		slog.Int64("total_cents", totals.TotalCents))

	return &CheckoutResult{
		CartID:     cartID,
		SessionID:  session.ID,
		SessionURL: session.URL,
		Totals:     totals,
	}, nil
}

// prepareCheckout recomputes the discount from persisted items. An ineligible discount is dropped, not fatal.
func (uc *cartCommandsImpl) prepareCheckout(ctx context.Context, storeID, cartID uuid.UUID) (*cart.Cart, *store.Store, error) {
	var (
		c  *cart.Cart
		st *store.Store
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		c, err = uc.lockCart(ctx, tx, storeID, cartID)
		if err != nil {
			return err
		}
		if err = c.EnsureMutable(uc.clock.Now()); err != nil {
			return err
		}
		if len(c.Items()) == 0 {
			return cart.ErrEmpty
		}
		if st, err = tx.Stores().ByID(ctx, storeID); err != nil {
			return err
		}
		return uc.refreshDiscount(ctx, tx, c)
	})
	if err != nil {
		return nil, nil, err
	}
	return c, st, nil
}

func (uc *cartCommandsImpl) reserve(ctx context.Context, h inventory.Hold) (bool, error) {
	var ok bool
	err := uc.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		ok, err = tx.Inventory().Reserve(ctx, h)
		return err
	})
	switch {
	case err != nil:
		uc.metrics.Reservations.WithLabelValues(resultError).Inc()
	case ok:
		uc.metrics.Reservations.WithLabelValues(resultOK).Inc()
	default:
		uc.metrics.Reservations.WithLabelValues(resultInsufficient).Inc()
	}
	return ok, err
}

func (uc *cartCommandsImpl) openSession(ctx context.Context, c *cart.Cart, st *store.Store, totals cart.Totals, opts CheckoutOptions) (*shared.CheckoutSession, error) {
	req := shared.CheckoutSessionRequest{
		StoreID:       c.StoreID(),
		CartID:        c.ID(),
		DiscountID:    c.DiscountID(),
		Currency:      c.Currency(),
		CustomerEmail: c.CustomerEmail(),
		ShippingCents: totals.ShippingCents,
		SuccessURL:    firstNonEmpty(opts.SuccessURL, deref(st.SuccessURL), uc.cfg.SuccessURL),
		CancelURL:     firstNonEmpty(opts.CancelURL, deref(st.CancelURL), uc.cfg.CancelURL),
	}
	for _, it := range cart.SortItems(c.Items()) {
		req.LineItems = append(req.LineItems, shared.LineItem{
			SKU:            it.SKU,
			Title:          it.Title,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}

	if totals.DiscountCents > 0 {
		couponID, err := uc.payments.CreateCoupon(ctx, shared.CouponRequest{
			Name:           deref(c.DiscountCode()),
			AmountOffCents: totals.DiscountCents,
			Currency:       c.Currency(),
		})
		if err != nil {
			return nil, errs.Processor(err, "create coupon")
		}
		req.CouponID = couponID
	}

	session, err := uc.payments.CreateCheckoutSession(ctx, req)
	if err != nil {
		return nil, errs.Processor(err, "create checkout session")
	}
	return session, nil
}

// expireSession closes a processor session whose cart could not be marked checked out.
func (uc *cartCommandsImpl) expireSession(ctx context.Context, cartID uuid.UUID, sessionID string) {
	if err := uc.payments.ExpireCheckoutSession(ctx, sessionID); err != nil {
		slog.ErrorContext(ctx, "failed to expire checkout session",
			slog.String("cart_id", cartID.String()),
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		return
	}
	slog.WarnContext(ctx, "checkout session expired after failed checkout",
		slog.String("cart_id", cartID.String()),
		slog.String("session_id", sessionID))
}

// compensate releases each hold in its own transaction so one failure does not strand the rest.
func (uc *cartCommandsImpl) compensate(ctx context.Context, cartID uuid.UUID, holds []inventory.Hold) {
	for _, h := range holds {
		err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			_, err := tx.Inventory().Release(ctx, h)
			return err
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to release reservation",
				slog.String("cart_id", cartID.String()),
				slog.String("sku", h.SKU),
				slog.Int64("quantity", h.Quantity),
				slog.String("error", err.Error()))
			continue
		}
		slog.WarnContext(ctx, "reservation released after failed checkout",
			slog.String("cart_id", cartID.String()),
			slog.String("sku", h.SKU),
			slog.Int64("quantity", h.Quantity))
	}
}

func checkoutOutcome(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errs.Is(err, errs.ErrInsufficientInventory):
		return resultInsufficient
	case errs.Is(err, errs.ErrProcessor):
		return resultProcessor
	case errs.Is(err, errs.ErrConflict):
		return resultConflict
	default:
		return resultError
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
