package commands

//go:generate mockgen -source=cart.go -destination=../../../tests/mock/commands/cart_mock.go -package=commandsmock

import (
	"context"
	"log/slog"

	"github.com/Thegreatsura/merchant/internal/domain/cart"
	"github.com/Thegreatsura/merchant/internal/domain/catalog"
	"github.com/Thegreatsura/merchant/internal/domain/discount"
	"github.com/Thegreatsura/merchant/internal/domain/inventory"
	"github.com/Thegreatsura/merchant/internal/domain/store"
	"github.com/Thegreatsura/merchant/internal/pkg/clock"
	"github.com/Thegreatsura/merchant/internal/pkg/config"
	"github.com/Thegreatsura/merchant/internal/pkg/errs"
	"github.com/Thegreatsura/merchant/internal/pkg/metrics"
	"github.com/Thegreatsura/merchant/internal/usecase/shared"

	"github.com/google/uuid"
)

type CheckoutOptions struct {
	SuccessURL string
	CancelURL  string
}

type CartCommands interface {
	CreateCart(ctx context.Context, storeID uuid.UUID, email, currency string) (*CartResult, error)
	ReplaceItems(ctx context.Context, storeID, cartID uuid.UUID, lines []cart.Line) (*CartResult, error)
	ApplyDiscount(ctx context.Context, storeID, cartID uuid.UUID, code string) (*CartResult, error)
	RemoveDiscount(ctx context.Context, storeID, cartID uuid.UUID) (*CartResult, error)
	Checkout(ctx context.Context, storeID, cartID uuid.UUID, opts CheckoutOptions) (*CheckoutResult, error)
}

type cartCommandsImpl struct {
	uow      shared.UnitOfWork
	payments shared.PaymentGateway
	clock    clock.Clock
	cfg      config.CheckoutConfig
	metrics  *metrics.Metrics
}

func NewCartCommands(uow shared.UnitOfWork, payments shared.PaymentGateway, clk clock.Clock, cfg config.Config, m *metrics.Metrics) CartCommands {
	return &cartCommandsImpl{
		uow:      uow,
		payments: payments,
		clock:    clk,
		cfg:      cfg.Checkout,
		metrics:  m,
	}
}

func (uc *cartCommandsImpl) CreateCart(ctx context.Context, storeID uuid.UUID, email, currency string) (*CartResult, error) {
	var created *cart.Cart
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		st, err := tx.Stores().ByID(ctx, storeID)
		if err != nil {
			return err
		}
		if currency == "" {
			currency = st.Currency
		}
		c, err := cart.New(st.ID, email, store.NormalizeCurrency(currency), uc.clock.Now(), uc.cfg.CartTTL)
		if err != nil {
			return err
		}
		if err := tx.Carts().Create(ctx, c); err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.result(created), nil
}

// ReplaceItems validates the whole batch against the catalog and availability before touching the cart.
func (uc *cartCommandsImpl) ReplaceItems(ctx context.Context, storeID, cartID uuid.UUID, lines []cart.Line) (*CartResult, error) {
	validated, err := cart.ValidateLines(lines)
	if err != nil {
		return nil, err
	}

	var updated *cart.Cart
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := uc.clock.Now()
		c, err := uc.lockCart(ctx, tx, storeID, cartID)
		if err != nil {
			return err
		}
		if err := c.EnsureMutable(now); err != nil {
			return err
		}

		items, err := uc.snapshotLines(ctx, tx, storeID, validated)
		if err != nil {
			return err
		}

		if err := c.ReplaceItems(items, now); err != nil {
			return err
		}
		if err := tx.Carts().ReplaceItems(ctx, c); err != nil {
			return err
		}
		if err := uc.refreshDiscount(ctx, tx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.result(updated), nil
}

func (uc *cartCommandsImpl) snapshotLines(ctx context.Context, tx shared.Tx, storeID uuid.UUID, lines []cart.Line) ([]cart.Item, error) {
	skus := make([]string, len(lines))
	for i, l := range lines {
		skus[i] = l.SKU
	}

	variants, err := tx.Catalog().VariantsBySKU(ctx, storeID, skus)
	if err != nil {
		return nil, err
	}
	levels, err := tx.Inventory().GetMany(ctx, storeID, skus)
	if err != nil {
		return nil, err
	}

	items := make([]cart.Item, 0, len(lines))
	for _, l := range lines {
		v, ok := variants[l.SKU]
		if !ok {
			return nil, errs.NotFound("sku " + l.SKU)
		}
		if !v.IsActive() {
			return nil, errs.InvalidRequest("sku " + l.SKU + " is not available for sale")
		}
		if level, ok := levels[l.SKU]; !ok || !level.CanReserve(l.Quantity) {
			return nil, errs.InsufficientInventory(l.SKU)
		}
		items = append(items, itemFromVariant(v, l.Quantity))
	}
	return items, nil
}

func itemFromVariant(v catalog.Variant, qty int64) cart.Item {
	return cart.Item{
		SKU:            v.SKU,
		Title:          v.Title,
		Quantity:       qty,
		UnitPriceCents: v.PriceCents,
	}
}

// ApplyDiscount surfaces lookup and eligibility failures to the caller.
func (uc *cartCommandsImpl) ApplyDiscount(ctx context.Context, storeID, cartID uuid.UUID, code string) (*CartResult, error) {
	normalized := discount.NormalizeCode(code)
	if normalized == "" {
		return nil, discount.ErrEmptyCode
	}

	var updated *cart.Cart
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := uc.clock.Now()
		c, err := uc.lockCart(ctx, tx, storeID, cartID)
		if err != nil {
			return err
		}
		if err := c.EnsureMutable(now); err != nil {
			return err
		}

		d, err := tx.Discounts().ByCode(ctx, storeID, normalized)
		if err != nil {
			return err
		}
		amount, err := uc.evaluate(ctx, tx, d, c)
		if err != nil {
			return err
		}

		c.AttachDiscount(d.ID(), d.Code(), amount, now)
		if err := tx.Carts().SaveDiscount(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.result(updated), nil
}

func (uc *cartCommandsImpl) RemoveDiscount(ctx context.Context, storeID, cartID uuid.UUID) (*CartResult, error) {
	var updated *cart.Cart
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := uc.clock.Now()
		c, err := uc.lockCart(ctx, tx, storeID, cartID)
		if err != nil {
			return err
		}
		if err := c.EnsureMutable(now); err != nil {
			return err
		}
		c.DetachDiscount(now)
		if err := tx.Carts().SaveDiscount(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.result(updated), nil
}

func (uc *cartCommandsImpl) lockCart(ctx context.Context, tx shared.Tx, storeID, cartID uuid.UUID) (*cart.Cart, error) {
	c, err := tx.Carts().ByIDForUpdate(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c.StoreID() != storeID {
		return nil, errs.NotFound("cart")
	}
	return c, nil
}

// evaluate validates d for c and returns the amount it takes off the current subtotal.
func (uc *cartCommandsImpl) evaluate(ctx context.Context, tx shared.Tx, d *discount.Discount, c *cart.Cart) (int64, error) {
	var uses int64
	if email := discount.NormalizeEmail(c.CustomerEmail()); email != "" && d.UsageLimitPerCustomer() != nil {
		n, err := tx.Discounts().CountCustomerUsages(ctx, d.ID(), email)
		if err != nil {
			return 0, err
		}
		uses = n
	}
	subtotal := c.SubtotalCents()
	if err := d.Validate(subtotal, uses, uc.clock.Now()); err != nil {
		return 0, err
	}
	return d.Calculate(subtotal), nil
}

// refreshDiscount recomputes an attached discount and silently detaches it when it no longer applies.
func (uc *cartCommandsImpl) refreshDiscount(ctx context.Context, tx shared.Tx, c *cart.Cart) error {
	if !c.HasDiscount() {
		return nil
	}
	now := uc.clock.Now()

	d, err := tx.Discounts().ByID(ctx, *c.DiscountID())
	if err != nil && !errs.Is(err, errs.ErrNotFound) {
		return err
	}

	var amount int64
	if err == nil {
		amount, err = uc.evaluate(ctx, tx, d, c)
	}
	switch {
	case err == nil:
		c.AttachDiscount(d.ID(), d.Code(), amount, now)
	case errs.Is(err, errs.ErrIneligible), errs.Is(err, errs.ErrNotFound):
		slog.WarnContext(ctx, "discount dropped from cart",
			slog.String("cart_id", c.ID().String()),
			slog.String("reason", err.Error()))
		c.DetachDiscount(now)
	default:
		return err
	}
	return tx.Carts().SaveDiscount(ctx, c)
}

func (uc *cartCommandsImpl) result(c *cart.Cart) *CartResult {
	return &CartResult{
		Cart:   c.Snapshot(),
		Totals: c.Totals(uc.cfg.DefaultShippingCents),
	}
}

func holdsFor(c *cart.Cart) ([]inventory.Hold, error) {
	items := cart.SortItems(c.Items())
	holds := make([]inventory.Hold, 0, len(items))
	for _, it := range items {
		h, err := inventory.NewHold(c.StoreID(), c.ID(), it.SKU, it.Quantity)
		if err != nil {
			return nil, err
		}
		holds = append(holds, h)
	}
	return holds, nil
}
