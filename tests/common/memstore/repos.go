//go:build unit

package memstore

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/cart"
	"github.com/Thegreatsura/merchant/internal/domain/catalog"
	"github.com/Thegreatsura/merchant/internal/domain/discount"
	"github.com/Thegreatsura/merchant/internal/domain/event"
	"github.com/Thegreatsura/merchant/internal/domain/inventory"
	"github.com/Thegreatsura/merchant/internal/domain/order"
	"github.com/Thegreatsura/merchant/internal/domain/store"
	"github.com/Thegreatsura/merchant/internal/infra"

	"github.com/google/uuid"
)

func notFound(what string) error {
	return infra.WrapRepoErr(what+" not found", nil, infra.KindNotFound)
}

// ----------------------------------------------------------------------------
// stores / catalog
// ----------------------------------------------------------------------------

type storeRepo struct{ t *memTx }

func (r storeRepo) ByID(_ context.Context, id uuid.UUID) (*store.Store, error) {
	var out *store.Store
	err := r.t.do(func(s *state) error {
		row, ok := s.stores[id]
		if !ok {
			return notFound("store")
		}
		st := row.store
		out = &st
		return nil
	})
	return out, err
}

func (r storeRepo) NextOrderSeq(_ context.Context, id uuid.UUID) (int64, error) {
	var seq int64
	err := r.t.do(func(s *state) error {
		row, ok := s.stores[id]
		if !ok {
			return notFound("store")
		}
		row.seq++
		s.stores[id] = row
		seq = row.seq
		return nil
	})
	return seq, err
}

type catalogRepo struct{ t *memTx }

func (r catalogRepo) VariantsBySKU(_ context.Context, storeID uuid.UUID, skus []string) (map[string]catalog.Variant, error) {
	out := make(map[string]catalog.Variant, len(skus))
	err := r.t.do(func(s *state) error {
		for _, sku := range skus {
			if v, ok := s.variants[skuKey{storeID, sku}]; ok {
				out[sku] = v
			}
		}
		return nil
	})
	return out, err
}

// ----------------------------------------------------------------------------
// inventory
// ----------------------------------------------------------------------------

type inventoryRepo struct{ t *memTx }

func (r inventoryRepo) Get(_ context.Context, storeID uuid.UUID, sku string) (*inventory.Level, error) {
	var out *inventory.Level
	err := r.t.do(func(s *state) error {
		l, ok := s.levels[skuKey{storeID, sku}]
		if !ok {
			return notFound("inventory level")
		}
		out = &l
		return nil
	})
	return out, err
}

func (r inventoryRepo) GetMany(_ context.Context, storeID uuid.UUID, skus []string) (map[string]inventory.Level, error) {
	out := make(map[string]inventory.Level, len(skus))
	err := r.t.do(func(s *state) error {
		for _, sku := range skus {
			if l, ok := s.levels[skuKey{storeID, sku}]; ok {
				out[sku] = l
			}
		}
		return nil
	})
	return out, err
}

func (r inventoryRepo) Reserve(_ context.Context, h inventory.Hold) (bool, error) {
	var ok bool
	err := r.t.do(func(s *state) error {
		k := skuKey{h.StoreID, h.SKU}
		l, exists := s.levels[k]
		if !exists || l.OnHand-l.Reserved < h.Quantity {
			return nil
		}
		l.Reserved += h.Quantity
		l.UpdatedAt = r.t.now()
		s.levels[k] = l

		hk := holdKey{h.CartID, h.SKU}
		held := s.holds[hk]
		held.CartID, held.StoreID, held.SKU = h.CartID, h.StoreID, h.SKU
		held.Quantity += h.Quantity
		s.holds[hk] = held
		ok = true
		return nil
	})
	return ok, err
}

func (r inventoryRepo) Release(_ context.Context, h inventory.Hold) (int64, error) {
	var released int64
	err := r.t.do(func(s *state) error {
		hk := holdKey{h.CartID, h.SKU}
		held, ok := s.holds[hk]
		if !ok || held.Quantity == 0 {
			return nil
		}
		qty := min(held.Quantity, h.Quantity)
		consumeHold(s, hk, held, qty)
		decrementReserved(s, skuKey{h.StoreID, h.SKU}, qty, r.t.now())
		cartID := h.CartID
		appendLog(s, h.StoreID, h.SKU, -qty, inventory.ReasonRelease, &cartID, "", r.t.now())
		released = qty
		return nil
	})
	return released, err
}

func (r inventoryRepo) ReleaseCart(_ context.Context, cartID uuid.UUID) ([]inventory.Hold, error) {
	var out []inventory.Hold
	err := r.t.do(func(s *state) error {
		for k, h := range s.holds {
			if k.cartID == cartID {
				out = append(out, h)
				delete(s.holds, k)
			}
		}
		slices.SortFunc(out, func(a, b inventory.Hold) int { return strings.Compare(a.SKU, b.SKU) })
		for _, h := range out {
			decrementReserved(s, skuKey{h.StoreID, h.SKU}, h.Quantity, r.t.now())
			id := cartID
			appendLog(s, h.StoreID, h.SKU, -h.Quantity, inventory.ReasonRelease, &id, "", r.t.now())
		}
		return nil
	})
	return out, err
}

func (r inventoryRepo) Sell(_ context.Context, storeID, cartID uuid.UUID, sku string, qty int64) (bool, error) {
	var ok bool
	err := r.t.do(func(s *state) error {
		hk := holdKey{cartID, sku}
		held := s.holds[hk]
		take := min(held.Quantity, qty)

		k := skuKey{storeID, sku}
		l, exists := s.levels[k]
		if !exists || l.Reserved < take || l.OnHand-qty < l.Reserved-take {
			return nil
		}
		l.OnHand -= qty
		l.Reserved -= take
		l.UpdatedAt = r.t.now()
		s.levels[k] = l
		if take > 0 {
			consumeHold(s, hk, held, take)
		}
		id := cartID
		appendLog(s, storeID, sku, -qty, inventory.ReasonSale, &id, "", r.t.now())
		ok = true
		return nil
	})
	return ok, err
}

func (r inventoryRepo) Adjust(_ context.Context, adj inventory.Adjustment) (*inventory.Level, error) {
	var out *inventory.Level
	err := r.t.do(func(s *state) error {
		k := skuKey{adj.StoreID, adj.SKU}
		l, exists := s.levels[k]
		if !exists {
			if adj.Delta < 0 {
				return notFound("inventory level")
			}
			l = inventory.Level{StoreID: adj.StoreID, SKU: adj.SKU}
		}
		next, err := adj.Apply(l, r.t.now())
		if err != nil {
			return err
		}
		s.levels[k] = next
		appendLog(s, adj.StoreID, adj.SKU, adj.Delta, inventory.ReasonAdjustment, nil, adj.Note, r.t.now())
		out = &next
		return nil
	})
	return out, err
}

func (r inventoryRepo) Logs(_ context.Context, storeID uuid.UUID, sku string, limit int) ([]inventory.LogEntry, error) {
	var out []inventory.LogEntry
	err := r.t.do(func(s *state) error {
		for i := len(s.logs) - 1; i >= 0 && len(out) < limit; i-- {
			if e := s.logs[i]; e.StoreID == storeID && e.SKU == sku {
				out = append(out, e)
			}
		}
		return nil
	})
	return out, err
}

func consumeHold(s *state, k holdKey, held inventory.Hold, qty int64) {
	if qty >= held.Quantity {
		delete(s.holds, k)
		return
	}
	held.Quantity -= qty
	s.holds[k] = held
}

func decrementReserved(s *state, k skuKey, qty int64, now time.Time) {
	l, ok := s.levels[k]
	if !ok {
		return
	}
	l.Reserved = max(l.Reserved-qty, 0)
	l.UpdatedAt = now
	s.levels[k] = l
}

func appendLog(s *state, storeID uuid.UUID, sku string, delta int64, reason inventory.Reason, cartID *uuid.UUID, note string, now time.Time) {
	s.logs = append(s.logs, inventory.LogEntry{
		ID:        uuid.New(),
		StoreID:   storeID,
		SKU:       sku,
		Delta:     delta,
		Reason:    reason,
		CartID:    cartID,
		Note:      note,
		CreatedAt: now,
	})
}

// ----------------------------------------------------------------------------
// carts
// ----------------------------------------------------------------------------

type cartRepo struct{ t *memTx }

func (r cartRepo) Create(_ context.Context, c *cart.Cart) error {
	return r.t.do(func(s *state) error {
		if _, ok := s.stores[c.StoreID()]; !ok {
			return infra.WrapRepoErr("store does not exist", nil, infra.KindForeignKeyViolated)
		}
		if _, dup := s.carts[c.ID()]; dup {
			return infra.WrapRepoErr("cart already exists", nil, infra.KindDuplicateKey)
		}
		s.carts[c.ID()] = c.Snapshot()
		return nil
	})
}

func (r cartRepo) ByID(_ context.Context, id uuid.UUID) (*cart.Cart, error) {
	var out *cart.Cart
	err := r.t.do(func(s *state) error {
		snap, ok := s.carts[id]
		if !ok {
			return notFound("cart")
		}
		snap.Items = slices.Clone(snap.Items)
		out = cart.Reconstruct(snap)
		return nil
	})
	return out, err
}

func (r cartRepo) ByIDForUpdate(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	return r.ByID(ctx, id)
}

func (r cartRepo) ReplaceItems(_ context.Context, c *cart.Cart) error {
	return r.t.do(func(s *state) error {
		snap, ok := s.carts[c.ID()]
		if !ok {
			return notFound("cart")
		}
		snap.Items = cart.SortItems(slices.Clone(c.Items()))
		snap.Version = c.Version()
		snap.UpdatedAt = c.UpdatedAt()
		s.carts[c.ID()] = snap
		return nil
	})
}

func (r cartRepo) SaveDiscount(_ context.Context, c *cart.Cart) error {
	return r.t.do(func(s *state) error {
		snap, ok := s.carts[c.ID()]
		if !ok || snap.Status != cart.StatusOpen {
			return cart.ErrNotOpen
		}
		snap.DiscountID = c.DiscountID()
		snap.DiscountCode = c.DiscountCode()
		snap.DiscountAmountCents = c.DiscountAmountCents()
		snap.Version = c.Version()
		snap.UpdatedAt = c.UpdatedAt()
		s.carts[c.ID()] = snap
		return nil
	})
}

func (r cartRepo) MarkCheckedOut(_ context.Context, c *cart.Cart) (bool, error) {
	var ok bool
	err := r.t.do(func(s *state) error {
		snap, exists := s.carts[c.ID()]
		if !exists || snap.Status != cart.StatusOpen || snap.Version != c.Version() {
			return nil
		}
		snap.Status = cart.StatusCheckedOut
		snap.CheckoutSessionID = c.CheckoutSessionID()
		snap.DiscountAmountCents = c.DiscountAmountCents()
		snap.UpdatedAt = c.UpdatedAt()
		s.carts[c.ID()] = snap
		ok = true
		return nil
	})
	return ok, err
}

func (r cartRepo) MarkExpired(_ context.Context, cartID uuid.UUID, now time.Time) (bool, error) {
	var ok bool
	err := r.t.do(func(s *state) error {
		snap, exists := s.carts[cartID]
		if !exists || snap.Status != cart.StatusOpen || !snap.ExpiresAt.Before(now) {
			return nil
		}
		snap.Status = cart.StatusExpired
		snap.UpdatedAt = now
		s.carts[cartID] = snap
		ok = true
		return nil
	})
	return ok, err
}

func (r cartRepo) ListExpiredOpen(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	var out []uuid.UUID
	err := r.t.do(func(s *state) error {
		var due []cart.Snapshot
		for _, snap := range s.carts {
			if snap.Status == cart.StatusOpen && snap.ExpiresAt.Before(now) {
				due = append(due, snap)
			}
		}
		slices.SortFunc(due, func(a, b cart.Snapshot) int {
			if c := a.ExpiresAt.Compare(b.ExpiresAt); c != 0 {
				return c
			}
			return strings.Compare(a.ID.String(), b.ID.String())
		})
		for i := 0; i < len(due) && i < limit; i++ {
			out = append(out, due[i].ID)
		}
		return nil
	})
	return out, err
}

// ----------------------------------------------------------------------------
// discounts
// ----------------------------------------------------------------------------

type discountRepo struct{ t *memTx }

func (r discountRepo) ByCode(_ context.Context, storeID uuid.UUID, code string) (*discount.Discount, error) {
	var out *discount.Discount
	err := r.t.do(func(s *state) error {
		for _, p := range s.discounts {
			if p.StoreID == storeID && strings.EqualFold(p.Code, code) {
				d, err := discount.New(p)
				out = d
				return err
			}
		}
		return notFound("discount")
	})
	return out, err
}

func (r discountRepo) ByID(_ context.Context, id uuid.UUID) (*discount.Discount, error) {
	var out *discount.Discount
	err := r.t.do(func(s *state) error {
		p, ok := s.discounts[id]
		if !ok {
			return notFound("discount")
		}
		d, err := discount.New(p)
		out = d
		return err
	})
	return out, err
}

func (r discountRepo) CountCustomerUsages(_ context.Context, discountID uuid.UUID, email string) (int64, error) {
	var n int64
	err := r.t.do(func(s *state) error {
		for _, u := range s.usages {
			if u.DiscountID == discountID && u.CustomerEmail == email {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r discountRepo) IncrementUsage(_ context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := r.t.do(func(s *state) error {
		p, exists := s.discounts[id]
		if !exists || (p.UsageLimit != nil && p.UsageCount >= *p.UsageLimit) {
			return nil
		}
		p.UsageCount++
		s.discounts[id] = p
		ok = true
		return nil
	})
	return ok, err
}

func (r discountRepo) RecordUsage(_ context.Context, u discount.Usage) error {
	return r.t.do(func(s *state) error {
		s.usages = append(s.usages, u)
		return nil
	})
}

// ----------------------------------------------------------------------------
// orders / events
// ----------------------------------------------------------------------------

type orderRepo struct{ t *memTx }

func (r orderRepo) Create(_ context.Context, o *order.Order) error {
	return r.t.do(func(s *state) error {
		snap := o.Snapshot()
		for _, existing := range s.orders {
			if snap.CartID != nil && existing.CartID != nil && *existing.CartID == *snap.CartID {
				return infra.WrapRepoErr("order already exists for cart", nil, infra.KindDuplicateKey)
			}
			if existing.StoreID == snap.StoreID && existing.Number == snap.Number {
				return infra.WrapRepoErr("order number already used", nil, infra.KindDuplicateKey)
			}
		}
		s.orders[snap.ID] = snap
		return nil
	})
}

func (r orderRepo) ExistsForCart(_ context.Context, cartID uuid.UUID) (bool, error) {
	var exists bool
	err := r.t.do(func(s *state) error {
		for _, o := range s.orders {
			if o.CartID != nil && *o.CartID == cartID {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

func (r orderRepo) ByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	var out *order.Order
	err := r.t.do(func(s *state) error {
		snap, ok := s.orders[id]
		if !ok {
			return notFound("order")
		}
		snap.Items = slices.Clone(snap.Items)
		out = order.Reconstruct(snap)
		return nil
	})
	return out, err
}

func (r orderRepo) ByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.ByID(ctx, id)
}

func (r orderRepo) Save(_ context.Context, o *order.Order) error {
	return r.t.do(func(s *state) error {
		snap, ok := s.orders[o.ID()]
		if !ok {
			return notFound("order")
		}
		snap.Status = o.Status()
		snap.RefundedCents = o.RefundedCents()
		snap.TrackingNumber = o.TrackingNumber()
		snap.UpdatedAt = o.UpdatedAt()
		s.orders[o.ID()] = snap
		return nil
	})
}

type eventRepo struct{ t *memTx }

func (r eventRepo) Record(_ context.Context, e event.ProcessorEvent) (bool, error) {
	var inserted bool
	err := r.t.do(func(s *state) error {
		if _, dup := s.events[e.ID]; dup {
			return nil
		}
		s.events[e.ID] = e
		inserted = true
		return nil
	})
	return inserted, err
}

// ----------------------------------------------------------------------------
// subscriptions / outbox
// ----------------------------------------------------------------------------

type deliveryRepo struct{ t *memTx }

func (r deliveryRepo) ActiveSubscriptions(_ context.Context, storeID uuid.UUID) ([]event.Subscription, error) {
	var out []event.Subscription
	err := r.t.do(func(s *state) error {
		for _, sub := range s.subs {
			if sub.StoreID == storeID && sub.Active {
				out = append(out, sub)
			}
		}
		slices.SortFunc(out, func(a, b event.Subscription) int { return strings.Compare(a.ID.String(), b.ID.String()) })
		return nil
	})
	return out, err
}

func (r deliveryRepo) Enqueue(_ context.Context, ds []event.Delivery) error {
	return r.t.do(func(s *state) error {
		for _, d := range ds {
			if _, ok := s.subs[d.SubscriptionID]; !ok {
				return infra.WrapRepoErr("subscription does not exist", nil, infra.KindForeignKeyViolated)
			}
			s.deliveries[d.ID] = d
		}
		return nil
	})
}

func (r deliveryRepo) Targets(_ context.Context, ids []uuid.UUID) ([]event.Target, error) {
	var out []event.Target
	err := r.t.do(func(s *state) error {
		for _, id := range ids {
			d, ok := s.deliveries[id]
			if !ok || d.Status != event.DeliveryPending {
				continue
			}
			if sub, ok := s.subs[d.SubscriptionID]; ok && sub.Active {
				out = append(out, event.Target{Delivery: d, URL: sub.URL, Secret: sub.Secret})
			}
		}
		return nil
	})
	return out, err
}

func (r deliveryRepo) Due(_ context.Context, now time.Time, maxAttempts, limit int) ([]event.Target, error) {
	var out []event.Target
	err := r.t.do(func(s *state) error {
		for _, d := range s.deliveries {
			if d.Status == event.DeliveryDelivered || d.NextAttemptAt.After(now) || d.Attempts >= maxAttempts {
				continue
			}
			if sub, ok := s.subs[d.SubscriptionID]; ok && sub.Active {
				out = append(out, event.Target{Delivery: d, URL: sub.URL, Secret: sub.Secret})
			}
		}
		slices.SortFunc(out, func(a, b event.Target) int {
			if c := a.Delivery.NextAttemptAt.Compare(b.Delivery.NextAttemptAt); c != 0 {
				return c
			}
			return strings.Compare(a.Delivery.ID.String(), b.Delivery.ID.String())
		})
		if len(out) > limit {
			out = out[:limit]
		}
		return nil
	})
	return out, err
}

func (r deliveryRepo) Save(_ context.Context, d event.Delivery) error {
	return r.t.do(func(s *state) error {
		if _, ok := s.deliveries[d.ID]; !ok {
			return notFound("delivery")
		}
		s.deliveries[d.ID] = d
		return nil
	})
}
