//go:build unit

package memstore

import (
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

	"github.com/google/uuid"
)

func (m *Store) AddStore(s store.Store) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live.stores[s.ID] = storeRow{store: s}
}

func (m *Store) AddVariant(v catalog.Variant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live.variants[skuKey{v.StoreID, v.SKU}] = v
}

func (m *Store) SetLevel(storeID uuid.UUID, sku string, onHand, reserved int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live.levels[skuKey{storeID, sku}] = inventory.Level{StoreID: storeID, SKU: sku, OnHand: onHand, Reserved: reserved}
}

func (m *Store) SetHold(h inventory.Hold) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live.holds[holdKey{h.CartID, h.SKU}] = h
}

func (m *Store) AddDiscount(p discount.Params) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.Code = discount.NormalizeCode(p.Code)
	m.live.discounts[p.ID] = p
}

func (m *Store) AddSubscription(s event.Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live.subs[s.ID] = s
}

func (m *Store) PutCart(s cart.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.Items = slices.Clone(s.Items)
	m.live.carts[s.ID] = s
}

func (m *Store) PutOrder(s order.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.Items = slices.Clone(s.Items)
	m.live.orders[s.ID] = s
}

func (m *Store) Level(storeID uuid.UUID, sku string) (inventory.Level, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.live.levels[skuKey{storeID, sku}]
	return l, ok
}

func (m *Store) Cart(id uuid.UUID) (cart.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.live.carts[id]
	return s, ok
}

func (m *Store) Discount(id uuid.UUID) (discount.Params, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.live.discounts[id]
	return p, ok
}

// Holds returns the cart's holds keyed by sku.
func (m *Store) Holds(cartID uuid.UUID) map[string]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int64{}
	for k, h := range m.live.holds {
		if k.cartID == cartID {
			out[k.sku] = h.Quantity
		}
	}
	return out
}

func (m *Store) Orders() []order.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]order.Snapshot, 0, len(m.live.orders))
	for _, o := range m.live.orders {
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b order.Snapshot) int { return strings.Compare(a.Number, b.Number) })
	return out
}

func (m *Store) Order(id uuid.UUID) (order.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.live.orders[id]
	return o, ok
}

func (m *Store) Deliveries() []event.Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]event.Delivery, 0, len(m.live.deliveries))
	for _, d := range m.live.deliveries {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b event.Delivery) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out
}

func (m *Store) Usages() []discount.Usage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.live.usages)
}

// Logs returns the inventory ledger for sku in insertion order.
func (m *Store) Logs(storeID uuid.UUID, sku string) []inventory.LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []inventory.LogEntry
	for _, e := range m.live.logs {
		if e.StoreID == storeID && e.SKU == sku {
			out = append(out, e)
		}
	}
	return out
}

func (m *Store) EventCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live.events)
}

// SetNextAttempt rewinds a delivery's schedule so a retry pass picks it up.
func (m *Store) SetNextAttempt(id uuid.UUID, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.live.deliveries[id]
	d.NextAttemptAt = at
	m.live.deliveries[id] = d
}
