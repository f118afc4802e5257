//go:build unit

// Package memstore is an in-memory shared.UnitOfWork for use-case tests.
// Within runs serially on a copy of the state and swaps it in on success, so a
// returned error rolls back everything the callback did. WithDB applies each
// repository call to the live state immediately.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/cart"
	"github.com/Thegreatsura/merchant/internal/domain/catalog"
	"github.com/Thegreatsura/merchant/internal/domain/discount"
	"github.com/Thegreatsura/merchant/internal/domain/event"
	"github.com/Thegreatsura/merchant/internal/domain/inventory"
	"github.com/Thegreatsura/merchant/internal/domain/order"
	"github.com/Thegreatsura/merchant/internal/domain/store"
	"github.com/Thegreatsura/merchant/internal/usecase/shared"

	"github.com/google/uuid"
)

type skuKey struct {
	storeID uuid.UUID
	sku     string
}

type holdKey struct {
	cartID uuid.UUID
	sku    string
}

type storeRow struct {
	store store.Store
	seq   int64
}

type state struct {
	stores     map[uuid.UUID]storeRow
	variants   map[skuKey]catalog.Variant
	levels     map[skuKey]inventory.Level
	holds      map[holdKey]inventory.Hold
	logs       []inventory.LogEntry
	carts      map[uuid.UUID]cart.Snapshot
	discounts  map[uuid.UUID]discount.Params
	usages     []discount.Usage
	orders     map[uuid.UUID]order.Snapshot
	events     map[string]event.ProcessorEvent
	subs       map[uuid.UUID]event.Subscription
	deliveries map[uuid.UUID]event.Delivery
}

func newState() *state {
	return &state{
		stores:     map[uuid.UUID]storeRow{},
		variants:   map[skuKey]catalog.Variant{},
		levels:     map[skuKey]inventory.Level{},
		holds:      map[holdKey]inventory.Hold{},
		carts:      map[uuid.UUID]cart.Snapshot{},
		discounts:  map[uuid.UUID]discount.Params{},
		orders:     map[uuid.UUID]order.Snapshot{},
		events:     map[string]event.ProcessorEvent{},
		subs:       map[uuid.UUID]event.Subscription{},
		deliveries: map[uuid.UUID]event.Delivery{},
	}
}

// clone copies every table. Snapshots carry slices, so those are copied too.
func (s *state) clone() *state {
	c := &state{
		stores:     maps.Clone(s.stores),
		variants:   maps.Clone(s.variants),
		levels:     maps.Clone(s.levels),
		holds:      maps.Clone(s.holds),
		logs:       slices.Clone(s.logs),
		carts:      make(map[uuid.UUID]cart.Snapshot, len(s.carts)),
		discounts:  maps.Clone(s.discounts),
		usages:     slices.Clone(s.usages),
		orders:     make(map[uuid.UUID]order.Snapshot, len(s.orders)),
		events:     maps.Clone(s.events),
		subs:       maps.Clone(s.subs),
		deliveries: maps.Clone(s.deliveries),
	}
	for id, snap := range s.carts {
		snap.Items = slices.Clone(snap.Items)
		c.carts[id] = snap
	}
	for id, snap := range s.orders {
		snap.Items = slices.Clone(snap.Items)
		c.orders[id] = snap
	}
	return c
}

type Store struct {
	mu    sync.Mutex
	live  *state
	clock func() time.Time

	// WithinCalls and WithDBCalls count how the use case split its work.
	WithinCalls int
	WithDBCalls int

	// BeforeCommit runs inside Within after the callback succeeds; a non-nil error aborts the commit.
	BeforeCommit func() error
}

var _ shared.UnitOfWork = (*Store)(nil)

func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{live: newState(), clock: now}
}

func (m *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WithinCalls++

	work := m.live.clone()
	if err := fn(ctx, &memTx{m: m, st: work}); err != nil {
		return err
	}
	if m.BeforeCommit != nil {
		if err := m.BeforeCommit(); err != nil {
			return err
		}
	}
	m.live = work
	return nil
}

func (m *Store) WithDB(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	m.mu.Lock()
	m.WithDBCalls++
	m.mu.Unlock()
	return fn(ctx, &memTx{m: m, autocommit: true})
}

// memTx binds repositories either to a transaction-private state or, in
// autocommit mode, to the live state under the store lock per call.
type memTx struct {
	m          *Store
	st         *state
	autocommit bool
}

func (t *memTx) do(f func(s *state) error) error {
	if !t.autocommit {
		return f(t.st)
	}
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	return f(t.m.live)
}

func (t *memTx) now() time.Time { return t.m.clock() }

func (t *memTx) Stores() shared.StoreRepository        { return storeRepo{t} }
func (t *memTx) Catalog() shared.CatalogRepository     { return catalogRepo{t} }
func (t *memTx) Inventory() shared.InventoryRepository { return inventoryRepo{t} }
func (t *memTx) Carts() shared.CartRepository          { return cartRepo{t} }
func (t *memTx) Discounts() shared.DiscountRepository  { return discountRepo{t} }
func (t *memTx) Orders() shared.OrderRepository        { return orderRepo{t} }
func (t *memTx) Events() shared.EventRepository        { return eventRepo{t} }
func (t *memTx) Deliveries() shared.DeliveryRepository { return deliveryRepo{t} }
