package shared

//go:generate mockgen -source=uow.go -destination=../../../tests/mock/shared/uow_mock.go -package=sharedmock

import (
	"context"
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

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: Each statement commits on its own. Saga steps run here.
	WithDB(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Stores() StoreRepository
	Catalog() CatalogRepository
	Inventory() InventoryRepository
	Carts() CartRepository
	Discounts() DiscountRepository
	Orders() OrderRepository
	Events() EventRepository
	Deliveries() DeliveryRepository
}

type StoreRepository interface {
	ByID(ctx context.Context, id uuid.UUID) (*store.Store, error)
	// NextOrderSeq atomically increments and returns the store's order counter.
	NextOrderSeq(ctx context.Context, id uuid.UUID) (int64, error)
}

type CatalogRepository interface {
	VariantsBySKU(ctx context.Context, storeID uuid.UUID, skus []string) (map[string]catalog.Variant, error)
}

type InventoryRepository interface {
	Get(ctx context.Context, storeID uuid.UUID, sku string) (*inventory.Level, error)
	GetMany(ctx context.Context, storeID uuid.UUID, skus []string) (map[string]inventory.Level, error)
	// Reserve is one conditional update: false means on_hand - reserved < qty.
	Reserve(ctx context.Context, hold inventory.Hold) (bool, error)
	// Release gives back up to hold.Quantity of the cart's hold and returns the released quantity (0 when none).
	Release(ctx context.Context, hold inventory.Hold) (int64, error)
	ReleaseCart(ctx context.Context, cartID uuid.UUID) ([]inventory.Hold, error)
	// Sell converts the cart's hold into a permanent debit. false means a shortfall; nothing changed.
	Sell(ctx context.Context, storeID, cartID uuid.UUID, sku string, qty int64) (bool, error)
	Adjust(ctx context.Context, adj inventory.Adjustment) (*inventory.Level, error)
	Logs(ctx context.Context, storeID uuid.UUID, sku string, limit int) ([]inventory.LogEntry, error)
}

type CartRepository interface {
	Create(ctx context.Context, c *cart.Cart) error
	ByID(ctx context.Context, id uuid.UUID) (*cart.Cart, error)
	// ByIDForUpdate locks the cart row for the rest of the transaction.
	ByIDForUpdate(ctx context.Context, id uuid.UUID) (*cart.Cart, error)
	ReplaceItems(ctx context.Context, c *cart.Cart) error
	SaveDiscount(ctx context.Context, c *cart.Cart) error
	// MarkCheckedOut and MarkExpired are conditional on status = open; false means the cart moved on.
	// MarkCheckedOut also requires the stored version to equal c.Version().
	MarkCheckedOut(ctx context.Context, c *cart.Cart) (bool, error)
	MarkExpired(ctx context.Context, cartID uuid.UUID, now time.Time) (bool, error)
	ListExpiredOpen(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}

type DiscountRepository interface {
	ByCode(ctx context.Context, storeID uuid.UUID, code string) (*discount.Discount, error)
	ByID(ctx context.Context, id uuid.UUID) (*discount.Discount, error)
	CountCustomerUsages(ctx context.Context, discountID uuid.UUID, email string) (int64, error)
	// IncrementUsage bumps usage_count only while under usage_limit.
	IncrementUsage(ctx context.Context, id uuid.UUID) (bool, error)
	RecordUsage(ctx context.Context, u discount.Usage) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *order.Order) error
	ExistsForCart(ctx context.Context, cartID uuid.UUID) (bool, error)
	ByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	ByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error)
	Save(ctx context.Context, o *order.Order) error
}

type EventRepository interface {
	// Record inserts the event id once. false means it was already processed.
	Record(ctx context.Context, e event.ProcessorEvent) (bool, error)
}

type DeliveryRepository interface {
	ActiveSubscriptions(ctx context.Context, storeID uuid.UUID) ([]event.Subscription, error)
	Enqueue(ctx context.Context, ds []event.Delivery) error
	Targets(ctx context.Context, ids []uuid.UUID) ([]event.Target, error)
	Due(ctx context.Context, now time.Time, maxAttempts, limit int) ([]event.Target, error)
	Save(ctx context.Context, d event.Delivery) error
}
