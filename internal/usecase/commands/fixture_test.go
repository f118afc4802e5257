//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/cart"
	"github.com/Thegreatsura/merchant/internal/pkg/clock"
	"github.com/Thegreatsura/merchant/internal/pkg/config"
	"github.com/Thegreatsura/merchant/internal/pkg/metrics"
	"github.com/Thegreatsura/merchant/internal/usecase/commands"
	"github.com/Thegreatsura/merchant/tests/common/builder"
	"github.com/Thegreatsura/merchant/tests/common/memstore"
	sharedmock "github.com/Thegreatsura/merchant/tests/mock/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var t0 = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

const webhookSecret = "whsec_test_secret"

type fixture struct {
	t          *testing.T
	ctx        context.Context
	clock      *clock.MockClock
	db         *memstore.Store
	gateway    *sharedmock.MockPaymentGateway
	dispatcher *sharedmock.MockDispatcher
	stream     *sharedmock.MockEventStream
	cfg        config.Config
	metrics    *metrics.Metrics
	storeID    uuid.UUID

	webhookCommands commands.WebhookCommands
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	clk := clock.NewMockClock(t0)

	f := &fixture{
		t:          t,
		ctx:        context.Background(),
		clock:      clk,
		db:         memstore.New(clk.Now),
		gateway:    sharedmock.NewMockPaymentGateway(ctrl),
		dispatcher: sharedmock.NewMockDispatcher(ctrl),
		stream:     sharedmock.NewMockEventStream(ctrl),
		cfg:        config.NewTestConfig(),
		metrics:    metrics.NewNop(),
	}

	st := builder.NewStoreBuilder().BuildDomain()
	f.db.AddStore(st)
	f.storeID = st.ID
	return f
}

func (f *fixture) addVariant(sku string, priceCents, onHand int64) {
	f.t.Helper()
	f.db.AddVariant(builder.NewVariantBuilder(f.storeID, sku).With(func(b *builder.VariantBuilder) {
		b.PriceCents = priceCents
	}).BuildDomain())
	f.db.SetLevel(f.storeID, sku, onHand, 0)
}

func (f *fixture) carts() commands.CartCommands {
	return commands.NewCartCommands(f.db, f.gateway, f.clock, f.cfg, f.metrics)
}

func (f *fixture) deliveries() commands.DeliveryCommands {
	return commands.NewDeliveryCommands(f.db, f.dispatcher, f.clock, f.cfg, f.metrics)
}

// webhooks is one instance per fixture so Drain sees the work HandlePaymentEvent started.
func (f *fixture) webhooks() commands.WebhookCommands {
	if f.webhookCommands == nil {
		f.webhookCommands = commands.NewWebhookCommands(f.db, f.gateway, f.deliveries(), f.stream, f.clock, f.metrics)
	}
	return f.webhookCommands
}

// openCart creates a cart holding lines through the public commands.
func (f *fixture) openCart(lines ...cart.Line) uuid.UUID {
	f.t.Helper()
	res, err := f.carts().CreateCart(f.ctx, f.storeID, "shopper@example.com", "")
	require.NoError(f.t, err)
	if len(lines) > 0 {
		_, err = f.carts().ReplaceItems(f.ctx, f.storeID, res.Cart.ID, lines)
		require.NoError(f.t, err)
	}
	return res.Cart.ID
}

func (f *fixture) reserved(sku string) int64 {
	f.t.Helper()
	l, ok := f.db.Level(f.storeID, sku)
	require.True(f.t, ok, "no inventory level for %s", sku)
	return l.Reserved
}

func (f *fixture) onHand(sku string) int64 {
	f.t.Helper()
	l, ok := f.db.Level(f.storeID, sku)
	require.True(f.t, ok, "no inventory level for %s", sku)
	return l.OnHand
}

func line(sku string, qty int64) cart.Line {
	return cart.Line{SKU: sku, Quantity: qty}
}

func ptr[T any](v T) *T {
	return &v
}
