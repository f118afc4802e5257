//go:build unit || integration || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

const TestWebhookSecret = "whsec_test_secret"

func CreateTestStore(t *testing.T, db DBLike, name string) uuid.UUID {
	t.Helper()

	storeID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO stores (id, name, currency, stripe_webhook_secret) VALUES ($1, $2, 'usd', $3)",
		storeID, name, TestWebhookSecret)
	require.NoError(t, err)

	return storeID
}

// CreateTestVariant inserts an active variant with its inventory level.
func CreateTestVariant(t *testing.T, db DBLike, storeID uuid.UUID, sku string, priceCents, onHand int64) {
	t.Helper()

	ctx := context.Background()
	_, err := db.Exec(ctx,
		"INSERT INTO product_variants (store_id, sku, title, price_cents) VALUES ($1, $2, $3, $4)",
		storeID, sku, "Variant "+sku, priceCents)
	require.NoError(t, err)

	_, err = db.Exec(ctx,
		"INSERT INTO inventory_levels (store_id, sku, on_hand) VALUES ($1, $2, $3)",
		storeID, sku, onHand)
	require.NoError(t, err)
}

func CreateTestDiscount(t *testing.T, db DBLike, storeID uuid.UUID, code string, percent int64, usageLimit *int64) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO discounts (id, store_id, code, type, value, usage_limit) VALUES ($1, $2, $3, 'percentage', $4, $5)",
		id, storeID, strings.ToUpper(code), percent, usageLimit)
	require.NoError(t, err)

	return id
}

func CreateTestSubscription(t *testing.T, db DBLike, storeID uuid.UUID, url string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO webhook_subscriptions (id, store_id, url, secret) VALUES ($1, $2, $3, 'sub_secret')",
		id, storeID, url)
	require.NoError(t, err)

	return id
}

func InventoryLevel(t *testing.T, db DBLike, storeID uuid.UUID, sku string) (onHand, reserved int64) {
	t.Helper()

	err := db.QueryRow(context.Background(),
		"SELECT on_hand, reserved FROM inventory_levels WHERE store_id = $1 AND sku = $2",
		storeID, sku).Scan(&onHand, &reserved)
	require.NoError(t, err)

	return onHand, reserved
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}
