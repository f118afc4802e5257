package bootstrap

import (
	"context"

	"github.com/Thegreatsura/merchant/internal/infra/db"
	"github.com/Thegreatsura/merchant/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
		NewDBTX,
	),
)

func NewDB(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	pool, cleanup, err := db.Connect(context.Background(), cfg.DB)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return pool, nil
}

// NewDBTX exposes the pool to read stores, which run outside transactions.
func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
