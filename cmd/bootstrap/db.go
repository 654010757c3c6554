package bootstrap

import (
	"context"
	"log/slog"

	"coupon-engine/internal/infra/db"
	"coupon-engine/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

// DBModule is only part of the graph for the postgres store driver.
var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
)

func NewDB(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	pool, cleanup, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			slog.InfoContext(ctx, "coupon ledger database ready",
				"host", cfg.DB.Host,
				"database", cfg.DB.DBName,
				"max_conns", cfg.DB.MaxConns)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cleanup()
			return nil
		},
	})

	return pool, nil
}
