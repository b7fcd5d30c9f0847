package bootstrap

import (
	"context"
	"log/slog"

	"github.com/enviofleett/smallchops-09-sub001/internal/infra/db"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
)

// NewDB opens the Postgres pool shared by the ledger and outbox repositories.
func NewDB(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	pool, cleanup, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}
	logger.Info("database connected",
		slog.String("host", cfg.DB.Host),
		slog.String("database", cfg.DB.DBName),
		slog.Int("max_conns", int(pool.Config().MaxConns)))

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			stat := pool.Stat()
			logger.Info("database pool stats",
				slog.Int64("acquired", stat.AcquireCount()),
				slog.Int64("empty_acquire", stat.EmptyAcquireCount()),
				slog.Duration("acquire_wait", stat.AcquireDuration()))
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return pool, nil
}
