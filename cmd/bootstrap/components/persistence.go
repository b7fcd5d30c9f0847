package components

import (
	"context"
	"log/slog"

	"github.com/enviofleett/smallchops-09-sub001/internal/infra/cartstore"
	"github.com/enviofleett/smallchops-09-sub001/internal/infra/db"
	"github.com/enviofleett/smallchops-09-sub001/internal/infra/readstore"
	"github.com/enviofleett/smallchops-09-sub001/internal/infra/sessionstore"
	"github.com/enviofleett/smallchops-09-sub001/internal/infra/uow"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/config"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	repositoryModule,
	sessionModule,
)

var baseOption = fx.Provide(
	NewSQLQueries,
	NewDBTX,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		// Fulfillment directory
		fx.Annotate(
			NewSQLQueries,
			fx.As(new(readstore.FulfillmentReadQueries)),
		),
		fx.Annotate(
			readstore.NewFulfillmentReadStore,
			fx.As(new(shared.FulfillmentDirectory)),
		),
	),
)

var repositoryModule = fx.Module("persistence/repository",
	fx.Provide(
		// UnitOfWork creates the completion and notification repositories per transaction
		uow.NewPostgresUoW,
	),
)

var sessionModule = fx.Module("persistence/session",
	fx.Provide(
		NewSessionStore,
		fx.Annotate(
			NewCartStore,
			fx.As(new(shared.CartStore)),
		),
		shared.NewSessionLocks,
	),
)

// NewSessionStore flushes debounced snapshots before shutdown.
func NewSessionStore(lc fx.Lifecycle, client *redis.Client, cfg config.Config) shared.SessionStore {
	store := sessionstore.NewDebouncedStore(
		sessionstore.NewRedisStore(client, cfg.Redis.SessionTTL),
		cfg.Checkout.SnapshotDelay,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := store.FlushAll(ctx); err != nil {
				slog.Error("failed to flush checkout snapshots", "error", err)
			}
			return nil
		},
	})
	return store
}

func NewCartStore(client *redis.Client, cfg config.Config) *cartstore.RedisCartStore {
	return cartstore.NewRedisCartStore(client, cfg.Redis.CartTTL)
}

func NewSQLQueries(_ *pgxpool.Pool) *db.Queries {
	return db.New()
}

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
