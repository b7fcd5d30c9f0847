package components

import (
	"context"

	"github.com/enviofleett/smallchops-09-sub001/internal/handler"
	"github.com/enviofleett/smallchops-09-sub001/internal/handler/api"
	"github.com/enviofleett/smallchops-09-sub001/internal/handler/middleware"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewCheckoutHandler,
		api.NewPaymentHandler,
		api.NewAvailabilityHandler,
		middleware.NewAuthMiddleware,
		NewProbes,
		func(checkoutHandler *api.CheckoutHandler, paymentHandler *api.PaymentHandler, availabilityHandler *api.AvailabilityHandler, probes []handler.Probe) handler.Handlers {
			return handler.Handlers{
				Checkout:     checkoutHandler,
				Payment:      paymentHandler,
				Availability: availabilityHandler,
				Probes:       probes,
			}
		},
	),
	fx.Invoke(handler.NewRouter),
)

// NewProbes covers the stores every checkout request depends on.
func NewProbes(pool *pgxpool.Pool, rdb *redis.Client) []handler.Probe {
	return []handler.Probe{
		{Name: "postgres", Check: pool.Ping},
		{Name: "redis", Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	}
}
