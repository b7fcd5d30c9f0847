package bootstrap

import (
	"log/slog"

	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
	),
	fx.Invoke(LogCheckoutSettings),
)

// LogCheckoutSettings records the checkout policy the process starts with. Secrets are never logged.
func LogCheckoutSettings(cfg config.Config, logger *slog.Logger) {
	c := cfg.Checkout
	if c.RequiresAuth && c.AllowsGuest {
		logger.Warn("CHECKOUT_ALLOWS_GUEST is ignored because CHECKOUT_REQUIRES_AUTH is set")
	}
	if cfg.Gateway.CallbackURL == "" {
		logger.Warn("GATEWAY_CALLBACK_URL is empty; redirect payments cannot return to the site")
	}

	logger.Info("checkout settings",
		slog.String("timezone", c.TimeZone),
		slog.String("opening", c.OpeningTime),
		slog.String("closing", c.ClosingTime),
		slog.Duration("min_lead_time", c.MinLeadTime),
		slog.Duration("slot_granularity", c.SlotGranularity),
		slog.Any("payment_methods", c.PaymentMethods),
		slog.Bool("requires_auth", c.RequiresAuth),
		slog.Bool("schedules_pickup", c.SchedulesPickup),
		slog.Bool("broker_enabled", cfg.Broker.Enabled))
}
