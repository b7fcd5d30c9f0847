package bootstrap

import (
	"context"
	"log/slog"

	"github.com/enviofleett/smallchops-09-sub001/internal/infra/publisher"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/clock"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/config"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"

	"go.uber.org/fx"
)

var BrokerModule = fx.Module("broker",
	fx.Invoke(StartOutbox),
)

// StartOutbox runs the outbox poller for the life of the app. Completions are
// still recorded while the broker is disabled; they are published once it is enabled.
func StartOutbox(lc fx.Lifecycle, cfg config.Config, uow shared.UnitOfWork, clk clock.Clock, logger *slog.Logger) {
	if !cfg.Broker.Enabled {
		logger.Info("broker disabled; notification jobs stay queued")
		return
	}

	var (
		pub    *publisher.RabbitPublisher
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			var err error
			pub, err = publisher.DialRabbit(cfg.Broker.URL, cfg.Broker.Exchange)
			if err != nil {
				return err
			}

			poller := publisher.NewOutboxPoller(uow, pub, clk, cfg.Broker)
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			done = make(chan struct{})
			go func() {
				defer close(done)
				poller.Run(ctx)
			}()
			logger.Info("outbox poller started", "exchange", cfg.Broker.Exchange, "interval", cfg.Broker.PollInterval)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
				select {
				case <-done:
				case <-ctx.Done():
				}
			}
			if pub != nil {
				pub.Close()
			}
			logger.Info("outbox poller stopped")
			return nil
		},
	})
}
