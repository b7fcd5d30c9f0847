package publisher

import (
	"context"
	"log/slog"
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/clock"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/config"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"
)

const maxRetryDelay = time.Hour

// OutboxPoller drains notification_jobs to the broker. Delivery is at least once.
type OutboxPoller struct {
	uow       shared.UnitOfWork
	publisher Publisher
	clock     clock.Clock

	interval    time.Duration
	batchSize   int
	maxAttempts int
}

func NewOutboxPoller(uow shared.UnitOfWork, publisher Publisher, clk clock.Clock, cfg config.BrokerConfig) *OutboxPoller {
	return &OutboxPoller{
		uow:         uow,
		publisher:   publisher,
		clock:       clk,
		interval:    cfg.PollInterval,
		batchSize:   cfg.BatchSize,
		maxAttempts: cfg.MaxAttempts,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := p.PollOnce(ctx); err != nil {
				slog.Error("outbox poll failed", slog.String("error", err.Error()))
			}
		case <-ctx.Done():
			return
		}
	}
}

// PollOnce claims one batch of due jobs and publishes them. It returns how many were sent.
func (p *OutboxPoller) PollOnce(ctx context.Context) (int, error) {
	sent := 0
	err := p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		sent = 0
		now := p.clock.Now()
		jobs, err := tx.Notifications().ClaimDue(ctx, now, p.batchSize)
		if err != nil {
			return err
		}

		for _, job := range jobs {
			if pubErr := p.publisher.Publish(ctx, job.Topic, job.Payload); pubErr != nil {
				dead := job.Attempts >= p.maxAttempts
				slog.Warn("failed to publish notification job",
					slog.String("job_id", job.ID.String()),
					slog.String("topic", job.Topic),
					slog.Int("attempts", job.Attempts),
					slog.Bool("dead", dead),
					slog.String("error", pubErr.Error()))
				if err := tx.Notifications().MarkFailed(ctx, job.ID, pubErr.Error(), now.Add(p.retryDelay(job.Attempts)), dead); err != nil {
					return err
				}
				continue
			}

			if job.LastError != "" {
				slog.Info("notification job recovered",
					slog.String("job_id", job.ID.String()),
					slog.Int("attempts", job.Attempts),
					slog.String("previous_error", job.LastError))
			}
			if err := tx.Notifications().MarkSent(ctx, job.ID, now); err != nil {
				return err
			}
			sent++
		}
		return nil
	})
	return sent, err
}

func (p *OutboxPoller) retryDelay(attempts int) time.Duration {
	delay := p.interval
	for i := 1; i < attempts && delay < maxRetryDelay; i++ {
		delay *= 2
	}
	if delay > maxRetryDelay {
		return maxRetryDelay
	}
	return delay
}
