package uow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/infra/db"
	"github.com/enviofleett/smallchops-09-sub001/internal/infra/readstore"
	"github.com/enviofleett/smallchops-09-sub001/internal/infra/repository"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/errs"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool *pgxpool.Pool
	q    *db.Queries
}

func NewPostgresUoW(pool *pgxpool.Pool, q *db.Queries) shared.UnitOfWork {
	return &PostgresUoW{
		pool: pool,
		q:    q,
	}
}

// ReadCommitted is enough: the completion ledger relies on its primary key, not on isolation.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return &commandReads{uow: u, dbtx: u.pool}
}

const (
	txMaxRetries  = 3
	txBaseBackoff = 100 * time.Millisecond
)

// runInTx retries serialization failures and deadlocks with jittered exponential backoff.
// Each attempt commits or rolls back before the next begins.
func (u *PostgresUoW) runInTx(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	attempt := 0
	op := func() error {
		attempt++
		err := u.attempt(ctx, options, fn)
		if err == nil || !isRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		slog.Warn("retrying checkout transaction",
			slog.Int("attempt", attempt),
			slog.Int64("wait_ms", wait.Milliseconds()),
			slog.String("error", err.Error()))
	}

	err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(newTxBackoff(), txMaxRetries), ctx), notify)
	if err != nil && isRetryableError(err) {
		slog.Error("transaction failed after max retries",
			slog.Int("attempts", attempt),
			slog.String("error", err.Error()))
		return errs.Mark(err, errMaxRetriesExceeded)
	}
	return err
}

func (u *PostgresUoW) attempt(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, options)
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}

	err = fn(ctx, &pgTx{dbtx: pgxTx, uow: u})
	if err == nil {
		if err = pgxTx.Commit(ctx); err == nil {
			return nil
		}
		err = errs.Mark(err, errTransactionCommit)
	}

	if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
		slog.Warn("rollback failed", slog.String("error", rollbackErr.Error()))
	}
	return err
}

func newTxBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = txBaseBackoff
	b.RandomizationFactor = 0.2
	b.Multiplier = 2
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx db.DBTX
	uow  *PostgresUoW

	completionRepo   shared.CompletionRepository
	notificationRepo shared.NotificationRepository
	commandReads     shared.CommandReads
}

func (t *pgTx) Completions() shared.CompletionRepository {
	if t.completionRepo == nil {
		t.completionRepo = repository.NewCompletionRepository(t.uow.q, t.dbtx)
	}
	return t.completionRepo
}

func (t *pgTx) Notifications() shared.NotificationRepository {
	if t.notificationRepo == nil {
		t.notificationRepo = repository.NewNotificationRepository(t.uow.q, t.dbtx)
	}
	return t.notificationRepo
}

func (t *pgTx) Reads() shared.CommandReads {
	if t.commandReads == nil {
		t.commandReads = &commandReads{
			uow:  t.uow,
			dbtx: t.dbtx,
		}
	}
	return t.commandReads
}

type commandReads struct {
	uow  *PostgresUoW
	dbtx db.DBTX

	fulfillmentStore *readstore.FulfillmentReadStore
	completionStore  *readstore.CompletionReadStore
}

func (r *commandReads) fulfillment() *readstore.FulfillmentReadStore {
	if r.fulfillmentStore == nil {
		r.fulfillmentStore = readstore.NewFulfillmentReadStore(r.uow.q, r.dbtx)
	}
	return r.fulfillmentStore
}

func (r *commandReads) ZoneByID(ctx context.Context, id uuid.UUID) (*shared.ZoneSnapshot, error) {
	return r.fulfillment().ZoneByID(ctx, id)
}

func (r *commandReads) PickupPointByID(ctx context.Context, id uuid.UUID) (*shared.PickupPointSnapshot, error) {
	return r.fulfillment().PickupPointByID(ctx, id)
}

func (r *commandReads) CompletionByReference(ctx context.Context, reference string) (*shared.CompletionRecord, error) {
	if r.completionStore == nil {
		r.completionStore = readstore.NewCompletionReadStore(r.uow.q, r.dbtx)
	}
	return r.completionStore.FindByReference(ctx, reference)
}
