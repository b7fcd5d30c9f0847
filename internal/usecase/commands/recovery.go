package commands

import (
	"context"
	"log/slog"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/checkout"
	"github.com/enviofleett/smallchops-09-sub001/internal/domain/payment"
	"github.com/enviofleett/smallchops-09-sub001/internal/infra"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/clock"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/errs"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"
)

// RecoveryManager decides where a customer re-entering checkout lands.
type RecoveryManager interface {
	Resume(ctx context.Context, identity checkout.Identity) (*CheckoutResult, error)
}

type recoveryManagerImpl struct {
	sessions    shared.SessionStore
	carts       shared.CartStore
	coordinator PaymentCoordinator
	machine     *checkout.Machine
	locks       *shared.SessionLocks
	clock       clock.Clock
}

func NewRecoveryManager(
	sessions shared.SessionStore,
	carts shared.CartStore,
	coordinator PaymentCoordinator,
	machine *checkout.Machine,
	locks *shared.SessionLocks,
	clk clock.Clock,
) RecoveryManager {
	return &recoveryManagerImpl{
		sessions:    sessions,
		carts:       carts,
		coordinator: coordinator,
		machine:     machine,
		locks:       locks,
		clock:       clk,
	}
}

func (r *recoveryManagerImpl) Resume(ctx context.Context, identity checkout.Identity) (*CheckoutResult, error) {
	sessionID := identity.SessionKey()
	unlock := r.locks.Lock(sessionID)

	snap, err := r.sessions.Load(ctx, sessionID)
	if err != nil {
		defer unlock()
		switch {
		case infra.IsKind(err, infra.KindNotFound):
			return r.fresh(ctx, identity, sessionID)
		case infra.IsKind(err, infra.KindCorrupted):
			slog.Warn("discarding unreadable checkout snapshot",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()))
			if err := r.sessions.Reset(ctx, sessionID); err != nil {
				return nil, err
			}
			return r.fresh(ctx, identity, sessionID)
		default:
			return nil, err
		}
	}

	attempt := snap.LastAttempt
	switch {
	case (attempt != nil && attempt.Status == payment.StatusSucceeded) || snap.Step() == checkout.StepComplete:
		defer unlock()
		if err := r.sessions.Reset(ctx, sessionID); err != nil {
			return nil, err
		}
		return r.fresh(ctx, identity, sessionID)

	case attempt != nil && attempt.Status == payment.StatusAwaitingGateway:
		// verification re-takes the session lock
		unlock()
		return r.reverify(ctx, sessionID, snap)

	case snap.Step() == checkout.StepProcessing:
		defer unlock()
		return r.interrupted(ctx, sessionID, snap)

	default:
		defer unlock()
		return r.restore(ctx, sessionID, snap)
	}
}

// fresh starts a new checkout from the stored cart.
func (r *recoveryManagerImpl) fresh(ctx context.Context, identity checkout.Identity, sessionID string) (*CheckoutResult, error) {
	items, err := r.carts.Items(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	co, err := r.machine.Start(identity, items)
	if err != nil {
		return nil, err
	}

	snap := &shared.Snapshot{Checkout: *co}
	if err := saveSnapshot(ctx, r.sessions, r.clock, sessionID, snap); err != nil {
		return nil, err
	}
	slog.Info("checkout started", slog.String("session_id", sessionID), slog.String("step", string(co.Step)))
	return newResult(sessionID, snap, r.machine), nil
}

// reverify never trusts a stored awaiting_gateway attempt; the backend decides.
func (r *recoveryManagerImpl) reverify(ctx context.Context, sessionID string, snap *shared.Snapshot) (*CheckoutResult, error) {
	attempt := snap.LastAttempt
	r.coordinator.Adopt(shared.AttemptToken{SessionID: sessionID, AttemptID: attempt.AttemptID})

	outcome, err := r.coordinator.Complete(ctx, sessionID, attempt.Reference, payment.ChannelRecovery)
	if err != nil {
		return r.unconfirmed(sessionID, snap, err), nil
	}

	if outcome.Kind == payment.OutcomeSuccess {
		co := snap.Checkout
		co.Step = checkout.StepComplete
		co.Failure = nil
		return &CheckoutResult{
			SessionID: sessionID,
			Checkout:  co,
			Totals:    r.machine.Totals(co.Draft),
			Outcome:   outcome,
			Resumed:   true,
		}, nil
	}

	current, err := loadSnapshot(ctx, r.sessions, sessionID)
	if err != nil {
		return nil, err
	}
	res := newResult(sessionID, current, r.machine)
	res.Outcome = outcome
	res.Resumed = true
	return res, nil
}

// unconfirmed resumes an attempt the backend could not settle. The attempt stays
// outstanding so the customer can verify again or cancel back to review.
func (r *recoveryManagerImpl) unconfirmed(sessionID string, snap *shared.Snapshot, cause error) *CheckoutResult {
	category := errs.CategoryOf(cause)
	logAttrs := []any{
		slog.String("session_id", sessionID),
		slog.String("reference", snap.LastAttempt.Reference),
		slog.String("category", string(category)),
		slog.String("error", cause.Error()),
	}
	switch category {
	case errs.CategoryNetworkUnavailable, errs.CategoryGatewayTimeout:
		slog.Info("payment still unconfirmed on resume", logAttrs...)
	default:
		slog.Error("payment verification failed on resume", logAttrs...)
	}

	res := newResult(sessionID, snap, r.machine)
	res.Resumed = true
	res.Pending = true
	res.Checkout.Failure = &checkout.Failure{
		Category:  string(category),
		Message:   errs.UserMessage(cause),
		Retryable: true,
	}
	return res
}

// interrupted handles a submission that never reached the gateway, e.g. after a restart.
func (r *recoveryManagerImpl) interrupted(ctx context.Context, sessionID string, snap *shared.Snapshot) (*CheckoutResult, error) {
	cause := errs.Categorize(errs.New("submission interrupted"), errs.CategoryNetworkUnavailable)
	failure := checkout.Failure{
		Category:  string(errs.CategoryNetworkUnavailable),
		Message:   errs.UserMessage(cause),
		Retryable: true,
	}

	if a := snap.LastAttempt; a != nil && a.Status.CanTransitionTo(payment.StatusFailed) {
		if err := a.Fail(failure.Category, cause.Error(), r.clock.Now()); err != nil {
			return nil, err
		}
	}
	r.machine.SubmissionFailed(&snap.Checkout, failure)

	if err := saveSnapshot(ctx, r.sessions, r.clock, sessionID, snap); err != nil {
		return nil, err
	}
	if err := r.sessions.Flush(ctx, sessionID); err != nil {
		return nil, err
	}
	if err := r.sessions.ReleaseInProgress(ctx, sessionID); err != nil {
		return nil, err
	}

	slog.Warn("recovered interrupted submission", slog.String("session_id", sessionID))
	res := newResult(sessionID, snap, r.machine)
	res.Resumed = true
	return res, nil
}

// restore brings back a pre-payment or failed checkout as it was, with the
// latest cart contents while items are still editable.
func (r *recoveryManagerImpl) restore(ctx context.Context, sessionID string, snap *shared.Snapshot) (*CheckoutResult, error) {
	if snap.Checkout.Step.IsPrePayment() {
		items, err := r.carts.Items(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if len(items) > 0 {
			snap.Checkout.Draft.Items = items
			if err := saveSnapshot(ctx, r.sessions, r.clock, sessionID, snap); err != nil {
				return nil, err
			}
		}
	}

	res := newResult(sessionID, snap, r.machine)
	res.Resumed = true
	return res, nil
}
