package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/checkout"
	"github.com/enviofleett/smallchops-09-sub001/internal/domain/payment"
	"github.com/enviofleett/smallchops-09-sub001/internal/infra"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/clock"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/errs"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	notificationKindPaymentCompleted = "payment_completed"
	topicCheckoutPaid                = "checkout.paid"
	maxProcessedReferences           = 1024
)

type SubmitResult struct {
	Token            shared.AttemptToken
	Attempt          payment.Attempt
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// PaymentCoordinator owns every payment flight. Popup callbacks, redirects and
// manual verification all converge on one completion path, and a reference
// completes at most once.
type PaymentCoordinator interface {
	Submit(ctx context.Context, identity checkout.Identity) (*SubmitResult, error)
	Complete(ctx context.Context, sessionID, reference string, channel payment.Channel) (*payment.Outcome, error)
	CompleteByReference(ctx context.Context, reference string, channel payment.Channel) (*payment.Outcome, error)
	Verify(ctx context.Context, sessionID string) (*payment.Outcome, error)
	Cancel(ctx context.Context, sessionID string) (*payment.Outcome, error)
	Await(ctx context.Context, token shared.AttemptToken) (*payment.Outcome, error)
	Adopt(token shared.AttemptToken)
}

type PaymentConfig struct {
	ConfirmationURL string
}

type flight struct {
	token   shared.AttemptToken
	done    chan struct{}
	outcome *payment.Outcome

	// completing is set while one caller verifies; others wait on settled
	completing bool
	settled    chan struct{}
	result     *payment.Outcome
	resultErr  error
}

func newFlight(token shared.AttemptToken) *flight {
	return &flight{token: token, done: make(chan struct{})}
}

type paymentCoordinatorImpl struct {
	sessions   shared.SessionStore
	carts      shared.CartStore
	uow        shared.UnitOfWork
	backend    shared.OrderBackend
	submission SubmissionService
	machine    *checkout.Machine
	locks      *shared.SessionLocks
	clock      clock.Clock
	cfg        PaymentConfig

	mu        sync.Mutex
	flights   map[string]*flight
	processed map[string]payment.Outcome
	order     []string
}

func NewPaymentCoordinator(
	sessions shared.SessionStore,
	carts shared.CartStore,
	uow shared.UnitOfWork,
	backend shared.OrderBackend,
	submission SubmissionService,
	machine *checkout.Machine,
	locks *shared.SessionLocks,
	clk clock.Clock,
	cfg PaymentConfig,
) PaymentCoordinator {
	return &paymentCoordinatorImpl{
		sessions:   sessions,
		carts:      carts,
		uow:        uow,
		backend:    backend,
		submission: submission,
		machine:    machine,
		locks:      locks,
		clock:      clk,
		cfg:        cfg,
		flights:    map[string]*flight{},
		processed:  map[string]payment.Outcome{},
	}
}

func (c *paymentCoordinatorImpl) openFlight(sessionID string) *flight {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flights[sessionID]
}

func (c *paymentCoordinatorImpl) Adopt(token shared.AttemptToken) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.flights[token.SessionID]; ok && f.token.AttemptID == token.AttemptID {
		return
	}
	c.flights[token.SessionID] = newFlight(token)
}

// finish resolves the session's flight with outcome and forgets it.
func (c *paymentCoordinatorImpl) finish(sessionID string, attemptID uuid.UUID, outcome payment.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.flights[sessionID]
	if !ok || f.token.AttemptID != attemptID {
		return
	}
	f.outcome = &outcome
	close(f.done)
	delete(c.flights, sessionID)
}

func (c *paymentCoordinatorImpl) Submit(ctx context.Context, identity checkout.Identity) (*SubmitResult, error) {
	sessionID := identity.SessionKey()

	if c.openFlight(sessionID) != nil {
		return nil, errs.ErrSubmissionInProgress
	}

	unlock := c.locks.Lock(sessionID)
	defer unlock()

	snap, err := loadSnapshot(ctx, c.sessions, sessionID)
	if err != nil {
		return nil, err
	}
	if err := c.machine.EnterProcessing(&snap.Checkout); err != nil {
		return nil, err
	}

	attemptID := uuid.New()
	acquired, err := c.sessions.AcquireInProgress(ctx, sessionID, attemptID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, errs.ErrSubmissionInProgress
	}

	token := shared.AttemptToken{SessionID: sessionID, AttemptID: attemptID}
	c.mu.Lock()
	if _, busy := c.flights[sessionID]; busy {
		c.mu.Unlock()
		c.releaseMarker(ctx, sessionID)
		return nil, errs.ErrSubmissionInProgress
	}
	c.flights[sessionID] = newFlight(token)
	c.mu.Unlock()

	now := c.clock.Now()
	existing := existingOrder(snap.LastAttempt)
	attempt := payment.NewAttempt(attemptID, now)
	if existing != nil {
		attempt.RecordOrder(existing.OrderID, existing.OrderNumber)
	}
	snap.LastAttempt = attempt

	if err := c.persist(ctx, sessionID, snap); err != nil {
		c.abortFlight(ctx, sessionID, attemptID)
		return nil, err
	}

	init, subErr := c.submission.Submit(ctx, SubmissionInput{
		AttemptID:    attemptID,
		Identity:     identity,
		Draft:        snap.Checkout.Draft,
		Totals:       c.machine.Totals(snap.Checkout.Draft),
		Existing:     existing,
		// a window picked before switching to pickup stays in the draft
		OmitSchedule: !c.machine.ScheduleApplies(snap.Checkout.Draft),
	})
	if subErr != nil {
		return nil, c.submissionFailed(ctx, sessionID, snap, subErr)
	}

	if err := attempt.AwaitGateway(*init, c.clock.Now()); err != nil {
		return nil, c.submissionFailed(ctx, sessionID, snap, err)
	}
	if err := c.sessions.SetReference(ctx, sessionID, init.Reference); err != nil {
		return nil, c.submissionFailed(ctx, sessionID, snap, err)
	}
	if err := c.persist(ctx, sessionID, snap); err != nil {
		return nil, c.submissionFailed(ctx, sessionID, snap, err)
	}

	slog.Info("payment attempt awaiting gateway",
		slog.String("session_id", sessionID),
		slog.String("attempt_id", attemptID.String()),
		slog.String("order_id", init.OrderID),
		slog.String("reference", init.Reference))

	return &SubmitResult{
		Token:            token,
		Attempt:          *attempt,
		AuthorizationURL: init.AuthorizationURL,
		AccessCode:       init.AccessCode,
		Reference:        init.Reference,
	}, nil
}

// submissionFailed returns the checkout to review with the draft intact and
// keeps any order the backend created so the retry reuses it.
func (c *paymentCoordinatorImpl) submissionFailed(ctx context.Context, sessionID string, snap *shared.Snapshot, cause error) error {
	attempt := snap.LastAttempt

	var missing *PaymentMissingError
	if errors.As(cause, &missing) {
		attempt.RecordOrder(missing.OrderID, missing.OrderNumber)
	}

	category := errs.CategoryOf(cause)
	failure := checkout.Failure{
		Category:  string(category),
		Message:   errs.UserMessage(cause),
		Retryable: errs.Retryable(cause),
	}
	if err := attempt.Fail(string(category), cause.Error(), c.clock.Now()); err != nil {
		slog.Warn("could not mark attempt failed", slog.String("error", err.Error()))
	}
	c.machine.SubmissionFailed(&snap.Checkout, failure)

	slog.Warn("order submission failed",
		slog.String("session_id", sessionID),
		slog.String("attempt_id", attempt.AttemptID.String()),
		slog.String("category", string(category)),
		slog.String("error", cause.Error()))

	if err := c.persist(ctx, sessionID, snap); err != nil {
		slog.Error("failed to persist failed submission", slog.String("error", err.Error()))
	}
	c.releaseMarker(ctx, sessionID)
	c.finish(sessionID, attempt.AttemptID, payment.Outcome{
		Kind:      payment.OutcomeFailure,
		Category:  failure.Category,
		Message:   failure.Message,
		Retryable: failure.Retryable,
	})
	return cause
}

func (c *paymentCoordinatorImpl) abortFlight(ctx context.Context, sessionID string, attemptID uuid.UUID) {
	c.releaseMarker(ctx, sessionID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.flights[sessionID]; ok && f.token.AttemptID == attemptID {
		close(f.done)
		delete(c.flights, sessionID)
	}
}

func (c *paymentCoordinatorImpl) releaseMarker(ctx context.Context, sessionID string) {
	if err := c.sessions.ReleaseInProgress(ctx, sessionID); err != nil {
		slog.Error("failed to release in-progress marker",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
	}
}

// persist writes the snapshot through immediately; payment steps are never debounced.
func (c *paymentCoordinatorImpl) persist(ctx context.Context, sessionID string, snap *shared.Snapshot) error {
	if err := saveSnapshot(ctx, c.sessions, c.clock, sessionID, snap); err != nil {
		return err
	}
	return c.sessions.Flush(ctx, sessionID)
}

func (c *paymentCoordinatorImpl) Verify(ctx context.Context, sessionID string) (*payment.Outcome, error) {
	return c.Complete(ctx, sessionID, "", payment.ChannelVerify)
}

func (c *paymentCoordinatorImpl) CompleteByReference(ctx context.Context, reference string, channel payment.Channel) (*payment.Outcome, error) {
	if reference == "" {
		return nil, errs.ErrNoActiveAttempt
	}
	if outcome, ok := c.processedOutcome(reference); ok {
		return &outcome, nil
	}

	sessionID, err := c.sessions.SessionByReference(ctx, reference)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return c.fromLedger(ctx, reference, channel)
		}
		return nil, err
	}
	return c.Complete(ctx, sessionID, reference, channel)
}

// Complete verifies the attempt with the backend and applies the result. A
// second caller for the same flight waits for the first one's result.
func (c *paymentCoordinatorImpl) Complete(ctx context.Context, sessionID, reference string, channel payment.Channel) (*payment.Outcome, error) {
	if reference != "" {
		if outcome, ok := c.processedOutcome(reference); ok {
			return &outcome, nil
		}
	}

	c.mu.Lock()
	f := c.flights[sessionID]
	if f != nil {
		if f.completing {
			settled := f.settled
			c.mu.Unlock()
			select {
			case <-settled:
				return f.result, f.resultErr
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		f.completing = true
		f.settled = make(chan struct{})
	}
	c.mu.Unlock()

	outcome, err := c.complete(ctx, sessionID, reference, channel)

	if f != nil {
		c.mu.Lock()
		f.result, f.resultErr = outcome, err
		f.completing = false
		close(f.settled)
		c.mu.Unlock()
	}
	return outcome, err
}

func (c *paymentCoordinatorImpl) complete(ctx context.Context, sessionID, reference string, channel payment.Channel) (*payment.Outcome, error) {
	unlock := c.locks.Lock(sessionID)
	defer unlock()

	snap, err := c.sessions.Load(ctx, sessionID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) && reference != "" {
			return c.fromLedger(ctx, reference, channel)
		}
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrNoActiveAttempt
		}
		return nil, err
	}

	attempt := snap.LastAttempt
	if attempt == nil || attempt.Reference == "" {
		return nil, errs.ErrNoActiveAttempt
	}
	if reference != "" && reference != attempt.Reference {
		slog.Warn("ignoring result for superseded payment reference",
			slog.String("session_id", sessionID),
			slog.String("reference", reference),
			slog.String("current_reference", attempt.Reference),
			slog.String("channel", string(channel)))
		return nil, errs.ErrStaleReference
	}
	reference = attempt.Reference

	if outcome, ok := c.processedOutcome(reference); ok {
		return &outcome, nil
	}

	verification, err := c.backend.VerifyPayment(ctx, reference)
	if err != nil {
		slog.Warn("payment verification unavailable",
			slog.String("session_id", sessionID),
			slog.String("reference", reference),
			slog.String("channel", string(channel)),
			slog.String("error", err.Error()))
		return nil, err
	}

	switch verification.Status {
	case payment.VerificationSuccess:
		return c.succeed(ctx, sessionID, snap, verification, channel)
	case payment.VerificationFailed, payment.VerificationAbandoned:
		return c.decline(ctx, sessionID, snap, verification, channel)
	default:
		return nil, errs.Categorize(errs.Newf("payment %s is still pending", reference), errs.CategoryGatewayTimeout)
	}
}

func (c *paymentCoordinatorImpl) succeed(ctx context.Context, sessionID string, snap *shared.Snapshot, v *payment.Verification, channel payment.Channel) (*payment.Outcome, error) {
	attempt := snap.LastAttempt
	now := c.clock.Now()

	rec := shared.CompletionRecord{
		Reference:   attempt.Reference,
		SessionID:   sessionID,
		OrderID:     firstNonEmpty(v.OrderID, attempt.OrderID),
		OrderNumber: firstNonEmpty(v.OrderNumber, attempt.OrderNumber),
		AmountKobo:  v.AmountKobo,
		Channel:     string(channel),
		CompletedAt: now,
	}
	payload, err := json.Marshal(completionEvent{
		Reference:     rec.Reference,
		OrderID:       rec.OrderID,
		OrderNumber:   rec.OrderNumber,
		AmountKobo:    rec.AmountKobo,
		SessionID:     sessionID,
		Channel:       rec.Channel,
		CustomerEmail: snap.Checkout.Draft.Contact.Email,
		CompletedAt:   now,
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode completion event")
	}

	claimed := false
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		ok, err := tx.Completions().Claim(ctx, rec)
		if err != nil {
			return err
		}
		claimed = ok
		if !ok {
			return nil
		}
		return tx.Notifications().CreateJob(ctx, notificationKindPaymentCompleted, topicCheckoutPaid, payload, now)
	})
	if err != nil {
		return nil, err
	}

	if attempt.Status != payment.StatusSucceeded {
		if err := attempt.Succeed(now); err != nil {
			slog.Warn("attempt could not be marked succeeded", slog.String("error", err.Error()))
		}
	}
	c.machine.Complete(&snap.Checkout)

	if err := c.carts.Clear(ctx, sessionID); err != nil {
		slog.Error("failed to clear cart after payment", slog.String("session_id", sessionID), slog.String("error", err.Error()))
	}
	if err := c.sessions.Reset(ctx, sessionID); err != nil {
		slog.Error("failed to reset session after payment", slog.String("session_id", sessionID), slog.String("error", err.Error()))
	}

	outcome := payment.Outcome{
		Kind:       payment.OutcomeSuccess,
		Channel:    channel,
		Reference:  rec.Reference,
		NavigateTo: c.confirmationURL(rec.OrderID, rec.OrderNumber),
	}
	c.remember(rec.Reference, outcome)
	c.finish(sessionID, attempt.AttemptID, outcome)

	slog.Info("payment completed",
		slog.String("session_id", sessionID),
		slog.String("reference", rec.Reference),
		slog.String("order_id", rec.OrderID),
		slog.String("channel", string(channel)),
		slog.Bool("first_completion", claimed))
	return &outcome, nil
}

func (c *paymentCoordinatorImpl) decline(ctx context.Context, sessionID string, snap *shared.Snapshot, v *payment.Verification, channel payment.Channel) (*payment.Outcome, error) {
	attempt := snap.LastAttempt
	declined := errs.WithServerMessage(errs.Categorize(errs.Newf("payment %s", v.Status), errs.CategoryGatewayDeclined), v.Message)
	failure := checkout.Failure{
		Category:  string(errs.CategoryGatewayDeclined),
		Message:   errs.UserMessage(declined),
		Retryable: errs.Retryable(declined),
	}

	if attempt.Status.CanTransitionTo(payment.StatusFailed) {
		if err := attempt.Fail(failure.Category, firstNonEmpty(v.Message, string(v.Status)), c.clock.Now()); err != nil {
			return nil, err
		}
	}
	c.machine.PaymentFailed(&snap.Checkout, failure)

	if err := c.persist(ctx, sessionID, snap); err != nil {
		return nil, err
	}
	c.releaseMarker(ctx, sessionID)

	outcome := payment.Outcome{
		Kind:      payment.OutcomeFailure,
		Channel:   channel,
		Reference: attempt.Reference,
		Category:  failure.Category,
		Message:   failure.Message,
		Retryable: failure.Retryable,
	}
	c.finish(sessionID, attempt.AttemptID, outcome)

	slog.Warn("payment declined",
		slog.String("session_id", sessionID),
		slog.String("reference", attempt.Reference),
		slog.String("status", string(v.Status)),
		slog.String("channel", string(channel)))
	return &outcome, nil
}

// Cancel always succeeds locally: the attempt is cancelled and the customer
// returns to review with the draft unchanged. A later verified success still wins.
func (c *paymentCoordinatorImpl) Cancel(ctx context.Context, sessionID string) (*payment.Outcome, error) {
	unlock := c.locks.Lock(sessionID)
	defer unlock()

	snap, err := loadSnapshot(ctx, c.sessions, sessionID)
	if err != nil {
		return nil, err
	}

	outcome := payment.Outcome{Kind: payment.OutcomeCancel, Category: string(errs.CategoryGatewayCancelled)}
	attempt := snap.LastAttempt
	if attempt != nil {
		if attempt.Status == payment.StatusSucceeded {
			return nil, errs.ErrAlreadyCompleted
		}
		outcome.Reference = attempt.Reference
		if attempt.Status.CanTransitionTo(payment.StatusCancelled) {
			if err := attempt.Cancel(c.clock.Now()); err != nil {
				return nil, err
			}
		}
	}

	if snap.Checkout.Step == checkout.StepProcessing || snap.Checkout.Step == checkout.StepFailed {
		c.machine.PaymentCancelled(&snap.Checkout)
	}
	if err := c.persist(ctx, sessionID, snap); err != nil {
		return nil, err
	}
	c.releaseMarker(ctx, sessionID)
	if attempt != nil {
		c.finish(sessionID, attempt.AttemptID, outcome)
	}

	slog.Info("payment cancelled", slog.String("session_id", sessionID), slog.String("reference", outcome.Reference))
	return &outcome, nil
}

func (c *paymentCoordinatorImpl) Await(ctx context.Context, token shared.AttemptToken) (*payment.Outcome, error) {
	c.mu.Lock()
	f, ok := c.flights[token.SessionID]
	c.mu.Unlock()
	if !ok || f.token.AttemptID != token.AttemptID {
		return nil, errs.ErrNoActiveAttempt
	}

	select {
	case <-f.done:
		if f.outcome == nil {
			return nil, errs.ErrNoActiveAttempt
		}
		return f.outcome, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fromLedger answers for a reference whose session is already gone.
func (c *paymentCoordinatorImpl) fromLedger(ctx context.Context, reference string, channel payment.Channel) (*payment.Outcome, error) {
	rec, err := c.uow.CommandReads().CompletionByReference(ctx, reference)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrNoActiveAttempt
		}
		return nil, err
	}
	outcome := payment.Outcome{
		Kind:       payment.OutcomeSuccess,
		Channel:    channel,
		Reference:  rec.Reference,
		NavigateTo: c.confirmationURL(rec.OrderID, rec.OrderNumber),
	}
	c.remember(reference, outcome)
	return &outcome, nil
}

func (c *paymentCoordinatorImpl) processedOutcome(reference string) (payment.Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	outcome, ok := c.processed[reference]
	return outcome, ok
}

// remember keeps the most recent successful references; the ledger covers older ones.
func (c *paymentCoordinatorImpl) remember(reference string, outcome payment.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.processed[reference]; ok {
		return
	}
	c.processed[reference] = outcome
	c.order = append(c.order, reference)
	if len(c.order) > maxProcessedReferences {
		delete(c.processed, c.order[0])
		c.order = c.order[1:]
	}
}

func (c *paymentCoordinatorImpl) confirmationURL(orderID, orderNumber string) string {
	q := url.Values{}
	if orderID != "" {
		q.Set("order", orderID)
	}
	if orderNumber != "" {
		q.Set("number", orderNumber)
	}
	if len(q) == 0 {
		return c.cfg.ConfirmationURL
	}
	return c.cfg.ConfirmationURL + "?" + q.Encode()
}

func existingOrder(last *payment.Attempt) *shared.ExistingOrder {
	if !last.HasOrder() || last.Status == payment.StatusSucceeded {
		return nil
	}
	return &shared.ExistingOrder{OrderID: last.OrderID, OrderNumber: last.OrderNumber}
}

type completionEvent struct {
	Reference     string    `json:"reference"`
	OrderID       string    `json:"order_id"`
	OrderNumber   string    `json:"order_number,omitempty"`
	AmountKobo    int64     `json:"amount_kobo"`
	SessionID     string    `json:"session_id"`
	Channel       string    `json:"channel"`
	CustomerEmail string    `json:"customer_email"`
	CompletedAt   time.Time `json:"completed_at"`
}
