//go:build unit

package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/checkout"
	"github.com/enviofleett/smallchops-09-sub001/internal/domain/payment"
	"github.com/enviofleett/smallchops-09-sub001/internal/infra"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/errs"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/commands"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"
	"github.com/enviofleett/smallchops-09-sub001/tests/common/builder"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submitReady(t *testing.T, e *env) (checkout.Identity, *commands.SubmitResult) {
	t.Helper()
	identity := guest()
	e.seed(t, identity, reviewBuilder().BuildCheckout())
	res, err := e.coordinator.Submit(context.Background(), identity)
	require.NoError(t, err)
	return identity, res
}

func TestPaymentCoordinator_Submit(t *testing.T) {
	e := newEnv(t)
	identity, res := submitReady(t, e)
	sessionID := identity.SessionKey()

	assert.Equal(t, "https://checkout.paystack.com/acc_1", res.AuthorizationURL)
	assert.Equal(t, "ref_1", res.Reference)
	assert.Equal(t, payment.StatusAwaitingGateway, res.Attempt.Status)
	assert.Equal(t, sessionID, res.Token.SessionID)

	snap := e.snapshot(t, sessionID)
	assert.Equal(t, checkout.StepProcessing, snap.Step())
	require.NotNil(t, snap.LastAttempt)
	assert.Equal(t, res.Token.AttemptID, snap.LastAttempt.AttemptID)
	assert.Equal(t, "ord_1", snap.LastAttempt.OrderID)
	assert.True(t, e.mr.Exists("checkout:"+sessionID+":in_progress"))

	owner, err := e.sessions.SessionByReference(context.Background(), "ref_1")
	require.NoError(t, err)
	assert.Equal(t, sessionID, owner)

	req := e.backend.CreateCalls[0]
	assert.Equal(t, res.Token.AttemptID.String(), req.IdempotencyKey)
	assert.Equal(t, 11500.0, req.TotalAmount)
}

func TestPaymentCoordinator_Submit_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("second submit while outstanding", func(t *testing.T) {
		e := newEnv(t)
		identity, _ := submitReady(t, e)

		_, err := e.coordinator.Submit(ctx, identity)
		assert.ErrorIs(t, err, errs.ErrSubmissionInProgress)
		assert.Equal(t, 1, e.backend.CreateCount())
	})

	t.Run("outstanding on another replica", func(t *testing.T) {
		e := newEnv(t)
		identity, _ := submitReady(t, e)

		// the snapshot is in processing, so the replica's state machine refuses it
		_, err := e.newCoordinator().Submit(ctx, identity)
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, 1, e.backend.CreateCount())
	})

	t.Run("draft no longer valid", func(t *testing.T) {
		e := newEnv(t)
		identity := guest()
		co := reviewBuilder().With(func(b *builder.CheckoutBuilder) { b.TermsAccepted = false }).BuildCheckout()
		e.seed(t, identity, co)

		_, err := e.coordinator.Submit(ctx, identity)
		var verr *checkout.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, checkout.StepReview, verr.Step)
		assert.Contains(t, verr.Fields, "terms")
		assert.Zero(t, e.backend.CreateCount())
		assert.False(t, e.mr.Exists("checkout:"+identity.SessionKey()+":in_progress"))
	})

	t.Run("no session", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.coordinator.Submit(ctx, guest())
		assert.ErrorIs(t, err, errs.ErrSessionNotFound)
	})
}

func TestPaymentCoordinator_Submit_RapidDoubleSubmit(t *testing.T) {
	e := newEnv(t)
	identity := guest()
	e.seed(t, identity, reviewBuilder().BuildCheckout())
	release := e.backend.Gate()
	defer release()

	var first error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, first = e.coordinator.Submit(context.Background(), identity)
	}()

	select {
	case <-e.backend.Entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first submit never reached the backend")
	}

	_, second := e.coordinator.Submit(context.Background(), identity)
	assert.ErrorIs(t, second, errs.ErrSubmissionInProgress)

	release()
	wg.Wait()
	require.NoError(t, first)
	assert.Equal(t, 1, e.backend.CreateCount())
}

func TestPaymentCoordinator_Submit_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("server rejection keeps the draft", func(t *testing.T) {
		e := newEnv(t)
		identity := guest()
		co := reviewBuilder().BuildCheckout()
		e.seed(t, identity, co)
		e.backend.CreateOrderFunc = func(context.Context, int, shared.CreateOrderRequest) ([]byte, error) {
			return []byte(`{"success":false,"message":"Chapman is out of stock"}`), nil
		}

		_, err := e.coordinator.Submit(ctx, identity)
		require.Error(t, err)
		assert.Equal(t, errs.CategoryServerRejected, errs.CategoryOf(err))

		snap := e.snapshot(t, identity.SessionKey())
		assert.Equal(t, checkout.StepReview, snap.Step())
		require.NotNil(t, snap.Checkout.Failure)
		assert.Equal(t, "Chapman is out of stock", snap.Checkout.Failure.Message)
		assert.False(t, snap.Checkout.Failure.Retryable)
		if diff := cmp.Diff(co.Draft, snap.Checkout.Draft, cmp.AllowUnexported(checkout.Money{})); diff != "" {
			t.Errorf("draft changed (-want +got):\n%s", diff)
		}
		assert.Equal(t, payment.StatusFailed, snap.LastAttempt.Status)
		assert.False(t, e.mr.Exists("checkout:"+identity.SessionKey()+":in_progress"))
	})

	t.Run("network failure is retryable", func(t *testing.T) {
		e := newEnv(t)
		identity := guest()
		e.seed(t, identity, reviewBuilder().BuildCheckout())
		e.backend.CreateOrderFunc = func(context.Context, int, shared.CreateOrderRequest) ([]byte, error) {
			return nil, errs.Categorize(errs.New("connection reset"), errs.CategoryNetworkUnavailable)
		}

		_, err := e.coordinator.Submit(ctx, identity)
		require.Error(t, err)

		snap := e.snapshot(t, identity.SessionKey())
		assert.Equal(t, checkout.StepReview, snap.Step())
		assert.Equal(t, string(errs.CategoryNetworkUnavailable), snap.Checkout.Failure.Category)
		assert.True(t, snap.Checkout.Failure.Retryable)
	})

	t.Run("missing payment object then retry reuses the order", func(t *testing.T) {
		e := newEnv(t)
		identity := guest()
		e.seed(t, identity, reviewBuilder().BuildCheckout())
		e.backend.CreateOrderFunc = func(context.Context, int, shared.CreateOrderRequest) ([]byte, error) {
			return []byte(`{"success":true,"data":{"order_id":"ord_42","order_number":"SC-42"}}`), nil
		}

		_, err := e.coordinator.Submit(ctx, identity)
		require.ErrorIs(t, err, errs.ErrPaymentObjectMissing)
		assert.Equal(t, errs.CategoryResponseMalformed, errs.CategoryOf(err))

		snap := e.snapshot(t, identity.SessionKey())
		assert.Equal(t, checkout.StepReview, snap.Step())
		assert.Equal(t, "ord_42", snap.LastAttempt.OrderID)

		res, err := e.coordinator.Submit(ctx, identity)
		require.NoError(t, err)
		assert.Equal(t, 1, e.backend.CreateCount())
		require.Equal(t, 1, e.backend.InitializeCount())
		assert.Equal(t, "ord_42", e.backend.InitializeCalls[0].OrderID)
		assert.Equal(t, "ord_42", res.Attempt.OrderID)
		assert.Equal(t, "SC-42", res.Attempt.OrderNumber)
		assert.Equal(t, "ref_init_1", res.Reference)
	})
}

func TestPaymentCoordinator_Complete_Success(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	identity, res := submitReady(t, e)
	sessionID := identity.SessionKey()

	waited := make(chan *payment.Outcome, 1)
	go func() {
		outcome, err := e.coordinator.Await(ctx, res.Token)
		if err == nil {
			waited <- outcome
		}
		close(waited)
	}()
	time.Sleep(10 * time.Millisecond)

	outcome, err := e.coordinator.Complete(ctx, sessionID, "ref_1", payment.ChannelPopup)
	require.NoError(t, err)
	assert.Equal(t, payment.OutcomeSuccess, outcome.Kind)
	assert.Equal(t, payment.ChannelPopup, outcome.Channel)
	assert.Equal(t, confirmationURL+"?number=SC-1&order=ord_1", outcome.NavigateTo)

	select {
	case got := <-waited:
		require.NotNil(t, got)
		assert.Equal(t, payment.OutcomeSuccess, got.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("await never resolved")
	}

	_, err = e.sessions.Load(ctx, sessionID)
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
	items, err := e.carts.Items(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.False(t, e.mr.Exists("checkout:"+sessionID+":in_progress"))

	assert.Equal(t, 1, e.uow.CompletionCount())
	jobs := e.uow.JobsWithStatus("queued")
	require.Len(t, jobs, 1)
	assert.Equal(t, "checkout.paid", jobs[0].Topic)

	var event map[string]any
	require.NoError(t, json.Unmarshal(jobs[0].Payload, &event))
	assert.Equal(t, "ref_1", event["reference"])
	assert.Equal(t, "ord_1", event["order_id"])
	assert.Equal(t, "ada@example.com", event["customer_email"])
}

// callLog records the order in which completion side effects happen.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type recordingUoW struct {
	shared.UnitOfWork
	log *callLog
}

func (u recordingUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if err := u.UnitOfWork.Within(ctx, fn); err != nil {
		return err
	}
	u.log.add("ledger_claim")
	return nil
}

type recordingCarts struct {
	shared.CartStore
	log *callLog
}

func (c recordingCarts) Clear(ctx context.Context, sessionID string) error {
	c.log.add("cart_clear")
	return c.CartStore.Clear(ctx, sessionID)
}

type recordingSessions struct {
	shared.SessionStore
	log *callLog
}

func (s recordingSessions) Reset(ctx context.Context, sessionID string) error {
	s.log.add("snapshot_clear")
	return s.SessionStore.Reset(ctx, sessionID)
}

func TestPaymentCoordinator_Complete_SideEffectOrder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, _ = submitReady(t, e)

	log := &callLog{}
	submission := commands.NewSubmissionService(e.backend, commands.SubmissionConfig{})
	coordinator := commands.NewPaymentCoordinator(
		recordingSessions{SessionStore: e.sessions, log: log},
		recordingCarts{CartStore: e.carts, log: log},
		recordingUoW{UnitOfWork: e.uow, log: log},
		e.backend, submission, e.machine, shared.NewSessionLocks(), e.clock,
		commands.PaymentConfig{ConfirmationURL: confirmationURL})

	outcome, err := coordinator.CompleteByReference(ctx, "ref_1", payment.ChannelRedirect)
	require.NoError(t, err)
	require.NotEmpty(t, outcome.NavigateTo)
	log.add("navigate")

	want := []string{"ledger_claim", "cart_clear", "snapshot_clear", "navigate"}
	if diff := cmp.Diff(want, log.list()); diff != "" {
		t.Errorf("completion order mismatch (-want +got):\n%s", diff)
	}
}

func TestPaymentCoordinator_Complete_Idempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	identity, _ := submitReady(t, e)

	first, err := e.coordinator.Complete(ctx, identity.SessionKey(), "ref_1", payment.ChannelPopup)
	require.NoError(t, err)

	t.Run("redirect after popup", func(t *testing.T) {
		again, err := e.coordinator.CompleteByReference(ctx, "ref_1", payment.ChannelRedirect)
		require.NoError(t, err)
		assert.Equal(t, first.NavigateTo, again.NavigateTo)
	})

	t.Run("another replica answers from the ledger", func(t *testing.T) {
		replica, err := e.newCoordinator().CompleteByReference(ctx, "ref_1", payment.ChannelRedirect)
		require.NoError(t, err)
		assert.Equal(t, payment.OutcomeSuccess, replica.Kind)
		assert.Equal(t, first.NavigateTo, replica.NavigateTo)
	})

	assert.Equal(t, 1, e.backend.VerifyCount())
	assert.Equal(t, 1, e.uow.CompletionCount())
	assert.Len(t, e.uow.JobsWithStatus("queued"), 1)
}

func TestPaymentCoordinator_Complete_ConcurrentChannels(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	identity, _ := submitReady(t, e)
	sessionID := identity.SessionKey()
	release := e.backend.Gate()
	defer release()

	results := make(chan *payment.Outcome, 2)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		outcome, err := e.coordinator.Complete(ctx, sessionID, "ref_1", payment.ChannelPopup)
		assert.NoError(t, err)
		results <- outcome
	}()

	select {
	case <-e.backend.Entered:
	case <-time.After(2 * time.Second):
		t.Fatal("verification never started")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		outcome, err := e.coordinator.CompleteByReference(ctx, "ref_1", payment.ChannelRedirect)
		assert.NoError(t, err)
		results <- outcome
	}()

	time.Sleep(20 * time.Millisecond)
	release()
	wg.Wait()
	close(results)

	for outcome := range results {
		require.NotNil(t, outcome)
		assert.Equal(t, payment.OutcomeSuccess, outcome.Kind)
	}
	assert.Equal(t, 1, e.backend.VerifyCount())
	assert.Equal(t, 1, e.uow.CompletionCount())
}

func TestPaymentCoordinator_Complete_Declined(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	identity, _ := submitReady(t, e)
	sessionID := identity.SessionKey()
	e.backend.VerifyFunc = func(_ context.Context, reference string) (*payment.Verification, error) {
		return &payment.Verification{Reference: reference, Status: payment.VerificationFailed, Message: "Insufficient funds"}, nil
	}

	outcome, err := e.coordinator.Complete(ctx, sessionID, "ref_1", payment.ChannelPopup)
	require.NoError(t, err)
	assert.Equal(t, payment.OutcomeFailure, outcome.Kind)
	assert.Equal(t, string(errs.CategoryGatewayDeclined), outcome.Category)
	assert.False(t, outcome.Retryable)
	assert.Contains(t, outcome.Message, "another payment method")

	snap := e.snapshot(t, sessionID)
	assert.Equal(t, checkout.StepFailed, snap.Step())
	assert.Equal(t, payment.StatusFailed, snap.LastAttempt.Status)
	assert.False(t, e.mr.Exists("checkout:"+sessionID+":in_progress"))
	assert.Zero(t, e.uow.CompletionCount())

	e.backend.VerifyFunc = nil
	retry, err := e.coordinator.Submit(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, 1, e.backend.CreateCount())
	assert.Equal(t, "ord_1", retry.Attempt.OrderID)
	require.NotEqual(t, "ref_1", retry.Reference)

	// a late redirect for the declined attempt is ignored without verifying
	_, err = e.coordinator.CompleteByReference(ctx, "ref_1", payment.ChannelRedirect)
	assert.ErrorIs(t, err, errs.ErrStaleReference)
	assert.Equal(t, 1, e.backend.VerifyCount())
	assert.Equal(t, checkout.StepProcessing, e.snapshot(t, sessionID).Step())
}

func TestPaymentCoordinator_Complete_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("pending verification keeps the flight", func(t *testing.T) {
		e := newEnv(t)
		identity, _ := submitReady(t, e)
		e.backend.VerifyFunc = func(_ context.Context, reference string) (*payment.Verification, error) {
			return &payment.Verification{Reference: reference, Status: payment.VerificationPending}, nil
		}

		_, err := e.coordinator.Complete(ctx, identity.SessionKey(), "ref_1", payment.ChannelVerify)
		require.Error(t, err)
		assert.Equal(t, errs.CategoryGatewayTimeout, errs.CategoryOf(err))
		assert.Equal(t, checkout.StepProcessing, e.snapshot(t, identity.SessionKey()).Step())

		_, err = e.coordinator.Submit(ctx, identity)
		assert.ErrorIs(t, err, errs.ErrSubmissionInProgress)
	})

	t.Run("reference of another attempt", func(t *testing.T) {
		e := newEnv(t)
		identity, _ := submitReady(t, e)

		_, err := e.coordinator.Complete(ctx, identity.SessionKey(), "ref_other", payment.ChannelPopup)
		assert.ErrorIs(t, err, errs.ErrStaleReference)
		assert.Zero(t, e.backend.VerifyCount())
	})

	t.Run("unknown reference", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.coordinator.CompleteByReference(ctx, "ref_unknown", payment.ChannelRedirect)
		assert.ErrorIs(t, err, errs.ErrNoActiveAttempt)
	})

	t.Run("verify without attempt", func(t *testing.T) {
		e := newEnv(t)
		identity := guest()
		e.seed(t, identity, reviewBuilder().BuildCheckout())

		_, err := e.coordinator.Verify(ctx, identity.SessionKey())
		assert.ErrorIs(t, err, errs.ErrNoActiveAttempt)
	})
}

func TestPaymentCoordinator_Cancel(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	identity := guest()
	sessionID := identity.SessionKey()
	co := reviewBuilder().BuildCheckout()
	e.seed(t, identity, co)

	res, err := e.coordinator.Submit(ctx, identity)
	require.NoError(t, err)

	outcome, err := e.coordinator.Cancel(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, payment.OutcomeCancel, outcome.Kind)
	assert.Equal(t, "ref_1", outcome.Reference)

	snap := e.snapshot(t, sessionID)
	assert.Equal(t, checkout.StepReview, snap.Step())
	assert.Nil(t, snap.Checkout.Failure)
	assert.Equal(t, payment.StatusCancelled, snap.LastAttempt.Status)
	if diff := cmp.Diff(co.Draft, snap.Checkout.Draft, cmp.AllowUnexported(checkout.Money{})); diff != "" {
		t.Errorf("draft changed (-want +got):\n%s", diff)
	}
	assert.False(t, e.mr.Exists("checkout:"+sessionID+":in_progress"))

	_, err = e.coordinator.Await(ctx, res.Token)
	assert.ErrorIs(t, err, errs.ErrNoActiveAttempt)

	t.Run("late success still completes", func(t *testing.T) {
		late, err := e.coordinator.CompleteByReference(ctx, "ref_1", payment.ChannelRedirect)
		require.NoError(t, err)
		assert.Equal(t, payment.OutcomeSuccess, late.Kind)
		assert.Equal(t, 1, e.uow.CompletionCount())
	})
}

func TestPaymentCoordinator_Await(t *testing.T) {
	e := newEnv(t)
	identity, res := submitReady(t, e)

	t.Run("context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := e.coordinator.Await(ctx, res.Token)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("resolves with cancel", func(t *testing.T) {
		done := make(chan *payment.Outcome, 1)
		go func() {
			outcome, _ := e.coordinator.Await(context.Background(), res.Token)
			done <- outcome
		}()
		time.Sleep(10 * time.Millisecond)

		_, err := e.coordinator.Cancel(context.Background(), identity.SessionKey())
		require.NoError(t, err)

		select {
		case outcome := <-done:
			require.NotNil(t, outcome)
			assert.Equal(t, payment.OutcomeCancel, outcome.Kind)
		case <-time.After(2 * time.Second):
			t.Fatal("await never resolved")
		}
	})
}
