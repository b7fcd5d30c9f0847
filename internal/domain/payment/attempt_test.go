//go:build unit

package payment_test

import (
	"testing"
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Transitions(t *testing.T) {
	testCases := []struct {
		from    payment.Status
		to      payment.Status
		allowed bool
	}{
		{payment.StatusInitializing, payment.StatusAwaitingGateway, true},
		{payment.StatusInitializing, payment.StatusFailed, true},
		{payment.StatusInitializing, payment.StatusSucceeded, false},
		{payment.StatusAwaitingGateway, payment.StatusSucceeded, true},
		{payment.StatusAwaitingGateway, payment.StatusCancelled, true},
		{payment.StatusSucceeded, payment.StatusFailed, false},
		{payment.StatusCancelled, payment.StatusAwaitingGateway, false},
		{payment.StatusFailed, payment.StatusSucceeded, true},
		{payment.StatusCancelled, payment.StatusSucceeded, true},
		{payment.StatusSucceeded, payment.StatusCancelled, false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestAttempt_Lifecycle(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	a := payment.NewAttempt(uuid.New(), now)
	assert.True(t, a.Status.IsOutstanding())
	assert.False(t, a.HasOrder())

	err := a.AwaitGateway(payment.Initialization{
		OrderID:          "ord_1",
		OrderNumber:      "SC-1001",
		AuthorizationURL: "https://checkout.paystack.com/abc",
		Reference:        "ref_1",
	}, now.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, payment.StatusAwaitingGateway, a.Status)
	assert.True(t, a.HasOrder())
	assert.Equal(t, "ref_1", a.Reference)

	require.NoError(t, a.Succeed(now.Add(time.Minute)))
	assert.True(t, a.Status.IsTerminal())

	err = a.Cancel(now.Add(2 * time.Minute))
	assert.ErrorIs(t, err, payment.ErrIllegalTransition)
	assert.Equal(t, payment.StatusSucceeded, a.Status)
}

func TestAttempt_FailRecordsReason(t *testing.T) {
	now := time.Now()
	a := payment.NewAttempt(uuid.New(), now)
	a.RecordOrder("ord_2", "SC-1002")

	require.NoError(t, a.Fail("network_unavailable", "timeout", now))
	assert.Equal(t, "network_unavailable", a.FailureCategory)
	assert.True(t, a.HasOrder())
}
