//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/checkout"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/errs"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/commands"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"
	"github.com/enviofleett/smallchops-09-sub001/tests/common/builder"
	"github.com/enviofleett/smallchops-09-sub001/tests/common/fake"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gatewayCheckout = "https://checkout.paystack.com"

func TestNormalizeCreateOrderResponse(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantURL  string
		wantRef  string
		wantErr  error
		category errs.Category
	}{
		{
			name:    "payment nested under data",
			raw:     `{"success":true,"data":{"order_id":"ord_1","order_number":"SC-1","payment":{"authorization_url":"https://pay/x","reference":"ref_1"}}}`,
			wantURL: "https://pay/x",
			wantRef: "ref_1",
		},
		{
			name:    "payment flattened into top level",
			raw:     `{"order_id":"ord_1","authorization_url":"https://pay/x","reference":"ref_1"}`,
			wantURL: "https://pay/x",
			wantRef: "ref_1",
		},
		{
			name:    "double encoded string",
			raw:     `"{\"success\":true,\"data\":{\"orderId\":\"ord_1\",\"paymentUrl\":\"https://pay/x\",\"paymentReference\":\"ref_1\"}}"`,
			wantURL: "https://pay/x",
			wantRef: "ref_1",
		},
		{
			name:    "data holds an encoded object",
			raw:     `{"success":true,"data":"{\"order_id\":\"ord_1\",\"payment\":{\"authorization_url\":\"https://pay/x\",\"reference\":\"ref_1\"}}"}`,
			wantURL: "https://pay/x",
			wantRef: "ref_1",
		},
		{
			name:    "access code only builds the gateway url",
			raw:     `{"data":{"id":"ord_1","payment":{"access_code":"acc_9","reference":"ref_1"}}}`,
			wantURL: gatewayCheckout + "/acc_9",
			wantRef: "ref_1",
		},
		{
			name:     "order without payment object",
			raw:      `{"success":true,"data":{"order_id":"ord_1","order_number":"SC-1"}}`,
			wantErr:  errs.ErrPaymentObjectMissing,
			category: errs.CategoryResponseMalformed,
		},
		{
			name:     "rejected by backend",
			raw:      `{"success":false,"message":"Chapman is out of stock"}`,
			category: errs.CategoryServerRejected,
		},
		{
			name:     "not json",
			raw:      `<html>502</html>`,
			category: errs.CategoryResponseMalformed,
		},
		{
			name:     "no order id",
			raw:      `{"success":true,"data":{"payment":{"authorization_url":"https://pay/x","reference":"ref_1"}}}`,
			category: errs.CategoryResponseMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			init, err := commands.NormalizeCreateOrderResponse([]byte(tt.raw), gatewayCheckout)
			if tt.category != errs.CategoryNone {
				require.Error(t, err)
				assert.Nil(t, init)
				assert.Equal(t, tt.category, errs.CategoryOf(err))
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ord_1", init.OrderID)
			assert.Equal(t, tt.wantURL, init.AuthorizationURL)
			assert.Equal(t, tt.wantRef, init.Reference)
		})
	}
}

func TestNormalizeCreateOrderResponse_NumericIDs(t *testing.T) {
	init, err := commands.NormalizeCreateOrderResponse(
		[]byte(`{"data":{"order_id":9007199254740993,"order_number":120045,"authorization_url":"https://pay/x","reference":"ref_1"}}`),
		gatewayCheckout)
	require.NoError(t, err)
	assert.Equal(t, "9007199254740993", init.OrderID)
	assert.Equal(t, "120045", init.OrderNumber)
}

func TestNormalizeCreateOrderResponse_KeepsOrderOnMissingPayment(t *testing.T) {
	_, err := commands.NormalizeCreateOrderResponse([]byte(`{"data":{"order_id":"ord_7","order_number":"SC-7"}}`), gatewayCheckout)

	var missing *commands.PaymentMissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "ord_7", missing.OrderID)
	assert.Equal(t, "SC-7", missing.OrderNumber)
}

func TestNormalizeCreateOrderResponse_ServerMessage(t *testing.T) {
	_, err := commands.NormalizeCreateOrderResponse([]byte(`{"success":false,"error":{"message":"Delivery zone closed"}}`), gatewayCheckout)

	require.Error(t, err)
	assert.Equal(t, "Delivery zone closed", errs.UserMessage(err))
	assert.False(t, errs.Retryable(err))
}

func TestNormalizeInitializeResponse(t *testing.T) {
	existing := shared.ExistingOrder{OrderID: "ord_1", OrderNumber: "SC-1"}

	init, err := commands.NormalizeInitializeResponse(
		[]byte(`{"data":{"authorization_url":"https://pay/y","reference":"ref_2"}}`), gatewayCheckout, existing)
	require.NoError(t, err)
	assert.Equal(t, "ord_1", init.OrderID)
	assert.Equal(t, "SC-1", init.OrderNumber)
	assert.Equal(t, "ref_2", init.Reference)

	_, err = commands.NormalizeInitializeResponse([]byte(`{"data":{}}`), gatewayCheckout, existing)
	assert.ErrorIs(t, err, errs.ErrPaymentObjectMissing)
}

func TestBuildCreateOrderRequest(t *testing.T) {
	attemptID := uuid.New()

	t.Run("delivery for a guest", func(t *testing.T) {
		b := reviewBuilder()
		b.Contact = checkout.Contact{Name: "  Ada Obi ", Email: " Ada@Example.com ", Phone: "+234 803 123 4567"}
		draft := b.BuildDraft()
		m := newEnv(t).machine

		req := commands.BuildCreateOrderRequest(commands.SubmissionInput{
			AttemptID: attemptID,
			Identity:  guest(),
			Draft:     draft,
			Totals:    m.Totals(draft),
		}, "https://shop/cb")

		assert.Equal(t, "Ada Obi", req.CustomerName)
		assert.Equal(t, "ada@example.com", req.CustomerEmail)
		assert.Equal(t, builder.DefaultZoneID.String(), req.DeliveryZoneID)
		require.NotNil(t, req.DeliveryAddress)
		assert.Equal(t, "12 Admiralty Way", req.DeliveryAddress.Street)
		assert.Empty(t, req.PickupPointID)
		assert.Equal(t, 10000.0, req.Subtotal)
		assert.Equal(t, 1500.0, req.DeliveryFee)
		assert.Equal(t, 11500.0, req.TotalAmount)
		assert.Equal(t, 8000.0, req.Items[0].TotalPrice)
		assert.Equal(t, "01JNV3K8Q2M7X4T9R5W6Y0Z1AB", req.GuestSessionID)
		assert.Empty(t, req.UserID)
		assert.Equal(t, attemptID.String(), req.IdempotencyKey)
		require.NotNil(t, req.Schedule)
		assert.Equal(t, "15:00", req.Schedule.WindowEnd)
	})

	t.Run("pickup for a customer", func(t *testing.T) {
		draft := reviewBuilder().AsPickup().BuildDraft()
		userID := uuid.New()

		req := commands.BuildCreateOrderRequest(commands.SubmissionInput{
			AttemptID: attemptID,
			Identity:  checkout.Customer(userID, nil),
			Draft:     draft,
			Totals:    draft.Totals(0),
		}, "")

		assert.Nil(t, req.DeliveryAddress)
		assert.Empty(t, req.DeliveryZoneID)
		assert.Equal(t, builder.DefaultPickupPointID.String(), req.PickupPointID)
		assert.Equal(t, 0.0, req.DeliveryFee)
		assert.Equal(t, userID.String(), req.UserID)
		assert.Empty(t, req.GuestSessionID)
	})

	t.Run("unscheduled pickup leaves out the window", func(t *testing.T) {
		draft := reviewBuilder().AsPickup().BuildDraft()
		require.NotNil(t, draft.Schedule)

		req := commands.BuildCreateOrderRequest(commands.SubmissionInput{
			AttemptID:    attemptID,
			Identity:     guest(),
			Draft:        draft,
			Totals:       draft.Totals(0),
			OmitSchedule: true,
		}, "")

		assert.Nil(t, req.Schedule)
		assert.Equal(t, builder.DefaultPickupPointID.String(), req.PickupPointID)
	})
}

func TestSubmissionService_Submit(t *testing.T) {
	ctx := context.Background()
	draft := reviewBuilder().BuildDraft()

	t.Run("creates an order", func(t *testing.T) {
		backend := fake.NewBackend()
		svc := commands.NewSubmissionService(backend, commands.SubmissionConfig{GatewayCheckout: gatewayCheckout})

		init, err := svc.Submit(ctx, commands.SubmissionInput{AttemptID: uuid.New(), Identity: guest(), Draft: draft})
		require.NoError(t, err)
		assert.Equal(t, "ord_1", init.OrderID)
		assert.Equal(t, "ref_1", init.Reference)
		assert.Equal(t, 1, backend.CreateCount())
		assert.Zero(t, backend.InitializeCount())
	})

	t.Run("reuses an existing order", func(t *testing.T) {
		backend := fake.NewBackend()
		svc := commands.NewSubmissionService(backend, commands.SubmissionConfig{GatewayCheckout: gatewayCheckout})

		init, err := svc.Submit(ctx, commands.SubmissionInput{
			AttemptID: uuid.New(),
			Identity:  guest(),
			Draft:     draft,
			Existing:  &shared.ExistingOrder{OrderID: "ord_9", OrderNumber: "SC-9"},
		})
		require.NoError(t, err)
		assert.Equal(t, "ord_9", init.OrderID)
		assert.Equal(t, "ref_init_1", init.Reference)
		assert.Zero(t, backend.CreateCount())
		require.Equal(t, 1, backend.InitializeCount())
		assert.Equal(t, "ord_9", backend.InitializeCalls[0].OrderID)
	})

	t.Run("transport errors pass through unretried", func(t *testing.T) {
		backend := fake.NewBackend()
		backend.CreateOrderFunc = func(context.Context, int, shared.CreateOrderRequest) ([]byte, error) {
			return nil, errs.Categorize(errs.New("dial tcp: connection refused"), errs.CategoryNetworkUnavailable)
		}
		svc := commands.NewSubmissionService(backend, commands.SubmissionConfig{})

		_, err := svc.Submit(ctx, commands.SubmissionInput{AttemptID: uuid.New(), Identity: guest(), Draft: draft})
		require.Error(t, err)
		assert.Equal(t, errs.CategoryNetworkUnavailable, errs.CategoryOf(err))
		assert.Equal(t, 1, backend.CreateCount())
	})
}
