//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/checkout"
	"github.com/enviofleett/smallchops-09-sub001/internal/domain/payment"
	"github.com/enviofleett/smallchops-09-sub001/internal/handler/api"
	reqdto "github.com/enviofleett/smallchops-09-sub001/internal/handler/dto/request"
	resdto "github.com/enviofleett/smallchops-09-sub001/internal/handler/dto/response"
	"github.com/enviofleett/smallchops-09-sub001/internal/handler/middleware"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/config"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/errs"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/commands"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"
	"github.com/enviofleett/smallchops-09-sub001/tests/common/httptest"
	commandsmock "github.com/enviofleett/smallchops-09-sub001/tests/mock/commands"
	usecasemock "github.com/enviofleett/smallchops-09-sub001/tests/mock/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type PaymentHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockCtrl        *gomock.Controller
	mockCoordinator *commandsmock.MockPaymentCoordinator
	handler         *api.PaymentHandler
}

func (s *PaymentHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCoordinator = commandsmock.NewMockPaymentCoordinator(s.mockCtrl)
	s.handler = api.NewPaymentHandler(s.mockCoordinator, config.NewTestConfig())

	auth := middleware.NewAuthMiddleware(usecasemock.NewMockIdentityResolver(s.mockCtrl), config.NewTestConfig())
	s.router.GET("/payment/callback", s.handler.Redirect)
	g := s.router.Group("/api/checkout", auth.ResolveIdentity())
	g.POST("/submit", s.handler.Submit)
	g.POST("/payment/callback", s.handler.Callback)
	g.POST("/payment/verify", s.handler.Verify)
	g.POST("/payment/cancel", s.handler.Cancel)
}

func (s *PaymentHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestPaymentHandlerSuite(t *testing.T) {
	suite.Run(t, new(PaymentHandlerTestSuite))
}

func (s *PaymentHandlerTestSuite) TestSubmit_Success() {
	attemptID := uuid.New()
	s.mockCoordinator.EXPECT().
		Submit(gomock.Any(), checkout.Guest(guestID)).
		Return(&commands.SubmitResult{
			Token:            shared.AttemptToken{SessionID: "g:" + guestID, AttemptID: attemptID},
			Attempt:          payment.Attempt{AttemptID: attemptID, OrderID: "ord_1", OrderNumber: "SC-1"},
			AuthorizationURL: "https://checkout.paystack.com/acc_1",
			AccessCode:       "acc_1",
			Reference:        "ref_1",
		}, nil)

	w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPost, "/api/checkout/submit", nil, guestCookie(), "")

	var resp resdto.SubmitResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, &resp)
	s.Equal(resdto.SubmitResponse{
		AttemptID:        attemptID,
		OrderID:          "ord_1",
		OrderNumber:      "SC-1",
		Reference:        "ref_1",
		AuthorizationURL: "https://checkout.paystack.com/acc_1",
		AccessCode:       "acc_1",
	}, resp)
}

func (s *PaymentHandlerTestSuite) TestSubmit_Errors() {
	tests := []struct {
		name          string
		err           error
		expectCode    int
		expectMsg     string
		expectCat     errs.Category
		expectRetry   bool
		expectNoLeaks string
	}{
		{
			name:       "already in flight",
			err:        errs.ErrSubmissionInProgress,
			expectCode: http.StatusConflict,
			expectMsg:  "Submission already in progress",
		},
		{
			name:       "terms not accepted",
			err:        &checkout.ValidationError{Step: checkout.StepReview, Fields: map[string]string{"terms": "Accept the terms to continue"}},
			expectCode: http.StatusUnprocessableEntity,
			expectMsg:  "Please review the highlighted fields.",
			expectCat:  errs.CategoryValidationRejected,
		},
		{
			name: "server rejected with message",
			err: errs.WithServerMessage(
				errs.Categorize(errs.New("create order: success=false"), errs.CategoryServerRejected),
				"Chapman is out of stock"),
			expectCode:    http.StatusUnprocessableEntity,
			expectMsg:     "Chapman is out of stock",
			expectCat:     errs.CategoryServerRejected,
			expectNoLeaks: "success=false",
		},
		{
			name:          "network unavailable",
			err:           errs.Categorize(errs.New("dial tcp 10.0.0.1:443: i/o timeout"), errs.CategoryNetworkUnavailable),
			expectCode:    http.StatusServiceUnavailable,
			expectMsg:     "could not reach the server",
			expectCat:     errs.CategoryNetworkUnavailable,
			expectRetry:   true,
			expectNoLeaks: "10.0.0.1",
		},
		{
			name:          "payment object missing",
			err:           &commands.PaymentMissingError{OrderID: "ord_7"},
			expectCode:    http.StatusBadGateway,
			expectCat:     errs.CategoryResponseMalformed,
			expectRetry:   true,
			expectNoLeaks: "ord_7",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.mockCoordinator.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPost, "/api/checkout/submit", nil, guestCookie(), "")

			body := httptest.AssertCategoryResponse(s.T(), w, tt.expectCode, string(tt.expectCat), tt.expectRetry)
			if tt.expectMsg != "" {
				s.Contains(body.Error.Message, tt.expectMsg)
			}
			if tt.expectNoLeaks != "" {
				s.NotContains(w.Body.String(), tt.expectNoLeaks)
			}
		})
	}
}

func (s *PaymentHandlerTestSuite) TestCallback() {
	s.Run("completes through the popup channel", func() {
		s.mockCoordinator.EXPECT().
			Complete(gomock.Any(), "g:"+guestID, "ref_1", payment.ChannelPopup).
			Return(&payment.Outcome{
				Kind:       payment.OutcomeSuccess,
				Channel:    payment.ChannelPopup,
				Reference:  "ref_1",
				NavigateTo: "/order-confirmation?number=SC-1&order=ord_1",
			}, nil)

		w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPost, "/api/checkout/payment/callback",
			reqdto.PaymentCallbackRequest{Reference: "ref_1"}, guestCookie(), "")

		var outcome payment.Outcome
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &outcome)
		s.Equal(payment.OutcomeSuccess, outcome.Kind)
		s.Equal("/order-confirmation?number=SC-1&order=ord_1", outcome.NavigateTo)
	})

	s.Run("reference required", func() {
		w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPost, "/api/checkout/payment/callback",
			map[string]string{}, guestCookie(), "")

		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid request format")
	})

	s.Run("reference from another checkout", func() {
		s.mockCoordinator.EXPECT().
			Complete(gomock.Any(), gomock.Any(), "ref_other", payment.ChannelPopup).
			Return(nil, errs.ErrStaleReference)

		w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPost, "/api/checkout/payment/callback",
			reqdto.PaymentCallbackRequest{Reference: "ref_other"}, guestCookie(), "")

		httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "no longer active")
	})
}

func (s *PaymentHandlerTestSuite) TestRedirect() {
	tests := []struct {
		name     string
		path     string
		ref      string
		outcome  *payment.Outcome
		err      error
		location string
	}{
		{
			name:     "success goes to confirmation",
			path:     "/payment/callback?reference=ref_1",
			ref:      "ref_1",
			outcome:  &payment.Outcome{Kind: payment.OutcomeSuccess, NavigateTo: "/order-confirmation?number=SC-1&order=ord_1"},
			location: "/order-confirmation?number=SC-1&order=ord_1",
		},
		{
			name:     "trxref is accepted",
			path:     "/payment/callback?trxref=ref_2",
			ref:      "ref_2",
			outcome:  &payment.Outcome{Kind: payment.OutcomeSuccess, NavigateTo: "/order-confirmation?order=ord_2"},
			location: "/order-confirmation?order=ord_2",
		},
		{
			name:     "declined returns to checkout",
			path:     "/payment/callback?reference=ref_1",
			ref:      "ref_1",
			outcome:  &payment.Outcome{Kind: payment.OutcomeFailure, Category: string(errs.CategoryGatewayDeclined)},
			location: "/checkout?category=gateway_declined&payment=failure",
		},
		{
			name:     "verification pending",
			path:     "/payment/callback?reference=ref_1",
			ref:      "ref_1",
			err:      errs.Categorize(errs.New("verification pending"), errs.CategoryGatewayTimeout),
			location: "/checkout?category=gateway_timeout&payment=pending",
		},
		{
			name:     "unknown reference",
			path:     "/payment/callback?reference=ref_x",
			ref:      "ref_x",
			err:      errs.ErrNoActiveAttempt,
			location: "/checkout?payment=unknown",
		},
		{
			name:     "reference of an earlier attempt",
			path:     "/payment/callback?reference=ref_old",
			ref:      "ref_old",
			err:      errs.ErrStaleReference,
			location: "/checkout?payment=stale",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.mockCoordinator.EXPECT().
				CompleteByReference(gomock.Any(), tt.ref, payment.ChannelRedirect).
				Return(tt.outcome, tt.err)

			w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, tt.path, nil, "")

			httptest.AssertRedirect(s.T(), w, tt.location)
		})
	}
}

func (s *PaymentHandlerTestSuite) TestVerify() {
	s.Run("no attempt", func() {
		s.mockCoordinator.EXPECT().Verify(gomock.Any(), "g:"+guestID).Return(nil, errs.ErrNoActiveAttempt)

		w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPost, "/api/checkout/payment/verify", nil, guestCookie(), "")

		httptest.AssertErrorResponse(s.T(), w, http.StatusNotFound, "No payment is awaiting confirmation")
	})

	s.Run("still pending", func() {
		s.mockCoordinator.EXPECT().Verify(gomock.Any(), gomock.Any()).
			Return(nil, errs.Categorize(errs.New("verification pending"), errs.CategoryGatewayTimeout))

		w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPost, "/api/checkout/payment/verify", nil, guestCookie(), "")

		httptest.AssertCategoryResponse(s.T(), w, http.StatusGatewayTimeout, string(errs.CategoryGatewayTimeout), true)
	})
}

func (s *PaymentHandlerTestSuite) TestCancel() {
	s.Run("back to review", func() {
		s.mockCoordinator.EXPECT().Cancel(gomock.Any(), "g:"+guestID).
			Return(&payment.Outcome{Kind: payment.OutcomeCancel, Channel: payment.ChannelPopup, Retryable: true}, nil)

		w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPost, "/api/checkout/payment/cancel", nil, guestCookie(), "")

		var outcome payment.Outcome
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &outcome)
		s.Equal(payment.OutcomeCancel, outcome.Kind)
		s.True(outcome.Retryable)
	})

	s.Run("already completed", func() {
		s.mockCoordinator.EXPECT().Cancel(gomock.Any(), gomock.Any()).Return(nil, errs.ErrAlreadyCompleted)

		w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPost, "/api/checkout/payment/cancel", nil, guestCookie(), "")

		httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "Payment already completed")
	})
}
