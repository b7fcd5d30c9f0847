//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/checkout"
	"github.com/enviofleett/smallchops-09-sub001/internal/handler/api"
	reqdto "github.com/enviofleett/smallchops-09-sub001/internal/handler/dto/request"
	resdto "github.com/enviofleett/smallchops-09-sub001/internal/handler/dto/response"
	"github.com/enviofleett/smallchops-09-sub001/internal/handler/middleware"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/config"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/cookie"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/errs"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/commands"
	"github.com/enviofleett/smallchops-09-sub001/tests/common/builder"
	"github.com/enviofleett/smallchops-09-sub001/tests/common/httptest"
	"github.com/enviofleett/smallchops-09-sub001/tests/common/testutil"
	commandsmock "github.com/enviofleett/smallchops-09-sub001/tests/mock/commands"
	usecasemock "github.com/enviofleett/smallchops-09-sub001/tests/mock/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const guestID = "01JNV3K8Q2M7X4T9R5W6Y0Z1AB"

func guestCookie() []*http.Cookie {
	return []*http.Cookie{{Name: cookie.GuestSessionCookieName, Value: guestID}}
}

func checkoutResult(sessionID string, step checkout.Step) *commands.CheckoutResult {
	co := builder.NewCheckoutBuilder().WithStep(step).BuildCheckout()
	return &commands.CheckoutResult{
		SessionID: sessionID,
		Checkout:  *co,
		Totals:    co.Draft.Totals(0),
	}
}

type CheckoutHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockCheckoutCommands
	mockResolver *usecasemock.MockIdentityResolver
	handler      *api.CheckoutHandler
}

func (s *CheckoutHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockCheckoutCommands(s.mockCtrl)
	s.mockResolver = usecasemock.NewMockIdentityResolver(s.mockCtrl)
	s.handler = api.NewCheckoutHandler(s.mockCommands)

	auth := middleware.NewAuthMiddleware(s.mockResolver, config.NewTestConfig())
	g := s.router.Group("/api/checkout", auth.ResolveIdentity())
	g.POST("/session", s.handler.Begin)
	g.GET("/session", s.handler.Current)
	g.DELETE("/session", s.handler.Reset)
	g.PUT("/cart", s.handler.SyncCart)
	g.PUT("/contact", s.handler.UpdateContact)
	g.PUT("/fulfillment", s.handler.SelectFulfillment)
	g.PUT("/schedule", s.handler.SelectSchedule)
	g.PUT("/payment-method", s.handler.SelectPaymentMethod)
	g.PUT("/terms", s.handler.SetTerms)
	g.POST("/advance", s.handler.Advance)
	g.POST("/back", s.handler.Back)
}

func (s *CheckoutHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestCheckoutHandlerSuite(t *testing.T) {
	suite.Run(t, new(CheckoutHandlerTestSuite))
}

func (s *CheckoutHandlerTestSuite) TestBegin_GuestWithCookie() {
	identity := checkout.Guest(guestID)
	s.mockCommands.EXPECT().
		Begin(gomock.Any(), identity).
		Return(checkoutResult(identity.SessionKey(), checkout.StepContact), nil)

	w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPost, "/api/checkout/session", nil, guestCookie(), "")

	var resp resdto.CheckoutResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
	s.Equal("g:"+guestID, resp.SessionID)
	s.Equal(checkout.StepContact, resp.Step)
	s.Equal(int64(1000000), resp.Totals.Subtotal.Kobo())
	s.Nil(httptest.ExtractCookie(w, cookie.GuestSessionCookieName), "existing cookie is kept")
}

func (s *CheckoutHandlerTestSuite) TestBegin_NewGuestGetsCookie() {
	var seen checkout.Identity
	s.mockCommands.EXPECT().
		Begin(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, identity checkout.Identity) (*commands.CheckoutResult, error) {
			seen = identity
			return checkoutResult(identity.SessionKey(), checkout.StepContact), nil
		})

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/checkout/session", nil, "")

	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, nil)
	issued := httptest.ExtractCookie(w, cookie.GuestSessionCookieName)
	s.Require().NotNil(issued)
	_, err := ulid.ParseStrict(issued.Value)
	s.NoError(err)
	s.True(issued.HttpOnly)
	s.False(seen.Authenticated())
	s.Equal(issued.Value, seen.GuestSessionID)
}

func (s *CheckoutHandlerTestSuite) TestBegin_MalformedCookieIsReplaced() {
	s.mockCommands.EXPECT().
		Begin(gomock.Any(), gomock.Not(checkout.Guest("not-a-ulid"))).
		Return(checkoutResult("g:x", checkout.StepContact), nil)

	w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPost, "/api/checkout/session", nil,
		[]*http.Cookie{{Name: cookie.GuestSessionCookieName, Value: "not-a-ulid"}}, "")

	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, nil)
	s.NotNil(httptest.ExtractCookie(w, cookie.GuestSessionCookieName))
}

func (s *CheckoutHandlerTestSuite) TestBegin_Customer() {
	userID := uuid.New()
	identity := checkout.Customer(userID, nil)
	s.mockResolver.EXPECT().ResolveToken("valid-token").Return(identity, nil)
	s.mockCommands.EXPECT().
		Begin(gomock.Any(), identity).
		Return(checkoutResult(identity.SessionKey(), checkout.StepFulfillment), nil)

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/checkout/session", nil, "valid-token")

	var resp resdto.CheckoutResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
	s.Equal("u:"+userID.String(), resp.SessionID)
	s.Nil(httptest.ExtractCookie(w, cookie.GuestSessionCookieName))
}

func (s *CheckoutHandlerTestSuite) TestBegin_InvalidTokenIsRejected() {
	s.mockResolver.EXPECT().ResolveToken("expired").Return(checkout.Identity{}, errs.New("token expired"))

	w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPost, "/api/checkout/session", nil, guestCookie(), "expired")

	httptest.AssertErrorResponse(s.T(), w, http.StatusUnauthorized, "Invalid or expired token")
}

func (s *CheckoutHandlerTestSuite) TestBegin_Errors() {
	tests := []struct {
		name       string
		err        error
		expectCode int
		expectMsg  string
	}{
		{"empty cart", errs.ErrEmptyCart, http.StatusUnprocessableEntity, "Your cart is empty"},
		{"guests not allowed", errs.ErrAuthRequired, http.StatusUnauthorized, "Please sign in"},
		{"storage failure", errs.Categorize(errs.New("redis: connection refused"), errs.CategoryNetworkUnavailable),
			http.StatusServiceUnavailable, ""},
		{"unexpected", errs.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.mockCommands.EXPECT().Begin(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPost, "/api/checkout/session", nil, guestCookie(), "")

			httptest.AssertErrorResponse(s.T(), w, tt.expectCode, tt.expectMsg)
			s.NotContains(w.Body.String(), "redis")
			s.NotContains(w.Body.String(), "boom")
		})
	}
}

func (s *CheckoutHandlerTestSuite) TestCurrent_NotFound() {
	s.mockCommands.EXPECT().Current(gomock.Any(), checkout.Guest(guestID)).Return(nil, errs.ErrSessionNotFound)

	w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodGet, "/api/checkout/session", nil, guestCookie(), "")

	httptest.AssertErrorResponse(s.T(), w, http.StatusNotFound, "Checkout session not found")
}

func (s *CheckoutHandlerTestSuite) TestReset() {
	s.Run("clears the session", func() {
		s.mockCommands.EXPECT().Reset(gomock.Any(), checkout.Guest(guestID)).Return(nil)

		w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodDelete, "/api/checkout/session", nil, guestCookie(), "")

		s.Equal(http.StatusNoContent, w.Code)
	})

	s.Run("payment outstanding", func() {
		s.mockCommands.EXPECT().Reset(gomock.Any(), gomock.Any()).Return(errs.ErrSubmissionInProgress)

		w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodDelete, "/api/checkout/session", nil, guestCookie(), "")

		httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "Submission already in progress")
	})
}

func (s *CheckoutHandlerTestSuite) TestUpdateContact() {
	b := builder.NewCheckoutBuilder()

	s.Run("passes the request through", func() {
		s.mockCommands.EXPECT().
			UpdateContact(gomock.Any(), checkout.Guest(guestID), b.BuildContactRequestDTO()).
			Return(checkoutResult("g:"+guestID, checkout.StepContact), nil)

		w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPut, "/api/checkout/contact",
			b.BuildContactRequestDTO(), guestCookie(), "")

		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, nil)
	})

	s.Run("malformed body", func() {
		w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPut, "/api/checkout/contact",
			"not an object", guestCookie(), "")

		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid request format")
	})

	s.Run("wrong step", func() {
		s.mockCommands.EXPECT().UpdateContact(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errs.ErrInvalidTransition)

		w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPut, "/api/checkout/contact",
			b.BuildContactRequestDTO(), guestCookie(), "")

		httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "not available at the current checkout step")
	})
}

func (s *CheckoutHandlerTestSuite) TestAdvance_ValidationFailure() {
	s.mockCommands.EXPECT().Advance(gomock.Any(), checkout.Guest(guestID)).Return(nil, &checkout.ValidationError{
		Step:   checkout.StepContact,
		Fields: map[string]string{"email": "Enter a valid email address"},
	})

	w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPost, "/api/checkout/advance", nil, guestCookie(), "")

	body := httptest.AssertCategoryResponse(s.T(), w, http.StatusUnprocessableEntity, string(errs.CategoryValidationRejected), false)
	s.Equal(string(checkout.StepContact), body.Detail["step"])
	s.Equal(map[string]any{"email": "Enter a valid email address"}, body.Detail["fields"])
}

func (s *CheckoutHandlerTestSuite) TestSelectFulfillment_Errors() {
	tests := []struct {
		name       string
		err        error
		expectCode int
		expectMsg  string
	}{
		{"unknown zone", errs.ErrZoneNotFound, http.StatusNotFound, "Delivery zone not found"},
		{"unknown pickup point", errs.ErrPickupPointNotFound, http.StatusNotFound, "Pickup point not found"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.mockCommands.EXPECT().SelectFulfillment(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, tt.err)

			w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPut, "/api/checkout/fulfillment",
				builder.NewCheckoutBuilder().BuildFulfillmentRequestDTO(), guestCookie(), "")

			httptest.AssertErrorResponse(s.T(), w, tt.expectCode, tt.expectMsg)
		})
	}
}

func (s *CheckoutHandlerTestSuite) TestSelectFulfillment_BadRequest() {
	tests := []struct {
		name   string
		mutate func(m map[string]any)
	}{
		{"type missing", testutil.Field("type", nil)},
		{"zone id not a uuid", testutil.Field("zoneId", "lekki")},
		{"address not an object", testutil.Field("address", "12 Admiralty Way")},
		{"street not a string", testutil.Field("address.street", 12)},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			body := testutil.DtoMap(s.T(), builder.NewCheckoutBuilder().BuildFulfillmentRequestDTO(), tt.mutate)

			w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPut, "/api/checkout/fulfillment", body, guestCookie(), "")

			httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid request format")
		})
	}
}

func (s *CheckoutHandlerTestSuite) TestSelectSchedule() {
	req := reqdto.ScheduleRequest{Date: "2025-03-11", WindowStart: "14:00"}
	s.mockCommands.EXPECT().
		SelectSchedule(gomock.Any(), checkout.Guest(guestID), req).
		Return(checkoutResult("g:"+guestID, checkout.StepSchedule), nil)

	w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPut, "/api/checkout/schedule", req, guestCookie(), "")

	var resp resdto.CheckoutResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
	s.Equal(checkout.StepSchedule, resp.Step)
}

func (s *CheckoutHandlerTestSuite) TestSelectPaymentMethodAndTerms() {
	s.mockCommands.EXPECT().
		SelectPaymentMethod(gomock.Any(), gomock.Any(), "paystack").
		Return(checkoutResult("g:"+guestID, checkout.StepPaymentMethod), nil)
	s.mockCommands.EXPECT().
		SetTermsAccepted(gomock.Any(), gomock.Any(), true).
		Return(checkoutResult("g:"+guestID, checkout.StepReview), nil)

	w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPut, "/api/checkout/payment-method",
		reqdto.PaymentMethodRequest{Method: "paystack"}, guestCookie(), "")
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, nil)

	w = httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPut, "/api/checkout/terms",
		reqdto.TermsRequest{Accepted: true}, guestCookie(), "")
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, nil)
}

func (s *CheckoutHandlerTestSuite) TestSyncCart() {
	s.Run("converts items", func() {
		s.mockCommands.EXPECT().
			SyncCart(gomock.Any(), checkout.Guest(guestID), []checkout.LineItem{
				{ProductID: "puff-puff", Name: "Puff Puff", Quantity: 4, UnitPrice: checkout.Naira(500)},
			}).
			Return(checkoutResult("g:"+guestID, checkout.StepContact), nil)

		w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPut, "/api/checkout/cart",
			reqdto.CartRequest{Items: []reqdto.CartItemRequest{
				{ProductID: " puff-puff ", Name: "Puff Puff", Quantity: 4, UnitPriceKobo: 50000},
			}}, guestCookie(), "")

		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, nil)
	})

	s.Run("negative quantity", func() {
		w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPut, "/api/checkout/cart",
			reqdto.CartRequest{Items: []reqdto.CartItemRequest{
				{ProductID: "puff-puff", Name: "Puff Puff", Quantity: -1, UnitPriceKobo: 50000},
			}}, guestCookie(), "")

		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Quantity must be positive")
	})

	s.Run("negative price", func() {
		w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPut, "/api/checkout/cart",
			reqdto.CartRequest{Items: []reqdto.CartItemRequest{
				{ProductID: "puff-puff", Name: "Puff Puff", Quantity: 1, UnitPriceKobo: -100},
			}}, guestCookie(), "")

		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Prices cannot be negative")
	})
	s.Run("price beyond the accepted range", func() {
		w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPut, "/api/checkout/cart",
			reqdto.CartRequest{Items: []reqdto.CartItemRequest{
				{ProductID: "puff-puff", Name: "Puff Puff", Quantity: 2, UnitPriceKobo: 5_000_000_000_000_000_000},
			}}, guestCookie(), "")

		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid request format")
	})

	s.Run("total past the cap", func() {
		w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPut, "/api/checkout/cart",
			reqdto.CartRequest{Items: []reqdto.CartItemRequest{
				{ProductID: "a", Name: "Party tray", Quantity: 2, UnitPriceKobo: checkout.MaxAmountKobo},
			}}, guestCookie(), "")

		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Cart total is too large")
	})
}

func (s *CheckoutHandlerTestSuite) TestBack() {
	s.mockCommands.EXPECT().
		Back(gomock.Any(), checkout.Guest(guestID)).
		Return(checkoutResult("g:"+guestID, checkout.StepPaymentMethod), nil)

	w := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPost, "/api/checkout/back", nil, guestCookie(), "")

	var resp resdto.CheckoutResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
	s.Equal(checkout.StepPaymentMethod, resp.Step)
}
