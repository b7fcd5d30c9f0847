package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/checkout"
	"github.com/enviofleett/smallchops-09-sub001/internal/handler/httperr"
	"github.com/enviofleett/smallchops-09-sub001/internal/handler/middleware"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/errs"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

var sentinelResponses = []struct {
	err    error
	status int
	msg    string
}{
	{errs.ErrSessionNotFound, http.StatusNotFound, "Checkout session not found"},
	{errs.ErrEmptyCart, http.StatusUnprocessableEntity, "Your cart is empty"},
	{errs.ErrAuthRequired, http.StatusUnauthorized, "Please sign in to continue checkout"},
	{errs.ErrInvalidTransition, http.StatusConflict, "This action is not available at the current checkout step"},
	{errs.ErrZoneNotFound, http.StatusNotFound, "Delivery zone not found"},
	{errs.ErrPickupPointNotFound, http.StatusNotFound, "Pickup point not found"},
	{errs.ErrSubmissionInProgress, http.StatusConflict, "Submission already in progress"},
	{errs.ErrNoActiveAttempt, http.StatusNotFound, "No payment is awaiting confirmation"},
	{errs.ErrStaleReference, http.StatusConflict, "This payment reference is no longer active"},
	{errs.ErrAlreadyCompleted, http.StatusConflict, "Payment already completed"},
	{queries.ErrInvalidRange, http.StatusBadRequest, "Invalid date range"},
	{queries.ErrInvalidFulfillment, http.StatusBadRequest, "Fulfillment type must be delivery or pickup"},
	{checkout.ErrInvalidQuantity, http.StatusBadRequest, "Quantity must be positive"},
	{checkout.ErrNegativeMoney, http.StatusBadRequest, "Prices cannot be negative"},
	{checkout.ErrAmountTooLarge, http.StatusBadRequest, "Cart total is too large"},
}

var categoryStatus = map[errs.Category]int{
	errs.CategoryNetworkUnavailable: http.StatusServiceUnavailable,
	errs.CategoryServerRejected:     http.StatusUnprocessableEntity,
	errs.CategoryResponseMalformed:  http.StatusBadGateway,
	errs.CategoryGatewayDeclined:    http.StatusPaymentRequired,
	errs.CategoryGatewayTimeout:     http.StatusGatewayTimeout,
}

// respondError maps usecase errors to HTTP responses. Raw error text never reaches the client.
func respondError(c *gin.Context, err error) {
	var validation *checkout.ValidationError
	if errors.As(err, &validation) {
		httperr.AbortWithCategory(c, http.StatusUnprocessableEntity, err,
			string(errs.CategoryValidationRejected), errs.UserMessage(err), false, gin.H{
				"step":   validation.Step,
				"fields": validation.Fields,
			})
		return
	}

	for _, s := range sentinelResponses {
		if errs.Is(err, s.err) {
			httperr.AbortWithError(c, s.status, err, s.msg, nil)
			return
		}
	}

	category := errs.CategoryOf(err)
	if status, ok := categoryStatus[category]; ok {
		httperr.AbortWithCategory(c, status, err, string(category), errs.UserMessage(err), errs.Retryable(err), nil)
		return
	}

	slog.Error("unhandled checkout error", slog.String("path", c.Request.URL.Path), slog.String("error", err.Error()))
	httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
}

func requireIdentity(c *gin.Context) (checkout.Identity, bool) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errs.New("identity missing from context"), "Internal server error", nil)
		return checkout.Identity{}, false
	}
	return identity, true
}

type commandCall struct {
	ctx      context.Context
	identity checkout.Identity
}
