package api

import (
	"net/http"
	"net/url"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/payment"
	reqdto "github.com/enviofleett/smallchops-09-sub001/internal/handler/dto/request"
	resdto "github.com/enviofleett/smallchops-09-sub001/internal/handler/dto/response"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/config"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/errs"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	coordinator commands.PaymentCoordinator
	pageURL     string
}

func NewPaymentHandler(coordinator commands.PaymentCoordinator, cfg config.Config) *PaymentHandler {
	return &PaymentHandler{
		coordinator: coordinator,
		pageURL:     cfg.Checkout.PageURL,
	}
}

// @Summary Submit the order
// @Description Creates the order (or reuses one from a failed attempt) and returns the gateway payload
// @Tags payment
// @Produce json
// @Success 201 {object} resdto.SubmitResponse
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /api/checkout/submit [post]
func (h *PaymentHandler) Submit(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	result, err := h.coordinator.Submit(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromSubmitResult(result))
}

// @Summary Popup callback
// @Description Reports a reference returned by the gateway popup
// @Tags payment
// @Accept json
// @Produce json
// @Param request body reqdto.PaymentCallbackRequest true "Reference"
// @Success 200 {object} payment.Outcome
// @Router /api/checkout/payment/callback [post]
func (h *PaymentHandler) Callback(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req reqdto.PaymentCallbackRequest
	if !bindJSON(c, &req) {
		return
	}
	outcome, err := h.coordinator.Complete(c.Request.Context(), identity.SessionKey(), req.Reference, payment.ChannelPopup)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// @Summary Gateway redirect
// @Description Landing URL the gateway redirects to; forwards the browser to confirmation or back to checkout
// @Tags payment
// @Param reference query string true "Payment reference"
// @Success 303
// @Router /payment/callback [get]
func (h *PaymentHandler) Redirect(c *gin.Context) {
	reference := c.Query("reference")
	if reference == "" {
		reference = c.Query("trxref")
	}

	outcome, err := h.coordinator.CompleteByReference(c.Request.Context(), reference, payment.ChannelRedirect)
	switch {
	case err == nil && outcome.Kind == payment.OutcomeSuccess:
		c.Redirect(http.StatusSeeOther, outcome.NavigateTo)
	case err == nil:
		c.Redirect(http.StatusSeeOther, h.checkoutPage(string(outcome.Kind), outcome.Category))
	case errs.Is(err, errs.ErrNoActiveAttempt):
		c.Redirect(http.StatusSeeOther, h.checkoutPage("unknown", ""))
	case errs.Is(err, errs.ErrStaleReference):
		c.Redirect(http.StatusSeeOther, h.checkoutPage("stale", ""))
	default:
		_ = c.Error(err)
		c.Redirect(http.StatusSeeOther, h.checkoutPage("pending", string(errs.CategoryOf(err))))
	}
}

// @Summary Verify payment
// @Description Manual re-verification when the customer returns without a callback
// @Tags payment
// @Produce json
// @Success 200 {object} payment.Outcome
// @Failure 503 {object} httperr.Response
// @Failure 504 {object} httperr.Response
// @Router /api/checkout/payment/verify [post]
func (h *PaymentHandler) Verify(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	outcome, err := h.coordinator.Verify(c.Request.Context(), identity.SessionKey())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// @Summary Cancel payment
// @Description Customer closed the gateway; returns to review with the draft unchanged
// @Tags payment
// @Produce json
// @Success 200 {object} payment.Outcome
// @Router /api/checkout/payment/cancel [post]
func (h *PaymentHandler) Cancel(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	outcome, err := h.coordinator.Cancel(c.Request.Context(), identity.SessionKey())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *PaymentHandler) checkoutPage(status, category string) string {
	q := url.Values{}
	q.Set("payment", status)
	if category != "" {
		q.Set("category", category)
	}
	return h.pageURL + "?" + q.Encode()
}
