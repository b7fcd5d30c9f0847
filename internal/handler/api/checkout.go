package api

import (
	"net/http"

	reqdto "github.com/enviofleett/smallchops-09-sub001/internal/handler/dto/request"
	resdto "github.com/enviofleett/smallchops-09-sub001/internal/handler/dto/response"
	"github.com/enviofleett/smallchops-09-sub001/internal/handler/httperr"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	checkoutCommands commands.CheckoutCommands
}

func NewCheckoutHandler(checkoutCommands commands.CheckoutCommands) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutCommands: checkoutCommands,
	}
}

// @Summary Enter checkout
// @Description Start a new checkout or resume the saved one for the current customer or guest session
// @Tags checkout
// @Produce json
// @Success 200 {object} resdto.CheckoutResponse
// @Failure 401 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /api/checkout/session [post]
func (h *CheckoutHandler) Begin(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	result, err := h.checkoutCommands.Begin(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCheckoutResult(result))
}

// @Summary Current checkout
// @Tags checkout
// @Produce json
// @Success 200 {object} resdto.CheckoutResponse
// @Failure 404 {object} httperr.Response
// @Router /api/checkout/session [get]
func (h *CheckoutHandler) Current(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	result, err := h.checkoutCommands.Current(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCheckoutResult(result))
}

// @Summary Reset checkout
// @Description Abandon the checkout and clear every stored key of the session
// @Tags checkout
// @Success 204
// @Failure 409 {object} httperr.Response
// @Router /api/checkout/session [delete]
func (h *CheckoutHandler) Reset(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	if err := h.checkoutCommands.Reset(c.Request.Context(), identity); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Update contact details
// @Tags checkout
// @Accept json
// @Produce json
// @Param request body reqdto.ContactRequest true "Contact"
// @Success 200 {object} resdto.CheckoutResponse
// @Failure 409 {object} httperr.Response
// @Router /api/checkout/contact [put]
func (h *CheckoutHandler) UpdateContact(c *gin.Context) {
	var req reqdto.ContactRequest
	if !bindJSON(c, &req) {
		return
	}
	h.run(c, func(cmd commandCall) (*commands.CheckoutResult, error) {
		return h.checkoutCommands.UpdateContact(cmd.ctx, cmd.identity, req)
	})
}

// @Summary Choose delivery or pickup
// @Tags checkout
// @Accept json
// @Produce json
// @Param request body reqdto.FulfillmentRequest true "Fulfillment"
// @Success 200 {object} resdto.CheckoutResponse
// @Failure 404 {object} httperr.Response
// @Router /api/checkout/fulfillment [put]
func (h *CheckoutHandler) SelectFulfillment(c *gin.Context) {
	var req reqdto.FulfillmentRequest
	if !bindJSON(c, &req) {
		return
	}
	h.run(c, func(cmd commandCall) (*commands.CheckoutResult, error) {
		return h.checkoutCommands.SelectFulfillment(cmd.ctx, cmd.identity, req)
	})
}

// @Summary Choose a delivery or pickup window
// @Tags checkout
// @Accept json
// @Produce json
// @Param request body reqdto.ScheduleRequest true "Schedule"
// @Success 200 {object} resdto.CheckoutResponse
// @Failure 422 {object} httperr.Response
// @Router /api/checkout/schedule [put]
func (h *CheckoutHandler) SelectSchedule(c *gin.Context) {
	var req reqdto.ScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	h.run(c, func(cmd commandCall) (*commands.CheckoutResult, error) {
		return h.checkoutCommands.SelectSchedule(cmd.ctx, cmd.identity, req)
	})
}

// @Summary Choose a payment method
// @Tags checkout
// @Accept json
// @Produce json
// @Param request body reqdto.PaymentMethodRequest true "Payment method"
// @Success 200 {object} resdto.CheckoutResponse
// @Router /api/checkout/payment-method [put]
func (h *CheckoutHandler) SelectPaymentMethod(c *gin.Context) {
	var req reqdto.PaymentMethodRequest
	if !bindJSON(c, &req) {
		return
	}
	h.run(c, func(cmd commandCall) (*commands.CheckoutResult, error) {
		return h.checkoutCommands.SelectPaymentMethod(cmd.ctx, cmd.identity, req.Method)
	})
}

// @Summary Accept or decline the terms
// @Tags checkout
// @Accept json
// @Produce json
// @Param request body reqdto.TermsRequest true "Terms"
// @Success 200 {object} resdto.CheckoutResponse
// @Router /api/checkout/terms [put]
func (h *CheckoutHandler) SetTerms(c *gin.Context) {
	var req reqdto.TermsRequest
	if !bindJSON(c, &req) {
		return
	}
	h.run(c, func(cmd commandCall) (*commands.CheckoutResult, error) {
		return h.checkoutCommands.SetTermsAccepted(cmd.ctx, cmd.identity, req.Accepted)
	})
}

// @Summary Store the cart
// @Tags checkout
// @Accept json
// @Produce json
// @Param request body reqdto.CartRequest true "Cart"
// @Success 200 {object} resdto.CheckoutResponse
// @Router /api/checkout/cart [put]
func (h *CheckoutHandler) SyncCart(c *gin.Context) {
	var req reqdto.CartRequest
	if !bindJSON(c, &req) {
		return
	}
	items, err := req.ToDomain()
	if err != nil {
		respondError(c, err)
		return
	}
	h.run(c, func(cmd commandCall) (*commands.CheckoutResult, error) {
		return h.checkoutCommands.SyncCart(cmd.ctx, cmd.identity, items)
	})
}

// @Summary Advance to the next step
// @Tags checkout
// @Produce json
// @Success 200 {object} resdto.CheckoutResponse
// @Failure 422 {object} httperr.Response
// @Router /api/checkout/advance [post]
func (h *CheckoutHandler) Advance(c *gin.Context) {
	h.run(c, func(cmd commandCall) (*commands.CheckoutResult, error) {
		return h.checkoutCommands.Advance(cmd.ctx, cmd.identity)
	})
}

// @Summary Go back one step
// @Tags checkout
// @Produce json
// @Success 200 {object} resdto.CheckoutResponse
// @Router /api/checkout/back [post]
func (h *CheckoutHandler) Back(c *gin.Context) {
	h.run(c, func(cmd commandCall) (*commands.CheckoutResult, error) {
		return h.checkoutCommands.Back(cmd.ctx, cmd.identity)
	})
}

func (h *CheckoutHandler) run(c *gin.Context, fn func(cmd commandCall) (*commands.CheckoutResult, error)) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	result, err := fn(commandCall{ctx: c.Request.Context(), identity: identity})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCheckoutResult(result))
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return false
	}
	return true
}
