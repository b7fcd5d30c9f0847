package api

import (
	"net/http"

	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	availabilityQueries queries.AvailabilityQueries
	fulfillmentQueries  queries.FulfillmentQueries
}

func NewAvailabilityHandler(availabilityQueries queries.AvailabilityQueries, fulfillmentQueries queries.FulfillmentQueries) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityQueries: availabilityQueries,
		fulfillmentQueries:  fulfillmentQueries,
	}
}

// @Summary Delivery and pickup slots
// @Description Bookable windows per day for the date picker
// @Tags availability
// @Produce json
// @Param from query string false "First date (YYYY-MM-DD), defaults to today"
// @Param to query string false "Last date (YYYY-MM-DD), defaults to six days after from"
// @Param type query string false "delivery or pickup" default(delivery)
// @Success 200 {array} calendar.DeliverySlot
// @Failure 400 {object} httperr.Response
// @Router /api/checkout/slots [get]
func (h *AvailabilityHandler) Slots(c *gin.Context) {
	slots, err := h.availabilityQueries.Slots(c.Request.Context(), queries.SlotFilters{
		From:        c.Query("from"),
		To:          c.Query("to"),
		Fulfillment: c.Query("type"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

// @Summary Delivery zones and pickup points
// @Tags availability
// @Produce json
// @Success 200 {object} queries.FulfillmentOptions
// @Router /api/checkout/fulfillment-options [get]
func (h *AvailabilityHandler) FulfillmentOptions(c *gin.Context) {
	opts, err := h.fulfillmentQueries.Options(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}
