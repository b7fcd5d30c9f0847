//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/calendar"
	"github.com/enviofleett/smallchops-09-sub001/internal/handler/api"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/clock"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/queries"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"
	"github.com/enviofleett/smallchops-09-sub001/tests/common/fake"
	"github.com/enviofleett/smallchops-09-sub001/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type AvailabilityHandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	zoneID uuid.UUID
}

func (s *AvailabilityHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	wat := time.FixedZone("WAT", 3600)
	rules := calendar.NewRules(calendar.DefaultRuleSet(), calendar.Hours{
		Opening:     calendar.ClockTime{Hour: 8},
		Closing:     calendar.ClockTime{Hour: 22},
		Granularity: time.Hour,
		MinLeadTime: 90 * time.Minute,
		Location:    wat,
	}, nil)
	now := time.Date(2025, time.March, 10, 10, 30, 0, 0, wat)

	s.zoneID = uuid.New()
	directory := fake.NewUoW().
		AddZone(shared.ZoneSnapshot{ID: s.zoneID, Name: "Lekki Phase 1", FeeKobo: 150000, Active: true}).
		AddZone(shared.ZoneSnapshot{ID: uuid.New(), Name: "Closed", FeeKobo: 90000}).
		AddPickupPoint(shared.PickupPointSnapshot{ID: uuid.New(), Name: "Ikeja Kitchen", Address: "5 Allen Avenue, Ikeja", Active: true})

	handler := api.NewAvailabilityHandler(
		queries.NewAvailabilityQueries(calendar.NewCalculator(rules), clock.NewMockClock(now), 14),
		queries.NewFulfillmentQueries(directory),
	)
	s.router.GET("/api/checkout/slots", handler.Slots)
	s.router.GET("/api/checkout/fulfillment-options", handler.FulfillmentOptions)
}

func TestAvailabilityHandlerSuite(t *testing.T) {
	suite.Run(t, new(AvailabilityHandlerTestSuite))
}

func (s *AvailabilityHandlerTestSuite) TestSlots() {
	var slots []calendar.DeliverySlot
	w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/checkout/slots?from=2025-03-10&to=2025-03-11", nil, "")

	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &slots)
	s.Require().Len(slots, 2)
	s.Equal("2025-03-10", slots[0].Date)

	tomorrow, ok := slots[1].Window("14:00")
	s.Require().True(ok)
	s.True(tomorrow.Available)
	s.Equal("15:00", tomorrow.EndTime)
}

func (s *AvailabilityHandlerTestSuite) TestSlots_BadRequest() {
	tests := []struct {
		name      string
		query     string
		expectMsg string
	}{
		{"reversed range", "?from=2025-03-12&to=2025-03-10", "Invalid date range"},
		{"malformed date", "?from=10-03-2025", "Invalid date range"},
		{"unknown fulfillment", "?type=drone", "Fulfillment type must be delivery or pickup"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/checkout/slots"+tt.query, nil, "")
			httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, tt.expectMsg)
		})
	}
}

func (s *AvailabilityHandlerTestSuite) TestFulfillmentOptions() {
	var opts queries.FulfillmentOptions
	w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/checkout/fulfillment-options", nil, "")

	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &opts)
	s.Equal([]queries.ZoneView{{ID: s.zoneID, Name: "Lekki Phase 1", FeeKobo: 150000}}, opts.Zones)
	s.Require().Len(opts.PickupPoints, 1)
	s.Equal("Ikeja Kitchen", opts.PickupPoints[0].Name)
}
