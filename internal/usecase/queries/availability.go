package queries

import (
	"context"
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/calendar"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/clock"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/errs"
)

const defaultRangeDays = 7

var (
	ErrInvalidRange       = errs.New("invalid date range")
	ErrInvalidFulfillment = errs.New("fulfillment type must be delivery or pickup")
)

type SlotFilters struct {
	From        string
	To          string
	Fulfillment string
}

type AvailabilityQueries interface {
	Slots(ctx context.Context, filters SlotFilters) ([]calendar.DeliverySlot, error)
}

type availabilityQueriesImpl struct {
	calculator   *calendar.Calculator
	clock        clock.Clock
	maxRangeDays int
}

func NewAvailabilityQueries(calculator *calendar.Calculator, clk clock.Clock, maxRangeDays int) AvailabilityQueries {
	if maxRangeDays <= 0 {
		maxRangeDays = 31
	}
	return &availabilityQueriesImpl{calculator: calculator, clock: clk, maxRangeDays: maxRangeDays}
}

// Slots defaults to a week starting today in the business time zone.
func (q *availabilityQueriesImpl) Slots(_ context.Context, filters SlotFilters) ([]calendar.DeliverySlot, error) {
	fulfillment := calendar.FulfillmentType(filters.Fulfillment)
	if fulfillment == "" {
		fulfillment = calendar.FulfillmentDelivery
	}
	if !fulfillment.IsValid() {
		return nil, ErrInvalidFulfillment
	}

	loc := q.calculator.Location()
	now := q.clock.Now().In(loc)

	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if filters.From != "" {
		parsed, err := time.ParseInLocation(calendar.DateLayout, filters.From, loc)
		if err != nil {
			return nil, errs.Mark(errs.Wrapf(err, "from %q", filters.From), ErrInvalidRange)
		}
		from = parsed
	}

	to := from.AddDate(0, 0, defaultRangeDays-1)
	if filters.To != "" {
		parsed, err := time.ParseInLocation(calendar.DateLayout, filters.To, loc)
		if err != nil {
			return nil, errs.Mark(errs.Wrapf(err, "to %q", filters.To), ErrInvalidRange)
		}
		to = parsed
	}

	if to.Before(from) || to.After(from.AddDate(0, 0, q.maxRangeDays-1)) {
		return nil, ErrInvalidRange
	}
	return q.calculator.GetSlots(now, from, to, fulfillment), nil
}
