package calendar

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrUnknownWindow     = errors.New("time window does not exist")
	ErrWindowUnavailable = errors.New("time window unavailable")
)

// UnavailableError carries the reason a chosen window cannot be booked.
type UnavailableError struct {
	Date   string
	Start  string
	Reason string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Date, e.Start, e.Reason)
}

func (e *UnavailableError) Unwrap() error {
	return ErrWindowUnavailable
}

// Calculator derives bookable windows from Rules. It holds no mutable state.
type Calculator struct {
	rules *Rules
}

func NewCalculator(rules *Rules) *Calculator {
	return &Calculator{rules: rules}
}

func (c *Calculator) Location() *time.Location {
	return c.rules.Location()
}

// GetSlots returns one slot per calendar day in [rangeStart, rangeEnd], both inclusive.
func (c *Calculator) GetSlots(now, rangeStart, rangeEnd time.Time, fulfillment FulfillmentType) []DeliverySlot {
	loc := c.rules.Location()
	now = now.In(loc)
	start := startOfDay(rangeStart.In(loc))
	end := startOfDay(rangeEnd.In(loc))

	var slots []DeliverySlot
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		slots = append(slots, c.slotFor(now, day, fulfillment))
	}
	return slots
}

func (c *Calculator) SlotOn(now time.Time, date string, fulfillment FulfillmentType) (DeliverySlot, error) {
	day, err := time.ParseInLocation(DateLayout, date, c.rules.Location())
	if err != nil {
		return DeliverySlot{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return c.slotFor(now.In(c.rules.Location()), day, fulfillment), nil
}

// CheckWindow re-validates a previously chosen window against the current time.
func (c *Calculator) CheckWindow(now time.Time, date, startTime string, fulfillment FulfillmentType) (DeliveryTimeWindow, error) {
	slot, err := c.SlotOn(now, date, fulfillment)
	if err != nil {
		return DeliveryTimeWindow{}, err
	}
	if !slot.IsBusinessDay {
		reason := "closed"
		if slot.IsHoliday {
			reason = "closed for " + slot.HolidayName
		}
		return DeliveryTimeWindow{}, &UnavailableError{Date: date, Start: startTime, Reason: reason}
	}
	window, ok := slot.Window(startTime)
	if !ok {
		return DeliveryTimeWindow{}, fmt.Errorf("%w: %s %s", ErrUnknownWindow, date, startTime)
	}
	if !window.Available {
		return window, &UnavailableError{Date: date, Start: startTime, Reason: window.Reason}
	}
	return window, nil
}

func (c *Calculator) slotFor(now, day time.Time, fulfillment FulfillmentType) DeliverySlot {
	slot := DeliverySlot{
		Date:        day.Format(DateLayout),
		TimeWindows: []DeliveryTimeWindow{},
	}

	if name, ok := c.rules.closedOn(day); ok {
		slot.IsHoliday = true
		slot.HolidayName = name
		return slot
	}
	if c.rules.closedWeekday(day) {
		return slot
	}
	slot.IsBusinessDay = true

	hours := c.rules.hours
	opening := hours.Opening.On(day)
	closing := hours.Closing.On(day)

	disabled, isDisabled := c.rules.disabledOn(day)
	isDisabled = isDisabled && disabled.Type.Covers(fulfillment)

	cutoffInstant, cutoffReached := c.cutoffFor(now, day)

	special, hasSpecial := c.rules.specialOpeningOn(day)
	earliest := opening
	if hasSpecial && special.On(day).After(opening) {
		earliest = special.On(day)
	}

	for start := opening; !start.Add(hours.Granularity).After(closing); start = start.Add(hours.Granularity) {
		end := start.Add(hours.Granularity)
		window := DeliveryTimeWindow{
			StartTime: start.Format("15:04"),
			EndTime:   end.Format("15:04"),
			Available: true,
		}

		switch {
		case isDisabled:
			window.Reason = disabled.Reason
		case cutoffReached && start.After(cutoffInstant):
			window.Reason = ReasonPreOrderCutoff
		case start.Before(earliest):
			window.Reason = "opens at " + earliest.Format("15:04")
		case !start.After(now):
			window.Reason = ReasonWindowPassed
		case start.Before(now.Add(hours.MinLeadTime)):
			window.Reason = ReasonInsufficientLeadTime
		}
		if window.Reason != "" {
			window.Available = false
		}
		slot.TimeWindows = append(slot.TimeWindows, window)
	}

	return slot
}

// cutoffFor reports the midnight starting the previous day when that day is a
// pre-order cutoff and now has reached it.
func (c *Calculator) cutoffFor(now, day time.Time) (time.Time, bool) {
	previous := day.AddDate(0, 0, -1)
	if !c.rules.isCutoff(previous) {
		return time.Time{}, false
	}
	instant := startOfDay(previous)
	return instant, !now.Before(instant)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
