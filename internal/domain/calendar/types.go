package calendar

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidClockTime = errors.New("invalid clock time")

type FulfillmentType string

const (
	FulfillmentDelivery FulfillmentType = "delivery"
	FulfillmentPickup   FulfillmentType = "pickup"
)

func (f FulfillmentType) String() string {
	return string(f)
}

func (f FulfillmentType) IsValid() bool {
	switch f {
	case FulfillmentDelivery, FulfillmentPickup:
		return true
	default:
		return false
	}
}

// DisabledScope names which fulfillment types a disabled date applies to.
type DisabledScope string

const (
	ScopeDelivery DisabledScope = "delivery"
	ScopePickup   DisabledScope = "pickup"
	ScopeAll      DisabledScope = "all"
)

func (s DisabledScope) Covers(f FulfillmentType) bool {
	return s == ScopeAll || string(s) == string(f)
}

type ClockTime struct {
	Hour   int
	Minute int
}

func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c ClockTime) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

type MonthDay struct {
	Month time.Month
	Day   int
}

func MonthDayOf(t time.Time) MonthDay {
	return MonthDay{Month: t.Month(), Day: t.Day()}
}

func (m MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", int(m.Month), m.Day)
}

type DeliveryTimeWindow struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type DeliverySlot struct {
	Date          string               `json:"date"`
	IsBusinessDay bool                 `json:"isBusinessDay"`
	IsHoliday     bool                 `json:"isHoliday"`
	HolidayName   string               `json:"holidayName,omitempty"`
	TimeWindows   []DeliveryTimeWindow `json:"timeWindows"`
}

// Window finds a window by its start time.
func (s DeliverySlot) Window(startTime string) (DeliveryTimeWindow, bool) {
	for _, w := range s.TimeWindows {
		if w.StartTime == startTime {
			return w, true
		}
	}
	return DeliveryTimeWindow{}, false
}

const (
	DateLayout = "2006-01-02"

	ReasonInsufficientLeadTime = "insufficient lead time"
	ReasonWindowPassed         = "time window has passed"
	ReasonPreOrderCutoff       = "pre-order cutoff passed"
)
