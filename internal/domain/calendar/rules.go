package calendar

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// RuleSet is the on-disk shape of the business calendar. Keys are "MM-DD"
// (recurring every year) or "YYYY-MM-DD" (one specific date).
type RuleSet struct {
	FixedClosedDates         map[string]string        `json:"fixedClosedDates"`
	SpecialOpeningTimes      map[string]string        `json:"specialOpeningTimes"`
	PreOrderCutoffs          []string                 `json:"preOrderCutoffs"`
	FulfillmentDisabledDates map[string]DisabledEntry `json:"fulfillmentDisabledDates"`
}

type DisabledEntry struct {
	Type   DisabledScope `json:"type"`
	Reason string        `json:"reason"`
}

type Hours struct {
	Opening        ClockTime
	Closing        ClockTime
	ClosedWeekdays []time.Weekday
	Granularity    time.Duration
	MinLeadTime    time.Duration
	Location       *time.Location
}

func DefaultRuleSet() RuleSet {
	return RuleSet{
		FixedClosedDates: map[string]string{
			"01-01": "New Year's Day",
			"12-25": "Christmas Day",
			"12-26": "Boxing Day",
		},
		SpecialOpeningTimes: map[string]string{
			"01-02": "12:00",
		},
		PreOrderCutoffs: []string{"12-24", "12-31"},
		FulfillmentDisabledDates: map[string]DisabledEntry{
			"12-24": {Type: ScopeDelivery, Reason: "Delivery unavailable on Christmas Eve"},
		},
	}
}

func LoadRuleSet(path string) (RuleSet, error) {
	if path == "" {
		return DefaultRuleSet(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, err
	}
	var set RuleSet
	if err := json.Unmarshal(data, &set); err != nil {
		return RuleSet{}, err
	}
	return set, nil
}

// Rules is the parsed, immutable form of a RuleSet.
type Rules struct {
	closed             map[MonthDay]string
	openingsByDate     map[string]ClockTime
	openingsByMonthDay map[MonthDay]ClockTime
	cutoffs            map[MonthDay]struct{}
	disabledByDate     map[string]DisabledEntry
	disabledByMonthDay map[MonthDay]DisabledEntry
	closedWeekdays     map[time.Weekday]struct{}
	hours              Hours
}

// NewRules skips malformed entries and logs each one once.
func NewRules(set RuleSet, hours Hours, logger *slog.Logger) *Rules {
	if logger == nil {
		logger = slog.Default()
	}
	if hours.Location == nil {
		hours.Location = time.UTC
	}
	if hours.Granularity <= 0 {
		hours.Granularity = time.Hour
	}
	if hours.MinLeadTime < 0 {
		hours.MinLeadTime = 0
	}

	r := &Rules{
		closed:             map[MonthDay]string{},
		openingsByDate:     map[string]ClockTime{},
		openingsByMonthDay: map[MonthDay]ClockTime{},
		cutoffs:            map[MonthDay]struct{}{},
		disabledByDate:     map[string]DisabledEntry{},
		disabledByMonthDay: map[MonthDay]DisabledEntry{},
		closedWeekdays:     map[time.Weekday]struct{}{},
		hours:              hours,
	}
	for _, wd := range hours.ClosedWeekdays {
		r.closedWeekdays[wd] = struct{}{}
	}

	for key, name := range set.FixedClosedDates {
		md, ok := parseMonthDay(key)
		if !ok {
			logger.Warn("ignoring malformed closed date", "key", key)
			continue
		}
		r.closed[md] = name
	}

	for key, raw := range set.SpecialOpeningTimes {
		opening, err := ParseClockTime(raw)
		if err != nil {
			logger.Warn("ignoring malformed special opening time", "key", key, "value", raw)
			continue
		}
		if md, ok := parseMonthDay(key); ok {
			r.openingsByMonthDay[md] = opening
		} else if date, ok := parseDate(key); ok {
			r.openingsByDate[date] = opening
		} else {
			logger.Warn("ignoring malformed special opening date", "key", key)
		}
	}

	for _, key := range set.PreOrderCutoffs {
		md, ok := parseMonthDay(key)
		if !ok {
			logger.Warn("ignoring malformed pre-order cutoff", "key", key)
			continue
		}
		r.cutoffs[md] = struct{}{}
	}

	for key, entry := range set.FulfillmentDisabledDates {
		switch entry.Type {
		case ScopeDelivery, ScopePickup, ScopeAll:
		default:
			logger.Warn("ignoring disabled date with unknown fulfillment type", "key", key, "type", entry.Type)
			continue
		}
		if strings.TrimSpace(entry.Reason) == "" {
			entry.Reason = string(entry.Type) + " unavailable on this date"
		}
		if md, ok := parseMonthDay(key); ok {
			r.disabledByMonthDay[md] = entry
		} else if date, ok := parseDate(key); ok {
			r.disabledByDate[date] = entry
		} else {
			logger.Warn("ignoring malformed disabled date", "key", key)
		}
	}

	return r
}

func (r *Rules) Location() *time.Location {
	return r.hours.Location
}

func (r *Rules) closedOn(day time.Time) (string, bool) {
	name, ok := r.closed[MonthDayOf(day)]
	return name, ok
}

func (r *Rules) closedWeekday(day time.Time) bool {
	_, ok := r.closedWeekdays[day.Weekday()]
	return ok
}

// specific dates win over recurring ones
func (r *Rules) disabledOn(day time.Time) (DisabledEntry, bool) {
	if entry, ok := r.disabledByDate[day.Format(DateLayout)]; ok {
		return entry, true
	}
	entry, ok := r.disabledByMonthDay[MonthDayOf(day)]
	return entry, ok
}

func (r *Rules) specialOpeningOn(day time.Time) (ClockTime, bool) {
	if opening, ok := r.openingsByDate[day.Format(DateLayout)]; ok {
		return opening, true
	}
	opening, ok := r.openingsByMonthDay[MonthDayOf(day)]
	return opening, ok
}

func (r *Rules) isCutoff(day time.Time) bool {
	_, ok := r.cutoffs[MonthDayOf(day)]
	return ok
}

func parseMonthDay(s string) (MonthDay, bool) {
	s = strings.TrimSpace(s)
	if len(s) != len("01-02") {
		return MonthDay{}, false
	}
	t, err := time.Parse("01-02", s)
	if err != nil {
		return MonthDay{}, false
	}
	return MonthDay{Month: t.Month(), Day: t.Day()}, true
}

func parseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", false
	}
	return t.Format(DateLayout), true
}
