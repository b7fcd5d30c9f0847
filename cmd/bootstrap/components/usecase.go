package components

import (
	"log/slog"
	"strings"
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/calendar"
	"github.com/enviofleett/smallchops-09-sub001/internal/domain/checkout"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/clock"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/config"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/errs"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/commands"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	NewCalendar,
	NewMachine,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		func(cfg config.Config) commands.SubmissionConfig {
			return commands.SubmissionConfig{
				CallbackURL:     cfg.Gateway.CallbackURL,
				GatewayCheckout: cfg.Gateway.CheckoutBaseURL,
			}
		},
		func(cfg config.Config) commands.PaymentConfig {
			return commands.PaymentConfig{ConfirmationURL: cfg.Checkout.ConfirmationURL}
		},
		commands.NewSubmissionService,
		commands.NewPaymentCoordinator,
		commands.NewRecoveryManager,
		commands.NewCheckoutCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		func(calc *calendar.Calculator, clk clock.Clock, cfg config.Config) queries.AvailabilityQueries {
			return queries.NewAvailabilityQueries(calc, clk, cfg.Checkout.MaxRangeDays)
		},
		queries.NewFulfillmentQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewIdentityResolver,
	),
)

// NewCalendar builds the business calendar. Malformed rule entries are skipped
// and logged; a malformed hours configuration fails startup.
func NewCalendar(cfg config.Config, logger *slog.Logger) (*calendar.Calculator, error) {
	c := cfg.Checkout

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, errs.Wrapf(err, "invalid CHECKOUT_TIMEZONE %q", c.TimeZone)
	}
	opening, err := calendar.ParseClockTime(c.OpeningTime)
	if err != nil {
		return nil, errs.Wrapf(err, "invalid CHECKOUT_OPENING_TIME %q", c.OpeningTime)
	}
	closing, err := calendar.ParseClockTime(c.ClosingTime)
	if err != nil {
		return nil, errs.Wrapf(err, "invalid CHECKOUT_CLOSING_TIME %q", c.ClosingTime)
	}
	weekdays, err := parseWeekdays(c.ClosedWeekdays)
	if err != nil {
		return nil, err
	}

	set, err := calendar.LoadRuleSet(c.CalendarFile)
	if err != nil {
		return nil, errs.Wrapf(err, "failed to load calendar rules from %q", c.CalendarFile)
	}

	rules := calendar.NewRules(set, calendar.Hours{
		Opening:        opening,
		Closing:        closing,
		ClosedWeekdays: weekdays,
		Granularity:    c.SlotGranularity,
		MinLeadTime:    c.MinLeadTime,
		Location:       loc,
	}, logger)
	return calendar.NewCalculator(rules), nil
}

func NewMachine(cfg config.Config, calc *calendar.Calculator, clk clock.Clock) *checkout.Machine {
	c := cfg.Checkout
	return checkout.NewMachine(checkout.Policy{
		Capabilities: checkout.Capabilities{
			RequiresAuth:    c.RequiresAuth,
			AllowsGuest:     c.AllowsGuest,
			SchedulesPickup: c.SchedulesPickup,
		},
		MinPhoneDigits: c.MinPhoneDigits,
		PaymentMethods: c.PaymentMethods,
		TaxRateBPS:     c.TaxRateBPS,
	}, calc, clk)
}

func parseWeekdays(names []string) ([]time.Weekday, error) {
	var out []time.Weekday
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		found := false
		for d := time.Sunday; d <= time.Saturday; d++ {
			if strings.ToLower(d.String()) == name || strings.ToLower(d.String()[:3]) == name {
				out = append(out, d)
				found = true
				break
			}
		}
		if !found {
			return nil, errs.Newf("invalid CHECKOUT_CLOSED_WEEKDAYS entry %q", name)
		}
	}
	return out, nil
}
