//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/calendar"
	"github.com/enviofleett/smallchops-09-sub001/internal/domain/checkout"
	"github.com/enviofleett/smallchops-09-sub001/internal/infra/cartstore"
	"github.com/enviofleett/smallchops-09-sub001/internal/infra/sessionstore"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/clock"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/commands"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"
	"github.com/enviofleett/smallchops-09-sub001/tests/common/builder"
	"github.com/enviofleett/smallchops-09-sub001/tests/common/fake"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var (
	wat    = time.FixedZone("WAT", 3600)
	monday = time.Date(2025, time.March, 10, 10, 30, 0, 0, wat)
)

const confirmationURL = "/order-confirmation"

type env struct {
	mr          *miniredis.Miniredis
	sessions    *sessionstore.RedisStore
	carts       *cartstore.RedisCartStore
	uow         *fake.UoW
	backend     *fake.Backend
	clock       *clock.MockClock
	machine     *checkout.Machine
	locks       *shared.SessionLocks
	coordinator commands.PaymentCoordinator
	recovery    commands.RecoveryManager
	checkout    commands.CheckoutCommands
}

func newEnv(t *testing.T) *env {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clk := clock.NewMockClock(monday)
	rules := calendar.NewRules(calendar.DefaultRuleSet(), calendar.Hours{
		Opening:     calendar.ClockTime{Hour: 8},
		Closing:     calendar.ClockTime{Hour: 22},
		Granularity: time.Hour,
		MinLeadTime: 90 * time.Minute,
		Location:    wat,
	}, nil)
	machine := checkout.NewMachine(checkout.Policy{
		Capabilities:   checkout.Capabilities{AllowsGuest: true, SchedulesPickup: true},
		MinPhoneDigits: 10,
		PaymentMethods: []string{"paystack"},
	}, calendar.NewCalculator(rules), clk)

	e := &env{
		mr:       mr,
		sessions: sessionstore.NewRedisStore(client, time.Hour),
		carts:    cartstore.NewRedisCartStore(client, time.Hour),
		uow: fake.NewUoW().AddZone(shared.ZoneSnapshot{
			ID: builder.DefaultZoneID, Name: "Lekki Phase 1", FeeKobo: 150000, Active: true,
		}),
		backend: fake.NewBackend(),
		clock:   clk,
		machine: machine,
		locks:   shared.NewSessionLocks(),
	}
	e.coordinator = e.newCoordinator()
	e.recovery = commands.NewRecoveryManager(e.sessions, e.carts, e.coordinator, machine, e.locks, clk)
	e.checkout = commands.NewCheckoutCommands(e.sessions, e.carts, e.uow, e.recovery, machine, e.locks, clk)
	return e
}

// newCoordinator builds a coordinator sharing the stores, like a second replica would.
func (e *env) newCoordinator() commands.PaymentCoordinator {
	submission := commands.NewSubmissionService(e.backend, commands.SubmissionConfig{
		CallbackURL:     "https://shop.example.com/payment/callback",
		GatewayCheckout: "https://checkout.paystack.com",
	})
	return commands.NewPaymentCoordinator(e.sessions, e.carts, e.uow, e.backend, submission,
		e.machine, e.locks, e.clock, commands.PaymentConfig{ConfirmationURL: confirmationURL})
}

func reviewBuilder() *builder.CheckoutBuilder {
	return builder.NewCheckoutBuilder().WithScheduleDate("2025-03-11", "14:00", "15:00")
}

// seed stores a cart and a snapshot for identity as if the customer had reached co.Step.
func (e *env) seed(t *testing.T, identity checkout.Identity, co *checkout.Checkout) {
	t.Helper()
	ctx := context.Background()
	sessionID := identity.SessionKey()
	require.NoError(t, e.carts.Replace(ctx, sessionID, co.Draft.Items))
	require.NoError(t, e.sessions.Save(ctx, sessionID, &shared.Snapshot{
		Checkout:    *co,
		DeliveryFee: co.Draft.DeliveryFee(),
		SavedAt:     monday,
	}))
}

func (e *env) snapshot(t *testing.T, sessionID string) *shared.Snapshot {
	t.Helper()
	snap, err := e.sessions.Load(context.Background(), sessionID)
	require.NoError(t, err)
	return snap
}

func guest() checkout.Identity {
	return checkout.Guest("01JNV3K8Q2M7X4T9R5W6Y0Z1AB")
}
