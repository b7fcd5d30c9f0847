package commands

import (
	"context"
	"log/slog"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/checkout"
	"github.com/enviofleett/smallchops-09-sub001/internal/domain/payment"
	reqdto "github.com/enviofleett/smallchops-09-sub001/internal/handler/dto/request"
	"github.com/enviofleett/smallchops-09-sub001/internal/infra"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/clock"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/errs"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"

	"github.com/google/uuid"
)

// CheckoutResult is what the storefront renders after any checkout command.
type CheckoutResult struct {
	SessionID string
	Checkout  checkout.Checkout
	Totals    checkout.Totals
	Attempt   *payment.Attempt
	Outcome   *payment.Outcome
	Resumed   bool
	// Pending means a payment could not be confirmed yet and should be verified again.
	Pending bool
}

type CheckoutCommands interface {
	Begin(ctx context.Context, identity checkout.Identity) (*CheckoutResult, error)
	Current(ctx context.Context, identity checkout.Identity) (*CheckoutResult, error)
	UpdateContact(ctx context.Context, identity checkout.Identity, req reqdto.ContactRequest) (*CheckoutResult, error)
	SelectFulfillment(ctx context.Context, identity checkout.Identity, req reqdto.FulfillmentRequest) (*CheckoutResult, error)
	SelectSchedule(ctx context.Context, identity checkout.Identity, req reqdto.ScheduleRequest) (*CheckoutResult, error)
	SelectPaymentMethod(ctx context.Context, identity checkout.Identity, method string) (*CheckoutResult, error)
	SetTermsAccepted(ctx context.Context, identity checkout.Identity, accepted bool) (*CheckoutResult, error)
	Advance(ctx context.Context, identity checkout.Identity) (*CheckoutResult, error)
	Back(ctx context.Context, identity checkout.Identity) (*CheckoutResult, error)
	SyncCart(ctx context.Context, identity checkout.Identity, items []checkout.LineItem) (*CheckoutResult, error)
	Reset(ctx context.Context, identity checkout.Identity) error
}

type checkoutCommandsImpl struct {
	sessions shared.SessionStore
	carts    shared.CartStore
	uow      shared.UnitOfWork
	recovery RecoveryManager
	machine  *checkout.Machine
	locks    *shared.SessionLocks
	clock    clock.Clock
}

func NewCheckoutCommands(
	sessions shared.SessionStore,
	carts shared.CartStore,
	uow shared.UnitOfWork,
	recovery RecoveryManager,
	machine *checkout.Machine,
	locks *shared.SessionLocks,
	clk clock.Clock,
) CheckoutCommands {
	return &checkoutCommandsImpl{
		sessions: sessions,
		carts:    carts,
		uow:      uow,
		recovery: recovery,
		machine:  machine,
		locks:    locks,
		clock:    clk,
	}
}

func (c *checkoutCommandsImpl) Begin(ctx context.Context, identity checkout.Identity) (*CheckoutResult, error) {
	return c.recovery.Resume(ctx, identity)
}

func (c *checkoutCommandsImpl) Current(ctx context.Context, identity checkout.Identity) (*CheckoutResult, error) {
	sessionID := identity.SessionKey()
	snap, err := loadSnapshot(ctx, c.sessions, sessionID)
	if err != nil {
		return nil, err
	}
	return newResult(sessionID, snap, c.machine), nil
}

func (c *checkoutCommandsImpl) UpdateContact(ctx context.Context, identity checkout.Identity, req reqdto.ContactRequest) (*CheckoutResult, error) {
	return c.mutate(ctx, identity, func(co *checkout.Checkout) error {
		return c.machine.UpdateContact(co, req.ToDomain())
	})
}

// SelectFulfillment resolves the zone or pickup point against the directory so
// the draft carries the fee that was current when the customer chose it.
func (c *checkoutCommandsImpl) SelectFulfillment(ctx context.Context, identity checkout.Identity, req reqdto.FulfillmentRequest) (*CheckoutResult, error) {
	sel := checkout.FulfillmentSelection{Type: req.FulfillmentType()}

	switch sel.Type {
	case checkout.FulfillmentDelivery:
		sel.Address = req.DomainAddress()
		if req.ZoneID != nil {
			zone, err := c.resolveZone(ctx, *req.ZoneID)
			if err != nil {
				return nil, err
			}
			sel.Zone = zone
		}
	case checkout.FulfillmentPickup:
		if req.PickupPointID != nil {
			point, err := c.resolvePickupPoint(ctx, *req.PickupPointID)
			if err != nil {
				return nil, err
			}
			sel.PickupPoint = point
		}
	}

	return c.mutate(ctx, identity, func(co *checkout.Checkout) error {
		return c.machine.SelectFulfillment(co, sel)
	})
}

func (c *checkoutCommandsImpl) resolveZone(ctx context.Context, id uuid.UUID) (*checkout.ZoneRef, error) {
	zone, err := c.uow.CommandReads().ZoneByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrZoneNotFound
		}
		return nil, errs.Wrap(err, "failed to load delivery zone")
	}
	if !zone.Active {
		return nil, errs.ErrZoneNotFound
	}
	fee, err := checkout.NewMoney(zone.FeeKobo)
	if err != nil {
		return nil, errs.Wrap(err, "delivery zone fee is invalid")
	}
	return &checkout.ZoneRef{ID: zone.ID, Name: zone.Name, Fee: fee}, nil
}

func (c *checkoutCommandsImpl) resolvePickupPoint(ctx context.Context, id uuid.UUID) (*checkout.PickupPointRef, error) {
	point, err := c.uow.CommandReads().PickupPointByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrPickupPointNotFound
		}
		return nil, errs.Wrap(err, "failed to load pickup point")
	}
	if !point.Active {
		return nil, errs.ErrPickupPointNotFound
	}
	return &checkout.PickupPointRef{ID: point.ID, Name: point.Name, Address: point.Address}, nil
}

func (c *checkoutCommandsImpl) SelectSchedule(ctx context.Context, identity checkout.Identity, req reqdto.ScheduleRequest) (*CheckoutResult, error) {
	return c.mutate(ctx, identity, func(co *checkout.Checkout) error {
		return c.machine.SelectSchedule(co, req.Date, req.WindowStart)
	})
}

func (c *checkoutCommandsImpl) SelectPaymentMethod(ctx context.Context, identity checkout.Identity, method string) (*CheckoutResult, error) {
	return c.mutate(ctx, identity, func(co *checkout.Checkout) error {
		return c.machine.SelectPaymentMethod(co, method)
	})
}

func (c *checkoutCommandsImpl) SetTermsAccepted(ctx context.Context, identity checkout.Identity, accepted bool) (*CheckoutResult, error) {
	return c.mutate(ctx, identity, func(co *checkout.Checkout) error {
		return c.machine.SetTermsAccepted(co, accepted)
	})
}

func (c *checkoutCommandsImpl) Advance(ctx context.Context, identity checkout.Identity) (*CheckoutResult, error) {
	return c.mutate(ctx, identity, c.machine.Advance)
}

func (c *checkoutCommandsImpl) Back(ctx context.Context, identity checkout.Identity) (*CheckoutResult, error) {
	return c.mutate(ctx, identity, c.machine.Back)
}

// SyncCart stores the storefront cart and, while checkout is still editable,
// refreshes the draft's line items from it.
func (c *checkoutCommandsImpl) SyncCart(ctx context.Context, identity checkout.Identity, items []checkout.LineItem) (*CheckoutResult, error) {
	sessionID := identity.SessionKey()
	unlock := c.locks.Lock(sessionID)
	defer unlock()

	if err := c.carts.Replace(ctx, sessionID, items); err != nil {
		return nil, err
	}

	snap, err := c.sessions.Load(ctx, sessionID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return &CheckoutResult{SessionID: sessionID}, nil
		}
		return nil, err
	}
	if snap.Checkout.Step.IsPrePayment() {
		snap.Checkout.Draft.Items = items
		if err := saveSnapshot(ctx, c.sessions, c.clock, sessionID, snap); err != nil {
			return nil, err
		}
	}
	return newResult(sessionID, snap, c.machine), nil
}

// Reset is the customer explicitly abandoning checkout. The cart survives.
func (c *checkoutCommandsImpl) Reset(ctx context.Context, identity checkout.Identity) error {
	sessionID := identity.SessionKey()
	unlock := c.locks.Lock(sessionID)
	defer unlock()

	snap, err := c.sessions.Load(ctx, sessionID)
	if err != nil && !infra.IsKind(err, infra.KindNotFound) && !infra.IsKind(err, infra.KindCorrupted) {
		return err
	}
	if snap != nil && snap.LastAttempt != nil && snap.LastAttempt.Status == payment.StatusAwaitingGateway {
		return errs.ErrSubmissionInProgress
	}

	if err := c.sessions.Reset(ctx, sessionID); err != nil {
		return err
	}
	slog.Info("checkout session reset", slog.String("session_id", sessionID))
	return nil
}

// mutate applies fn under the session lock and writes the snapshot only when fn succeeds.
func (c *checkoutCommandsImpl) mutate(ctx context.Context, identity checkout.Identity, fn func(co *checkout.Checkout) error) (*CheckoutResult, error) {
	sessionID := identity.SessionKey()
	unlock := c.locks.Lock(sessionID)
	defer unlock()

	snap, err := loadSnapshot(ctx, c.sessions, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(&snap.Checkout); err != nil {
		return nil, err
	}
	if err := saveSnapshot(ctx, c.sessions, c.clock, sessionID, snap); err != nil {
		return nil, err
	}
	return newResult(sessionID, snap, c.machine), nil
}

func loadSnapshot(ctx context.Context, sessions shared.SessionStore, sessionID string) (*shared.Snapshot, error) {
	snap, err := sessions.Load(ctx, sessionID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) || infra.IsKind(err, infra.KindCorrupted) {
			return nil, errs.ErrSessionNotFound
		}
		return nil, err
	}
	return snap, nil
}

func saveSnapshot(ctx context.Context, sessions shared.SessionStore, clk clock.Clock, sessionID string, snap *shared.Snapshot) error {
	snap.DeliveryFee = snap.Checkout.Draft.DeliveryFee()
	snap.SavedAt = clk.Now()
	return sessions.Save(ctx, sessionID, snap)
}

func newResult(sessionID string, snap *shared.Snapshot, machine *checkout.Machine) *CheckoutResult {
	return &CheckoutResult{
		SessionID: sessionID,
		Checkout:  snap.Checkout,
		Totals:    machine.Totals(snap.Checkout.Draft),
		Attempt:   snap.LastAttempt,
	}
}
