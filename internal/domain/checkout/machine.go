package checkout

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/calendar"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/clock"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/errs"
)

var (
	ErrInvalidTransition = errs.ErrInvalidTransition
	ErrAuthRequired      = errs.ErrAuthRequired
	ErrEmptyCart         = errs.ErrEmptyCart
)

// ValidationError lists the fields that block leaving a step.
type ValidationError struct {
	Step   Step
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s step invalid (%s)", e.Step, strings.Join(parts, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == errs.ErrValidationRejected || target == errs.ErrStepIncomplete
}

type SlotChecker interface {
	CheckWindow(now time.Time, date, startTime string, fulfillment calendar.FulfillmentType) (calendar.DeliveryTimeWindow, error)
}

type Machine struct {
	policy Policy
	slots  SlotChecker
	clock  clock.Clock
}

func NewMachine(policy Policy, slots SlotChecker, clk clock.Clock) *Machine {
	if policy.MinPhoneDigits <= 0 {
		policy.MinPhoneDigits = 10
	}
	return &Machine{policy: policy, slots: slots, clock: clk}
}

func (m *Machine) Policy() Policy {
	return m.policy
}

// Start opens a checkout for identity. Customers with a complete profile skip the contact step.
func (m *Machine) Start(identity Identity, items []LineItem) (*Checkout, error) {
	if !identity.Authenticated() && (m.policy.RequiresAuth || !m.policy.AllowsGuest) {
		return nil, ErrAuthRequired
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := CheckItems(items); err != nil {
		return nil, err
	}

	co := &Checkout{
		Draft: Draft{Items: items},
		Step:  StepContact,
	}
	if identity.Profile != nil {
		co.Draft.Contact = *identity.Profile
	}
	if identity.Authenticated() && m.validateContact(co.Draft) == nil {
		co.Step = StepFulfillment
	}
	return co, nil
}

// EntryStep is where a fresh or restored checkout for identity begins.
func (m *Machine) EntryStep(identity Identity, draft Draft) Step {
	if identity.Authenticated() && m.validateContact(draft) == nil {
		return StepFulfillment
	}
	return StepContact
}

func (m *Machine) UpdateContact(co *Checkout, contact Contact) error {
	if err := m.requireEditable(co); err != nil {
		return err
	}
	co.Draft.Contact = contact
	return nil
}

type FulfillmentSelection struct {
	Type        FulfillmentType
	Address     *Address
	Zone        *ZoneRef
	PickupPoint *PickupPointRef
}

func (m *Machine) SelectFulfillment(co *Checkout, sel FulfillmentSelection) error {
	if err := m.requireEditable(co); err != nil {
		return err
	}
	if !sel.Type.IsValid() {
		return &ValidationError{Step: StepFulfillment, Fields: map[string]string{"fulfillmentType": "choose delivery or pickup"}}
	}
	co.Draft.FulfillmentType = sel.Type
	switch sel.Type {
	case FulfillmentDelivery:
		co.Draft.Address = sel.Address
		co.Draft.Zone = sel.Zone
	case FulfillmentPickup:
		co.Draft.PickupPoint = sel.PickupPoint
	}
	return nil
}

// SelectSchedule validates the window against the calendar at selection time.
func (m *Machine) SelectSchedule(co *Checkout, date, windowStart string) error {
	if err := m.requireEditable(co); err != nil {
		return err
	}
	if !co.Draft.FulfillmentType.IsValid() {
		return &ValidationError{Step: StepSchedule, Fields: map[string]string{"fulfillmentType": "choose delivery or pickup first"}}
	}
	window, err := m.slots.CheckWindow(m.clock.Now(), date, windowStart, co.Draft.FulfillmentType)
	if err != nil {
		return scheduleError(err)
	}
	co.Draft.Schedule = &Schedule{Date: date, WindowStart: window.StartTime, WindowEnd: window.EndTime}
	return nil
}

func (m *Machine) SelectPaymentMethod(co *Checkout, method string) error {
	if err := m.requireEditable(co); err != nil {
		return err
	}
	if !m.policy.supportsMethod(method) {
		return &ValidationError{Step: StepPaymentMethod, Fields: map[string]string{"paymentMethod": "unsupported payment method"}}
	}
	co.Draft.PaymentMethod = method
	return nil
}

func (m *Machine) SetTermsAccepted(co *Checkout, accepted bool) error {
	if err := m.requireEditable(co); err != nil {
		return err
	}
	co.Draft.TermsAccepted = accepted
	return nil
}

// Advance leaves the current step once its fields validate. Review is left via EnterProcessing.
func (m *Machine) Advance(co *Checkout) error {
	if !co.Step.IsPrePayment() || co.Step == StepReview {
		return fmt.Errorf("%w: cannot advance from %s", ErrInvalidTransition, co.Step)
	}
	if err := m.validateStep(co.Step, co.Draft); err != nil {
		return err
	}
	co.Step = m.next(co.Step, co.Draft)
	return nil
}

// Back is always permitted from an editable step and keeps later data.
func (m *Machine) Back(co *Checkout) error {
	switch co.Step {
	case StepFailed:
		co.Step = StepReview
		return nil
	case StepContact, StepProcessing, StepComplete:
		return fmt.Errorf("%w: cannot go back from %s", ErrInvalidTransition, co.Step)
	}
	co.Step = m.previous(co.Step, co.Draft)
	return nil
}

// EnterProcessing re-validates the whole draft, including the schedule against the current time.
func (m *Machine) EnterProcessing(co *Checkout) error {
	if co.Step != StepReview && co.Step != StepFailed {
		return fmt.Errorf("%w: cannot submit from %s", ErrInvalidTransition, co.Step)
	}
	if len(co.Draft.Items) == 0 {
		return ErrEmptyCart
	}
	if err := CheckItems(co.Draft.Items); err != nil {
		return err
	}
	for _, step := range stepOrder {
		if m.skips(step, co.Draft) {
			continue
		}
		if err := m.validateStep(step, co.Draft); err != nil {
			return err
		}
	}
	co.Step = StepProcessing
	co.Failure = nil
	return nil
}

// SubmissionFailed returns to review with the draft untouched.
func (m *Machine) SubmissionFailed(co *Checkout, failure Failure) {
	co.Step = StepReview
	co.Failure = &failure
}

func (m *Machine) PaymentFailed(co *Checkout, failure Failure) {
	co.Step = StepFailed
	co.Failure = &failure
}

// PaymentCancelled is not a failure; the customer lands back on review.
func (m *Machine) PaymentCancelled(co *Checkout) {
	co.Step = StepReview
	co.Failure = nil
}

func (m *Machine) Complete(co *Checkout) {
	co.Step = StepComplete
	co.Failure = nil
}

func (m *Machine) Totals(d Draft) Totals {
	return d.Totals(m.policy.TaxRateBPS)
}

func (m *Machine) requireEditable(co *Checkout) error {
	if co.Step.IsPrePayment() || co.Step == StepFailed {
		return nil
	}
	return fmt.Errorf("%w: checkout is %s", ErrInvalidTransition, co.Step)
}

// ScheduleApplies reports whether the draft's fulfillment carries a time window.
func (m *Machine) ScheduleApplies(d Draft) bool {
	return !m.skips(StepSchedule, d)
}

func (m *Machine) skips(step Step, d Draft) bool {
	return step == StepSchedule && d.FulfillmentType == FulfillmentPickup && !m.policy.SchedulesPickup
}

func (m *Machine) next(step Step, d Draft) Step {
	for i := step.index() + 1; i < len(stepOrder); i++ {
		if !m.skips(stepOrder[i], d) {
			return stepOrder[i]
		}
	}
	return StepReview
}

func (m *Machine) previous(step Step, d Draft) Step {
	for i := step.index() - 1; i >= 0; i-- {
		if !m.skips(stepOrder[i], d) {
			return stepOrder[i]
		}
	}
	return StepContact
}

func (m *Machine) validateStep(step Step, d Draft) error {
	switch step {
	case StepContact:
		return m.validateContact(d)
	case StepFulfillment:
		return m.validateFulfillment(d)
	case StepSchedule:
		return m.validateSchedule(d)
	case StepPaymentMethod:
		if !m.policy.supportsMethod(d.PaymentMethod) {
			return &ValidationError{Step: step, Fields: map[string]string{"paymentMethod": "choose a payment method"}}
		}
	case StepReview:
		if !d.TermsAccepted {
			return &ValidationError{Step: step, Fields: map[string]string{"terms": errs.ErrTermsNotAccepted.Error()}}
		}
	}
	return nil
}

func (m *Machine) validateContact(d Draft) error {
	fields := map[string]string{}
	if strings.TrimSpace(d.Contact.Name) == "" {
		fields["name"] = ErrEmptyName.Error()
	}
	if _, err := NewEmail(d.Contact.Email); err != nil {
		fields["email"] = err.Error()
	}
	if _, err := NewPhone(d.Contact.Phone, m.policy.MinPhoneDigits); err != nil {
		fields["phone"] = fmt.Sprintf("enter at least %d digits", m.policy.MinPhoneDigits)
	}
	if len(fields) > 0 {
		return &ValidationError{Step: StepContact, Fields: fields}
	}
	return nil
}

func (m *Machine) validateFulfillment(d Draft) error {
	fields := map[string]string{}
	switch d.FulfillmentType {
	case FulfillmentDelivery:
		if d.Zone == nil {
			fields["zone"] = "choose a delivery zone"
		}
		if d.Address == nil {
			fields["address"] = "enter a delivery address"
		} else {
			if strings.TrimSpace(d.Address.Street) == "" {
				fields["address.street"] = "street is required"
			}
			if strings.TrimSpace(d.Address.City) == "" {
				fields["address.city"] = "city is required"
			}
			if strings.TrimSpace(d.Address.State) == "" {
				fields["address.state"] = "state is required"
			}
		}
	case FulfillmentPickup:
		if d.PickupPoint == nil {
			fields["pickupPoint"] = "choose a pickup point"
		}
	default:
		fields["fulfillmentType"] = "choose delivery or pickup"
	}
	if len(fields) > 0 {
		return &ValidationError{Step: StepFulfillment, Fields: fields}
	}
	return nil
}

func (m *Machine) validateSchedule(d Draft) error {
	if d.Schedule == nil {
		return &ValidationError{Step: StepSchedule, Fields: map[string]string{"schedule": "choose a date and time"}}
	}
	if _, err := m.slots.CheckWindow(m.clock.Now(), d.Schedule.Date, d.Schedule.WindowStart, d.FulfillmentType); err != nil {
		return scheduleError(err)
	}
	return nil
}

func scheduleError(err error) error {
	var unavailable *calendar.UnavailableError
	switch {
	case errors.As(err, &unavailable):
		return &ValidationError{Step: StepSchedule, Fields: map[string]string{"schedule": unavailable.Reason}}
	case errors.Is(err, calendar.ErrInvalidDate), errors.Is(err, calendar.ErrUnknownWindow):
		return &ValidationError{Step: StepSchedule, Fields: map[string]string{"schedule": "choose a valid date and time"}}
	default:
		return err
	}
}
