package checkout

import (
	"github.com/enviofleett/smallchops-09-sub001/internal/domain/calendar"
)

type Step string

const (
	StepContact       Step = "contact"
	StepFulfillment   Step = "fulfillment"
	StepSchedule      Step = "schedule"
	StepPaymentMethod Step = "payment_method"
	StepReview        Step = "review"
	StepProcessing    Step = "processing"
	StepComplete      Step = "complete"
	StepFailed        Step = "failed"
)

// editable steps in presentation order
var stepOrder = []Step{StepContact, StepFulfillment, StepSchedule, StepPaymentMethod, StepReview}

func (s Step) String() string {
	return string(s)
}

func (s Step) IsValid() bool {
	switch s {
	case StepContact, StepFulfillment, StepSchedule, StepPaymentMethod, StepReview,
		StepProcessing, StepComplete, StepFailed:
		return true
	default:
		return false
	}
}

// IsPrePayment reports whether the customer is still filling in the draft.
func (s Step) IsPrePayment() bool {
	return s.index() >= 0
}

func (s Step) index() int {
	for i, step := range stepOrder {
		if step == s {
			return i
		}
	}
	return -1
}

type FulfillmentType = calendar.FulfillmentType

const (
	FulfillmentDelivery = calendar.FulfillmentDelivery
	FulfillmentPickup   = calendar.FulfillmentPickup
)

// Capabilities collapses the storefront's checkout variants into one machine.
type Capabilities struct {
	RequiresAuth    bool
	AllowsGuest     bool
	SchedulesPickup bool
}

type Policy struct {
	Capabilities
	MinPhoneDigits int
	PaymentMethods []string
	TaxRateBPS     int64
}

func (p Policy) supportsMethod(method string) bool {
	for _, m := range p.PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

// Failure is the last submission or payment failure shown on the review step.
type Failure struct {
	Category  string `json:"category"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}
