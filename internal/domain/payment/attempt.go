package payment

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrIllegalTransition = errors.New("illegal payment attempt transition")

type Status string

const (
	StatusInitializing    Status = "initializing"
	StatusAwaitingGateway Status = "awaiting_gateway"
	StatusSucceeded       Status = "succeeded"
	StatusFailed          Status = "failed"
	StatusCancelled       Status = "cancelled"
)

// Failed and cancelled attempts may still succeed once the backend verifies payment.
var allowedTransitions = map[Status][]Status{
	StatusInitializing:    {StatusAwaitingGateway, StatusFailed, StatusCancelled},
	StatusAwaitingGateway: {StatusSucceeded, StatusFailed, StatusCancelled},
	StatusFailed:          {StatusSucceeded},
	StatusCancelled:       {StatusSucceeded},
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusInitializing, StatusAwaitingGateway, StatusSucceeded, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCancelled
}

// IsOutstanding means a gateway interaction may still be in flight.
func (s Status) IsOutstanding() bool {
	return s == StatusInitializing || s == StatusAwaitingGateway
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Attempt is one try at paying for an order. The order outlives failed attempts.
type Attempt struct {
	AttemptID       uuid.UUID `json:"attemptId"`
	OrderID         string    `json:"orderId,omitempty"`
	OrderNumber     string    `json:"orderNumber,omitempty"`
	Reference       string    `json:"reference,omitempty"`
	GatewayURL      string    `json:"gatewayUrl,omitempty"`
	AccessCode      string    `json:"accessCode,omitempty"`
	Status          Status    `json:"status"`
	FailureCategory string    `json:"failureCategory,omitempty"`
	FailureReason   string    `json:"failureReason,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func NewAttempt(id uuid.UUID, now time.Time) *Attempt {
	return &Attempt{
		AttemptID: id,
		Status:    StatusInitializing,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (a *Attempt) HasOrder() bool {
	return a != nil && a.OrderID != ""
}

func (a *Attempt) transition(next Status, now time.Time) error {
	if !a.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, a.Status, next)
	}
	a.Status = next
	a.UpdatedAt = now
	return nil
}

// AwaitGateway records the order and gateway payload before the customer is sent to pay.
func (a *Attempt) AwaitGateway(init Initialization, now time.Time) error {
	if err := a.transition(StatusAwaitingGateway, now); err != nil {
		return err
	}
	a.OrderID = init.OrderID
	a.OrderNumber = init.OrderNumber
	a.Reference = init.Reference
	a.GatewayURL = init.AuthorizationURL
	a.AccessCode = init.AccessCode
	return nil
}

// RecordOrder keeps the order reference even when payment initialization failed.
func (a *Attempt) RecordOrder(orderID, orderNumber string) {
	a.OrderID = orderID
	a.OrderNumber = orderNumber
}

func (a *Attempt) Succeed(now time.Time) error {
	return a.transition(StatusSucceeded, now)
}

func (a *Attempt) Fail(category, reason string, now time.Time) error {
	if err := a.transition(StatusFailed, now); err != nil {
		return err
	}
	a.FailureCategory = category
	a.FailureReason = reason
	return nil
}

func (a *Attempt) Cancel(now time.Time) error {
	return a.transition(StatusCancelled, now)
}

// Initialization is the normalized result of creating an order or initializing its payment.
type Initialization struct {
	OrderID          string
	OrderNumber      string
	AuthorizationURL string
	AccessCode       string
	Reference        string
}
