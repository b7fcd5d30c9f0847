package response

import (
	"github.com/enviofleett/smallchops-09-sub001/internal/domain/checkout"
	"github.com/enviofleett/smallchops-09-sub001/internal/domain/payment"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/commands"

	"github.com/google/uuid"
)

type CheckoutResponse struct {
	SessionID string            `json:"sessionId"`
	Step      checkout.Step     `json:"step"`
	Draft     checkout.Draft    `json:"draft"`
	Totals    checkout.Totals   `json:"totals"`
	Failure   *checkout.Failure `json:"failure,omitempty"`
	Attempt   *AttemptResponse  `json:"attempt,omitempty"`
	Outcome   *payment.Outcome  `json:"outcome,omitempty"`
	Resumed   bool              `json:"resumed"`
	Pending   bool              `json:"pending"`
}

type AttemptResponse struct {
	AttemptID        uuid.UUID      `json:"attemptId"`
	Status           payment.Status `json:"status"`
	OrderID          string         `json:"orderId,omitempty"`
	OrderNumber      string         `json:"orderNumber,omitempty"`
	Reference        string         `json:"reference,omitempty"`
	AuthorizationURL string         `json:"authorizationUrl,omitempty"`
	AccessCode       string         `json:"accessCode,omitempty"`
}

type SubmitResponse struct {
	AttemptID        uuid.UUID `json:"attemptId"`
	OrderID          string    `json:"orderId"`
	OrderNumber      string    `json:"orderNumber,omitempty"`
	Reference        string    `json:"reference"`
	AuthorizationURL string    `json:"authorizationUrl"`
	AccessCode       string    `json:"accessCode,omitempty"`
}

func FromCheckoutResult(r *commands.CheckoutResult) *CheckoutResponse {
	resp := &CheckoutResponse{
		SessionID: r.SessionID,
		Step:      r.Checkout.Step,
		Draft:     r.Checkout.Draft,
		Totals:    r.Totals,
		Failure:   r.Checkout.Failure,
		Outcome:   r.Outcome,
		Resumed:   r.Resumed,
		Pending:   r.Pending,
	}
	if r.Attempt != nil {
		resp.Attempt = FromAttempt(r.Attempt)
	}
	return resp
}

func FromAttempt(a *payment.Attempt) *AttemptResponse {
	return &AttemptResponse{
		AttemptID:        a.AttemptID,
		Status:           a.Status,
		OrderID:          a.OrderID,
		OrderNumber:      a.OrderNumber,
		Reference:        a.Reference,
		AuthorizationURL: a.GatewayURL,
		AccessCode:       a.AccessCode,
	}
}

func FromSubmitResult(r *commands.SubmitResult) *SubmitResponse {
	return &SubmitResponse{
		AttemptID:        r.Token.AttemptID,
		OrderID:          r.Attempt.OrderID,
		OrderNumber:      r.Attempt.OrderNumber,
		Reference:        r.Reference,
		AuthorizationURL: r.AuthorizationURL,
		AccessCode:       r.AccessCode,
	}
}
