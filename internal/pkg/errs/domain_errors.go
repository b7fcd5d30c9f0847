package errs

import "errors"

// Domain-specific sentinel errors for CQRS usecase layers
var (
	// Session errors
	ErrSessionNotFound = errors.New("checkout session not found")
	ErrEmptyCart       = errors.New("cart is empty")

	// State machine errors
	ErrInvalidTransition = errors.New("invalid checkout transition")
	ErrStepIncomplete    = errors.New("checkout step incomplete")
	ErrTermsNotAccepted  = errors.New("terms must be accepted")
	ErrAuthRequired      = errors.New("authentication required")
	ErrSlotUnavailable   = errors.New("selected time window is unavailable")

	// Fulfillment directory errors
	ErrZoneNotFound        = errors.New("delivery zone not found")
	ErrPickupPointNotFound = errors.New("pickup point not found")

	// Payment errors
	ErrSubmissionInProgress = errors.New("submission already in progress")
	ErrNoActiveAttempt      = errors.New("no active payment attempt")
	ErrStaleReference       = errors.New("payment reference superseded by a newer attempt")
	ErrPaymentObjectMissing = errors.New("order created but payment object missing")
	ErrAlreadyCompleted     = errors.New("payment already completed")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
