package errs

import (
	"context"
	"errors"

	cr "github.com/cockroachdb/errors"
)

// Category classifies a checkout failure for the storefront.
type Category string

const (
	CategoryNone               Category = ""
	CategoryValidationRejected Category = "validation_rejected"
	CategoryNetworkUnavailable Category = "network_unavailable"
	CategoryServerRejected     Category = "server_rejected"
	CategoryResponseMalformed  Category = "response_malformed"
	CategoryGatewayDeclined    Category = "gateway_declined"
	CategoryGatewayCancelled   Category = "gateway_cancelled"
	CategoryGatewayTimeout     Category = "gateway_timeout"
	CategoryInternal           Category = "internal"
)

var (
	ErrValidationRejected = cr.New("validation rejected")
	ErrNetworkUnavailable = cr.New("network unavailable")
	ErrServerRejected     = cr.New("server rejected request")
	ErrResponseMalformed  = cr.New("response malformed")
	ErrGatewayDeclined    = cr.New("gateway declined payment")
	ErrGatewayCancelled   = cr.New("gateway payment cancelled")
	ErrGatewayTimeout     = cr.New("gateway timed out")
)

var categorySentinels = []struct {
	sentinel error
	category Category
}{
	{ErrValidationRejected, CategoryValidationRejected},
	{ErrServerRejected, CategoryServerRejected},
	{ErrResponseMalformed, CategoryResponseMalformed},
	{ErrGatewayDeclined, CategoryGatewayDeclined},
	{ErrGatewayCancelled, CategoryGatewayCancelled},
	{ErrGatewayTimeout, CategoryGatewayTimeout},
	{ErrNetworkUnavailable, CategoryNetworkUnavailable},
}

var userMessages = map[Category]string{
	CategoryValidationRejected: "Please review the highlighted fields.",
	CategoryNetworkUnavailable: "We could not reach the server. Check your connection and try again.",
	CategoryServerRejected:     "Your order could not be placed.",
	CategoryResponseMalformed:  "Something went wrong. Please try again or contact support.",
	CategoryGatewayDeclined:    "Your payment was declined. Please try another payment method.",
	CategoryGatewayCancelled:   "",
	CategoryGatewayTimeout:     "The payment provider took too long to respond. Please try again.",
	CategoryInternal:           "Something went wrong. Please try again or contact support.",
}

// Categorize marks err with the sentinel for category.
func Categorize(err error, category Category) error {
	for _, s := range categorySentinels {
		if s.category == category {
			return Mark(err, s.sentinel)
		}
	}
	return err
}

// WithServerMessage attaches a message returned by the backend that is safe to show to customers.
func WithServerMessage(err error, msg string) error {
	if err == nil || msg == "" {
		return err
	}
	return cr.WithHint(err, msg)
}

func ServerMessage(err error) string {
	hints := cr.GetAllHints(err)
	if len(hints) == 0 {
		return ""
	}
	return hints[0]
}

func CategoryOf(err error) Category {
	if err == nil {
		return CategoryNone
	}
	for _, s := range categorySentinels {
		if cr.Is(err, s.sentinel) {
			return s.category
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryNetworkUnavailable
	}
	return CategoryInternal
}

func Retryable(err error) bool {
	switch CategoryOf(err) {
	case CategoryNetworkUnavailable, CategoryGatewayTimeout, CategoryResponseMalformed:
		return true
	default:
		return false
	}
}

// UserMessage never exposes raw error text; only backend-supplied messages for server rejections.
func UserMessage(err error) string {
	category := CategoryOf(err)
	if category == CategoryServerRejected {
		if msg := ServerMessage(err); msg != "" {
			return msg
		}
	}
	return userMessages[category]
}
