package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/payment"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/config"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/errs"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

const maxResponseBytes = 1 << 20

const (
	pathCreateOrder       = "/orders"
	pathInitializePayment = "/payments/initialize"
	pathVerifyPayment     = "/payments/verify/"
)

// Client talks to the order and payment backend. Transport failures and 5xx
// responses are network_unavailable; 4xx responses are server_rejected.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration

	verifyRetries   uint64
	verifyBaseDelay time.Duration

	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	verify  singleflight.Group
}

var _ shared.OrderBackend = (*Client)(nil)

func NewClient(cfg config.BackendConfig) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)})
}

func NewClientWithHTTP(cfg config.BackendConfig, httpClient *http.Client) *Client {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "order-backend",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// rejections are answers, not outages
		IsSuccessful: func(err error) bool {
			return err == nil || errs.CategoryOf(err) == errs.CategoryServerRejected
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("backend circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})

	return &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:          cfg.APIKey,
		timeout:         cfg.Timeout,
		verifyRetries:   cfg.VerifyMaxRetries,
		verifyBaseDelay: cfg.VerifyBaseDelay,
		http:            httpClient,
		breaker:         breaker,
	}
}

// CreateOrder is sent exactly once per attempt. The attempt id travels as the idempotency key.
func (c *Client) CreateOrder(ctx context.Context, req shared.CreateOrderRequest) ([]byte, error) {
	return c.do(ctx, http.MethodPost, pathCreateOrder, req, req.IdempotencyKey)
}

func (c *Client) InitializePayment(ctx context.Context, req shared.InitializePaymentRequest) ([]byte, error) {
	return c.do(ctx, http.MethodPost, pathInitializePayment, req, req.IdempotencyKey)
}

// VerifyPayment retries network failures with exponential backoff. Concurrent
// verifications of one reference share a single backend call.
func (c *Client) VerifyPayment(ctx context.Context, reference string) (*payment.Verification, error) {
	v, err, _ := c.verify.Do(reference, func() (any, error) {
		var result *payment.Verification
		op := func() error {
			raw, err := c.do(ctx, http.MethodGet, pathVerifyPayment+url.PathEscape(reference), nil, "")
			if err != nil {
				if errs.CategoryOf(err) != errs.CategoryNetworkUnavailable {
					return backoff.Permanent(err)
				}
				return err
			}
			parsed, err := ParseVerification(raw, reference)
			if err != nil {
				return backoff.Permanent(err)
			}
			result = parsed
			return nil
		}

		policy := backoff.NewExponentialBackOff()
		if c.verifyBaseDelay > 0 {
			policy.InitialInterval = c.verifyBaseDelay
		}
		err := backoff.RetryNotify(op,
			backoff.WithContext(backoff.WithMaxRetries(policy, c.verifyRetries), ctx),
			func(err error, wait time.Duration) {
				slog.Warn("retrying payment verification",
					slog.String("reference", reference),
					slog.Duration("wait", wait),
					slog.String("error", err.Error()))
			})
		return result, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*payment.Verification), nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, idempotencyKey string) ([]byte, error) {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errs.Wrap(err, "failed to encode backend request")
		}
		payload = bytes.NewReader(data)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, errs.Wrap(err, "failed to build backend request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	raw, err := c.breaker.Execute(func() ([]byte, error) {
		return c.send(req)
	})
	if err != nil {
		if errs.CategoryOf(err) == errs.CategoryInternal {
			// breaker open, too many half-open requests, context expiry
			return nil, errs.Categorize(errs.Wrapf(err, "%s %s", method, path), errs.CategoryNetworkUnavailable)
		}
		return nil, err
	}
	return raw, nil
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.Categorize(errs.Wrapf(err, "%s %s", req.Method, req.URL.Path), errs.CategoryNetworkUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errs.Categorize(errs.Wrap(err, "failed to read backend response"), errs.CategoryNetworkUnavailable)
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, errs.Categorize(
			errs.Newf("backend responded %d to %s %s", resp.StatusCode, req.Method, req.URL.Path),
			errs.CategoryNetworkUnavailable)
	case resp.StatusCode >= http.StatusBadRequest:
		err := errs.Newf("backend rejected %s %s with %d", req.Method, req.URL.Path, resp.StatusCode)
		return nil, errs.WithServerMessage(errs.Categorize(err, errs.CategoryServerRejected), errorMessage(raw))
	}
	return raw, nil
}

// errorMessage pulls a customer-facing message out of an error body, if there is one.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	if s, ok := body.Error.(string); ok {
		return s
	}
	if m, ok := body.Error.(map[string]any); ok {
		if s, ok := m["message"].(string); ok {
			return s
		}
	}
	return ""
}

type verifyBody struct {
	Status      string          `json:"status"`
	Success     *bool           `json:"success"`
	Reference   string          `json:"reference"`
	Amount      json.Number     `json:"amount"`
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	PaidAt      string          `json:"paid_at"`
	Message     string          `json:"message"`
	Data        json.RawMessage `json:"data"`
}

// ParseVerification accepts the verify payload either flat or under a data wrapper.
func ParseVerification(raw []byte, reference string) (*payment.Verification, error) {
	var top verifyBody
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, errs.Categorize(errs.Wrap(err, "verify response is not JSON"), errs.CategoryResponseMalformed)
	}

	body := top
	if len(top.Data) > 0 && top.Data[0] == '{' {
		var inner verifyBody
		if err := json.Unmarshal(top.Data, &inner); err != nil {
			return nil, errs.Categorize(errs.Wrap(err, "verify data is not an object"), errs.CategoryResponseMalformed)
		}
		body = mergeVerify(inner, top)
	}

	status, err := normalizeStatus(body.Status)
	if err != nil {
		if top.Success != nil && !*top.Success {
			return nil, errs.WithServerMessage(errs.Categorize(errs.New("backend could not verify payment"), errs.CategoryServerRejected), top.Message)
		}
		return nil, err
	}

	v := &payment.Verification{
		Reference:   firstNonEmpty(body.Reference, reference),
		Status:      status,
		OrderID:     body.OrderID,
		OrderNumber: body.OrderNumber,
		PaidAt:      body.PaidAt,
		Message:     body.Message,
	}
	if body.Amount != "" {
		if amount, err := body.Amount.Int64(); err == nil {
			v.AmountKobo = amount
		}
	}
	return v, nil
}

func mergeVerify(inner, outer verifyBody) verifyBody {
	inner.Status = firstNonEmpty(inner.Status, outer.Status)
	inner.Reference = firstNonEmpty(inner.Reference, outer.Reference)
	inner.OrderID = firstNonEmpty(inner.OrderID, outer.OrderID)
	inner.OrderNumber = firstNonEmpty(inner.OrderNumber, outer.OrderNumber)
	inner.PaidAt = firstNonEmpty(inner.PaidAt, outer.PaidAt)
	inner.Message = firstNonEmpty(inner.Message, outer.Message)
	if inner.Amount == "" {
		inner.Amount = outer.Amount
	}
	return inner
}

func normalizeStatus(s string) (payment.VerificationStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success", "successful", "paid", "completed":
		return payment.VerificationSuccess, nil
	case "failed", "declined", "reversed":
		return payment.VerificationFailed, nil
	case "abandoned", "cancelled", "canceled":
		return payment.VerificationAbandoned, nil
	case "pending", "ongoing", "processing", "queued":
		return payment.VerificationPending, nil
	default:
		return "", errs.Categorize(fmt.Errorf("unknown payment status %q", s), errs.CategoryResponseMalformed)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
