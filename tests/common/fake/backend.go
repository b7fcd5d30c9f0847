//go:build unit || e2e

package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/payment"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"
)

// Backend is an in-memory order API. By default every order gets a payment and
// every reference verifies as paid.
type Backend struct {
	mu sync.Mutex

	CreateOrderFunc func(ctx context.Context, n int, req shared.CreateOrderRequest) ([]byte, error)
	InitializeFunc  func(ctx context.Context, n int, req shared.InitializePaymentRequest) ([]byte, error)
	VerifyFunc      func(ctx context.Context, reference string) (*payment.Verification, error)

	CreateCalls     []shared.CreateOrderRequest
	InitializeCalls []shared.InitializePaymentRequest
	VerifyCalls     []string

	// When set, calls signal Entered and then block until Release is closed.
	Entered chan struct{}
	Release chan struct{}
}

var _ shared.OrderBackend = (*Backend)(nil)

func NewBackend() *Backend {
	return &Backend{}
}

// Gate makes the next calls block until the returned release func is called.
func (b *Backend) Gate() func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Entered = make(chan struct{}, 16)
	b.Release = make(chan struct{})
	release := b.Release
	var once sync.Once
	return func() { once.Do(func() { close(release) }) }
}

func (b *Backend) wait(ctx context.Context) error {
	b.mu.Lock()
	entered, release := b.Entered, b.Release
	b.mu.Unlock()
	if release == nil {
		return nil
	}
	entered <- struct{}{}
	select {
	case <-release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Backend) CreateOrder(ctx context.Context, req shared.CreateOrderRequest) ([]byte, error) {
	b.mu.Lock()
	b.CreateCalls = append(b.CreateCalls, req)
	n := len(b.CreateCalls)
	fn := b.CreateOrderFunc
	b.mu.Unlock()

	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	if fn != nil {
		return fn(ctx, n, req)
	}
	return OrderPayload(n), nil
}

func (b *Backend) InitializePayment(ctx context.Context, req shared.InitializePaymentRequest) ([]byte, error) {
	b.mu.Lock()
	b.InitializeCalls = append(b.InitializeCalls, req)
	n := len(b.InitializeCalls)
	fn := b.InitializeFunc
	b.mu.Unlock()

	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	if fn != nil {
		return fn(ctx, n, req)
	}
	return []byte(fmt.Sprintf(`{"success":true,"data":{"authorization_url":"https://checkout.paystack.com/init_%d","access_code":"init_%d","reference":"ref_init_%d"}}`, n, n, n)), nil
}

func (b *Backend) VerifyPayment(ctx context.Context, reference string) (*payment.Verification, error) {
	b.mu.Lock()
	b.VerifyCalls = append(b.VerifyCalls, reference)
	fn := b.VerifyFunc
	b.mu.Unlock()

	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	if fn != nil {
		return fn(ctx, reference)
	}
	return &payment.Verification{Reference: reference, Status: payment.VerificationSuccess, AmountKobo: 1150000}, nil
}

func (b *Backend) CreateCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.CreateCalls)
}

func (b *Backend) InitializeCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.InitializeCalls)
}

func (b *Backend) VerifyCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.VerifyCalls)
}

// OrderPayload is a create-order response for the n-th order.
func OrderPayload(n int) []byte {
	return []byte(fmt.Sprintf(`{"success":true,"data":{"order_id":"ord_%d","order_number":"SC-%d","payment":{"authorization_url":"https://checkout.paystack.com/acc_%d","access_code":"acc_%d","reference":"ref_%d"}}}`, n, n, n, n, n))
}
