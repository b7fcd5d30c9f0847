//go:build e2e

package helper

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// StubBackend plays the order and payment backend over HTTP. Orders are keyed
// by the Idempotency-Key header so a replayed create returns the same order.
type StubBackend struct {
	Server *httptest.Server

	mu          sync.Mutex
	orders      map[string]string // idempotency key -> order id
	amounts     map[string]int64  // reference -> kobo
	verifyState map[string]string // reference -> gateway status
	creates     int
}

func NewStubBackend(t *testing.T) *StubBackend {
	t.Helper()
	b := &StubBackend{
		orders:      map[string]string{},
		amounts:     map[string]int64{},
		verifyState: map[string]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders", b.createOrder)
	mux.HandleFunc("POST /payments/initialize", b.initialize)
	mux.HandleFunc("GET /payments/verify/{reference}", b.verify)
	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Server.Close)
	return b
}

func (b *StubBackend) URL() string {
	return b.Server.URL
}

// SetStatus decides what the gateway reports for reference on the next verify.
func (b *StubBackend) SetStatus(reference, status string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.verifyState[reference] = status
}

func (b *StubBackend) CreateCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.creates
}

func (b *StubBackend) createOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TotalAmount float64 `json:"total_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"success":false,"message":"bad body"}`, http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	b.creates++
	key := r.Header.Get("Idempotency-Key")
	orderID, ok := b.orders[key]
	if !ok {
		orderID = fmt.Sprintf("ord_%d", len(b.orders)+1)
		b.orders[key] = orderID
	}
	reference := "ref_" + orderID
	b.amounts[reference] = int64(body.TotalAmount * 100)
	b.mu.Unlock()

	writeJSON(w, map[string]any{
		"success": true,
		"data": map[string]any{
			"order_id":     orderID,
			"order_number": "SC-" + strings.TrimPrefix(orderID, "ord_"),
			"payment": map[string]any{
				"authorization_url": "https://checkout.paystack.com/acc_" + orderID,
				"access_code":       "acc_" + orderID,
				"reference":         reference,
			},
		},
	})
}

func (b *StubBackend) initialize(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OrderID string `json:"order_id"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	reference := "ref_init_" + body.OrderID
	writeJSON(w, map[string]any{
		"data": map[string]any{
			"authorization_url": "https://checkout.paystack.com/acc_init_" + body.OrderID,
			"reference":         reference,
		},
	})
}

func (b *StubBackend) verify(w http.ResponseWriter, r *http.Request) {
	reference := r.PathValue("reference")

	b.mu.Lock()
	status, ok := b.verifyState[reference]
	if !ok {
		status = "success"
	}
	amount := b.amounts[reference]
	b.mu.Unlock()

	writeJSON(w, map[string]any{
		"success": true,
		"data": map[string]any{
			"status":    status,
			"reference": reference,
			"amount":    amount,
		},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
