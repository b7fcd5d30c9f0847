package commands

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/checkout"
	"github.com/enviofleett/smallchops-09-sub001/internal/domain/payment"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/errs"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase/shared"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// PaymentMissingError means the order exists but no usable payment object came back.
// A retry must initialize payment for OrderID instead of creating another order.
type PaymentMissingError struct {
	OrderID     string
	OrderNumber string
}

func (e *PaymentMissingError) Error() string {
	return "order " + e.OrderID + " created but payment object missing"
}

func (e *PaymentMissingError) Is(target error) bool {
	return target == errs.ErrPaymentObjectMissing || target == errs.ErrResponseMalformed
}

type SubmissionInput struct {
	AttemptID    uuid.UUID
	Identity     checkout.Identity
	Draft        checkout.Draft
	Totals       checkout.Totals
	Existing     *shared.ExistingOrder
	// OmitSchedule drops the window for fulfillment that is not scheduled.
	OmitSchedule bool
}

type SubmissionConfig struct {
	CallbackURL     string
	GatewayCheckout string
}

// SubmissionService turns a validated draft into an order with a payment to complete.
type SubmissionService interface {
	Submit(ctx context.Context, in SubmissionInput) (*payment.Initialization, error)
}

type submissionServiceImpl struct {
	backend shared.OrderBackend
	cfg     SubmissionConfig
}

func NewSubmissionService(backend shared.OrderBackend, cfg SubmissionConfig) SubmissionService {
	return &submissionServiceImpl{backend: backend, cfg: cfg}
}

// Submit calls the backend once. Order creation is never retried here: a lost
// response could otherwise create a duplicate order.
func (s *submissionServiceImpl) Submit(ctx context.Context, in SubmissionInput) (*payment.Initialization, error) {
	if in.Existing != nil && in.Existing.OrderID != "" {
		raw, err := s.backend.InitializePayment(ctx, shared.InitializePaymentRequest{
			OrderID:        in.Existing.OrderID,
			Email:          strings.TrimSpace(in.Draft.Contact.Email),
			CallbackURL:    s.cfg.CallbackURL,
			IdempotencyKey: in.AttemptID.String(),
		})
		if err != nil {
			return nil, err
		}
		return NormalizeInitializeResponse(raw, s.cfg.GatewayCheckout, *in.Existing)
	}

	req := BuildCreateOrderRequest(in, s.cfg.CallbackURL)
	raw, err := s.backend.CreateOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	return NormalizeCreateOrderResponse(raw, s.cfg.GatewayCheckout)
}

// BuildCreateOrderRequest trims every field, converts kobo to naira, and only
// carries the fields that apply to the chosen fulfillment type.
func BuildCreateOrderRequest(in SubmissionInput, callbackURL string) shared.CreateOrderRequest {
	d := in.Draft
	req := shared.CreateOrderRequest{
		CustomerName:    strings.TrimSpace(d.Contact.Name),
		CustomerEmail:   strings.ToLower(strings.TrimSpace(d.Contact.Email)),
		CustomerPhone:   strings.TrimSpace(d.Contact.Phone),
		FulfillmentType: string(d.FulfillmentType),
		Items:           make([]shared.OrderItemPayload, 0, len(d.Items)),
		Subtotal:        in.Totals.Subtotal.Naira(),
		DeliveryFee:     in.Totals.DeliveryFee.Naira(),
		Tax:             in.Totals.Tax.Naira(),
		TotalAmount:     in.Totals.Total.Naira(),
		PaymentMethod:   strings.TrimSpace(d.PaymentMethod),
		CallbackURL:     callbackURL,
		Notes:           strings.TrimSpace(d.Notes),
		IdempotencyKey:  in.AttemptID.String(),
	}

	for _, item := range d.Items {
		req.Items = append(req.Items, shared.OrderItemPayload{
			ProductID:      strings.TrimSpace(item.ProductID),
			ProductName:    strings.TrimSpace(item.Name),
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice.Naira(),
			TotalPrice:     item.Total().Naira(),
			Customizations: item.Customizations,
		})
	}

	switch d.FulfillmentType {
	case checkout.FulfillmentDelivery:
		if d.Address != nil {
			req.DeliveryAddress = &shared.AddressPayload{
				Street:   strings.TrimSpace(d.Address.Street),
				City:     strings.TrimSpace(d.Address.City),
				State:    strings.TrimSpace(d.Address.State),
				Landmark: strings.TrimSpace(d.Address.Landmark),
			}
		}
		if d.Zone != nil {
			req.DeliveryZoneID = d.Zone.ID.String()
		}
	case checkout.FulfillmentPickup:
		if d.PickupPoint != nil {
			req.PickupPointID = d.PickupPoint.ID.String()
		}
	}

	if d.Schedule != nil && !in.OmitSchedule {
		req.Schedule = &shared.SchedulePayload{
			Date:        d.Schedule.Date,
			WindowStart: d.Schedule.WindowStart,
			WindowEnd:   d.Schedule.WindowEnd,
		}
	}

	if in.Identity.Authenticated() {
		req.UserID = in.Identity.UserID.String()
	} else {
		req.GuestSessionID = in.Identity.GuestSessionID
	}
	return req
}

// NormalizeCreateOrderResponse accepts every payload shape the backend has been
// seen to return: a double-encoded JSON string, a data wrapper, and a payment
// object nested or flattened into the top level.
func NormalizeCreateOrderResponse(raw []byte, gatewayCheckout string) (*payment.Initialization, error) {
	fields, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	if err := rejection(fields); err != nil {
		return nil, err
	}

	orderID := stringField(fields, "order_id", "orderId", "id")
	if orderID == "" {
		slog.Error("create order response has no order id", slog.String("payload", string(raw)))
		return nil, errs.Categorize(errs.New("create order response has no order id"), errs.CategoryResponseMalformed)
	}
	orderNumber := stringField(fields, "order_number", "orderNumber")

	init, ok := paymentObject(fields, gatewayCheckout)
	if !ok {
		slog.Warn("order created without payment object",
			slog.String("order_id", orderID),
			slog.String("payload", string(raw)))
		return nil, &PaymentMissingError{OrderID: orderID, OrderNumber: orderNumber}
	}
	init.OrderID = orderID
	init.OrderNumber = orderNumber
	return init, nil
}

// NormalizeInitializeResponse parses a payment initialization for an order that already exists.
func NormalizeInitializeResponse(raw []byte, gatewayCheckout string, existing shared.ExistingOrder) (*payment.Initialization, error) {
	fields, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	if err := rejection(fields); err != nil {
		return nil, err
	}

	init, ok := paymentObject(fields, gatewayCheckout)
	if !ok {
		slog.Warn("payment initialization returned no payment object",
			slog.String("order_id", existing.OrderID),
			slog.String("payload", string(raw)))
		return nil, &PaymentMissingError{OrderID: existing.OrderID, OrderNumber: existing.OrderNumber}
	}
	init.OrderID = existing.OrderID
	init.OrderNumber = firstNonEmpty(stringField(fields, "order_number", "orderNumber"), existing.OrderNumber)
	return init, nil
}

func decodeEnvelope(raw []byte) (map[string]any, error) {
	var decoded any
	if err := decodeNumbers(raw, &decoded); err != nil {
		slog.Error("backend response is not JSON", slog.String("payload", string(raw)))
		return nil, errs.Categorize(errs.Wrap(err, "backend response is not JSON"), errs.CategoryResponseMalformed)
	}

	top, ok := asObject(decoded)
	if !ok {
		slog.Error("backend response is not an object", slog.String("payload", string(raw)))
		return nil, errs.Categorize(errs.New("backend response is not an object"), errs.CategoryResponseMalformed)
	}

	data, ok := asObject(top["data"])
	if !ok {
		return top, nil
	}
	merged := make(map[string]any, len(top)+len(data))
	for k, v := range top {
		merged[k] = v
	}
	for k, v := range data {
		merged[k] = v
	}
	delete(merged, "data")
	return merged, nil
}

// decodeNumbers keeps numbers as json.Number so large numeric ids survive.
func decodeNumbers(raw []byte, v *any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

// asObject accepts an object or a JSON string holding one.
func asObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case string:
		var inner any
		if err := decodeNumbers([]byte(t), &inner); err != nil {
			return nil, false
		}
		obj, ok := inner.(map[string]any)
		return obj, ok
	default:
		return nil, false
	}
}

func rejection(fields map[string]any) error {
	success, ok := fields["success"].(bool)
	if !ok || success {
		return nil
	}
	msg := stringField(fields, "message", "error")
	if msg == "" {
		if nested, ok := fields["error"].(map[string]any); ok {
			msg = stringField(nested, "message")
		}
	}
	err := errs.Categorize(errs.New("backend rejected the order"), errs.CategoryServerRejected)
	return errs.WithServerMessage(err, msg)
}

func paymentObject(fields map[string]any, gatewayCheckout string) (*payment.Initialization, bool) {
	source := fields
	if nested, ok := asObject(fields["payment"]); ok {
		source = nested
	}

	init := &payment.Initialization{
		AuthorizationURL: stringField(source, "authorization_url", "authorizationUrl", "payment_url", "paymentUrl"),
		AccessCode:       stringField(source, "access_code", "accessCode"),
		Reference:        stringField(source, "reference", "payment_reference", "paymentReference"),
	}
	if init.AuthorizationURL == "" && init.AccessCode != "" && gatewayCheckout != "" {
		init.AuthorizationURL = strings.TrimRight(gatewayCheckout, "/") + "/" + init.AccessCode
	}
	if init.AuthorizationURL == "" || init.Reference == "" {
		return nil, false
	}
	return init, true
}

func stringField(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := fields[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
