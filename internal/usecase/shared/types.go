package shared

import (
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/checkout"
	"github.com/enviofleett/smallchops-09-sub001/internal/domain/payment"

	"github.com/google/uuid"
)

// Snapshot is the recovery record for one checkout session, always written whole.
type Snapshot struct {
	Checkout    checkout.Checkout `json:"checkout"`
	DeliveryFee checkout.Money    `json:"deliveryFee"`
	LastAttempt *payment.Attempt  `json:"lastAttempt,omitempty"`
	SavedAt     time.Time         `json:"savedAt"`
}

func (s *Snapshot) Step() checkout.Step {
	return s.Checkout.Step
}

// AttemptToken identifies one payment flight. It is passed explicitly through the flow.
type AttemptToken struct {
	SessionID string    `json:"sessionId"`
	AttemptID uuid.UUID `json:"attemptId"`
}

type ZoneSnapshot struct {
	ID      uuid.UUID
	Name    string
	FeeKobo int64
	Active  bool
}

type PickupPointSnapshot struct {
	ID      uuid.UUID
	Name    string
	Address string
	Active  bool
}

type CompletionRecord struct {
	Reference   string
	SessionID   string
	OrderID     string
	OrderNumber string
	AmountKobo  int64
	Channel     string
	CompletedAt time.Time
}

type NotificationJob struct {
	ID        uuid.UUID
	Kind      string
	Topic     string
	Payload   []byte
	Attempts  int
	LastError string
	RunAt     time.Time
}

// ExistingOrder is an order created by an earlier attempt whose payment never completed.
type ExistingOrder struct {
	OrderID     string
	OrderNumber string
}

type CreateOrderRequest struct {
	CustomerName    string             `json:"customer_name"`
	CustomerEmail   string             `json:"customer_email"`
	CustomerPhone   string             `json:"customer_phone"`
	FulfillmentType string             `json:"fulfillment_type"`
	DeliveryAddress *AddressPayload    `json:"delivery_address,omitempty"`
	DeliveryZoneID  string             `json:"delivery_zone_id,omitempty"`
	PickupPointID   string             `json:"pickup_point_id,omitempty"`
	Items           []OrderItemPayload `json:"items"`
	Subtotal        float64            `json:"subtotal"`
	DeliveryFee     float64            `json:"delivery_fee"`
	Tax             float64            `json:"tax"`
	TotalAmount     float64            `json:"total_amount"`
	Schedule        *SchedulePayload   `json:"delivery_schedule,omitempty"`
	PaymentMethod   string             `json:"payment_method"`
	UserID          string             `json:"user_id,omitempty"`
	GuestSessionID  string             `json:"guest_session_id,omitempty"`
	CallbackURL     string             `json:"callback_url,omitempty"`
	Notes           string             `json:"special_instructions,omitempty"`
	IdempotencyKey  string             `json:"-"`
}

type AddressPayload struct {
	Street   string `json:"address_line_1"`
	City     string `json:"city"`
	State    string `json:"state"`
	Landmark string `json:"landmark,omitempty"`
}

type OrderItemPayload struct {
	ProductID      string            `json:"product_id"`
	ProductName    string            `json:"product_name"`
	Quantity       int               `json:"quantity"`
	UnitPrice      float64           `json:"unit_price"`
	TotalPrice     float64           `json:"total_price"`
	Customizations map[string]string `json:"customizations,omitempty"`
}

type SchedulePayload struct {
	Date        string `json:"delivery_date"`
	WindowStart string `json:"delivery_time_start"`
	WindowEnd   string `json:"delivery_time_end"`
}

type InitializePaymentRequest struct {
	OrderID        string `json:"order_id"`
	Email          string `json:"email"`
	CallbackURL    string `json:"callback_url,omitempty"`
	IdempotencyKey string `json:"-"`
}
