//go:build unit || e2e

package builder

import (
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/checkout"
	reqdto "github.com/enviofleett/smallchops-09-sub001/internal/handler/dto/request"

	"github.com/google/uuid"
)

var (
	DefaultZoneID        = uuid.MustParse("6f1c1f7a-8a4e-4a57-9a53-0b7d2f0f2a11")
	DefaultPickupPointID = uuid.MustParse("0d2b6c0e-0c49-4a0b-8f0e-5f8f6b7a9c21")
)

type CheckoutBuilder struct {
	Contact         checkout.Contact
	FulfillmentType checkout.FulfillmentType
	Address         *checkout.Address
	Zone            *checkout.ZoneRef
	PickupPoint     *checkout.PickupPointRef
	Schedule        *checkout.Schedule
	Items           []checkout.LineItem
	PaymentMethod   string
	TermsAccepted   bool
	Step            checkout.Step
}

// NewCheckoutBuilder returns a delivery checkout that is complete up to review.
func NewCheckoutBuilder() *CheckoutBuilder {
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	return &CheckoutBuilder{
		Contact: checkout.Contact{
			Name:  "Ada Obi",
			Email: "ada@example.com",
			Phone: "+234 803 123 4567",
		},
		FulfillmentType: checkout.FulfillmentDelivery,
		Address: &checkout.Address{
			Street: "12 Admiralty Way",
			City:   "Lekki",
			State:  "Lagos",
		},
		Zone: &checkout.ZoneRef{
			ID:   DefaultZoneID,
			Name: "Lekki Phase 1",
			Fee:  checkout.Naira(1500),
		},
		Schedule: &checkout.Schedule{
			Date:        tomorrow,
			WindowStart: "14:00",
			WindowEnd:   "15:00",
		},
		Items: []checkout.LineItem{
			{ProductID: "small-chops-platter", Name: "Small Chops Platter", Quantity: 2, UnitPrice: checkout.Naira(4000)},
			{ProductID: "chapman", Name: "Chapman", Quantity: 1, UnitPrice: checkout.Naira(2000)},
		},
		PaymentMethod: "paystack",
		TermsAccepted: true,
		Step:          checkout.StepReview,
	}
}

func (b *CheckoutBuilder) With(mutate func(*CheckoutBuilder)) *CheckoutBuilder {
	mutate(b)
	return b
}

func (b *CheckoutBuilder) AsPickup() *CheckoutBuilder {
	b.FulfillmentType = checkout.FulfillmentPickup
	b.Address = nil
	b.Zone = nil
	b.PickupPoint = &checkout.PickupPointRef{
		ID:      DefaultPickupPointID,
		Name:    "Ikeja Kitchen",
		Address: "5 Allen Avenue, Ikeja",
	}
	return b
}

func (b *CheckoutBuilder) WithStep(step checkout.Step) *CheckoutBuilder {
	b.Step = step
	return b
}

func (b *CheckoutBuilder) WithScheduleDate(date, start, end string) *CheckoutBuilder {
	b.Schedule = &checkout.Schedule{Date: date, WindowStart: start, WindowEnd: end}
	return b
}

func (b *CheckoutBuilder) BuildDraft() checkout.Draft {
	items := make([]checkout.LineItem, len(b.Items))
	copy(items, b.Items)
	return checkout.Draft{
		Contact:         b.Contact,
		FulfillmentType: b.FulfillmentType,
		Address:         b.Address,
		Zone:            b.Zone,
		PickupPoint:     b.PickupPoint,
		Schedule:        b.Schedule,
		Items:           items,
		PaymentMethod:   b.PaymentMethod,
		TermsAccepted:   b.TermsAccepted,
	}
}

func (b *CheckoutBuilder) BuildCheckout() *checkout.Checkout {
	return &checkout.Checkout{Draft: b.BuildDraft(), Step: b.Step}
}

func (b *CheckoutBuilder) BuildContactRequestDTO() reqdto.ContactRequest {
	return reqdto.ContactRequest{
		Name:  b.Contact.Name,
		Email: b.Contact.Email,
		Phone: b.Contact.Phone,
	}
}

func (b *CheckoutBuilder) BuildFulfillmentRequestDTO() reqdto.FulfillmentRequest {
	req := reqdto.FulfillmentRequest{Type: string(b.FulfillmentType)}
	if b.Address != nil {
		req.Address = &reqdto.AddressRequest{
			Street: b.Address.Street,
			City:   b.Address.City,
			State:  b.Address.State,
		}
	}
	if b.Zone != nil {
		id := b.Zone.ID
		req.ZoneID = &id
	}
	if b.PickupPoint != nil {
		id := b.PickupPoint.ID
		req.PickupPointID = &id
	}
	return req
}

func (b *CheckoutBuilder) BuildScheduleRequestDTO() reqdto.ScheduleRequest {
	return reqdto.ScheduleRequest{
		Date:        b.Schedule.Date,
		WindowStart: b.Schedule.WindowStart,
	}
}
