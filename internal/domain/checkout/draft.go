package checkout

import (
	"fmt"

	"github.com/google/uuid"
)

type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Address struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	Landmark string `json:"landmark,omitempty"`
}

type ZoneRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Fee  Money     `json:"fee"`
}

type PickupPointRef struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
}

type Schedule struct {
	Date        string `json:"date"`
	WindowStart string `json:"windowStart"`
	WindowEnd   string `json:"windowEnd"`
}

type LineItem struct {
	ProductID      string            `json:"productId"`
	Name           string            `json:"name"`
	Quantity       int               `json:"quantity"`
	UnitPrice      Money             `json:"unitPrice"`
	Customizations map[string]string `json:"customizations,omitempty"`
}

func (li LineItem) Total() Money {
	return li.UnitPrice.Times(li.Quantity)
}

// CheckItems bounds quantities and makes sure the subtotal cannot overflow.
func CheckItems(items []LineItem) error {
	var subtotal Money
	for _, item := range items {
		if item.Quantity <= 0 || item.Quantity > MaxLineQuantity {
			return fmt.Errorf("%w: %s", ErrInvalidQuantity, item.ProductID)
		}
		line, err := item.UnitPrice.TimesChecked(item.Quantity)
		if err != nil {
			return fmt.Errorf("%w: %s", err, item.ProductID)
		}
		if subtotal, err = subtotal.AddChecked(line); err != nil {
			return err
		}
	}
	return nil
}

type Totals struct {
	Subtotal    Money `json:"subtotal"`
	DeliveryFee Money `json:"deliveryFee"`
	Tax         Money `json:"tax"`
	Total       Money `json:"total"`
}

// Draft is everything the customer has entered so far. It is owned by the
// state machine and persisted whole inside the recovery snapshot.
type Draft struct {
	Contact         Contact         `json:"contact"`
	FulfillmentType FulfillmentType `json:"fulfillmentType,omitempty"`
	Address         *Address        `json:"address,omitempty"`
	Zone            *ZoneRef        `json:"zone,omitempty"`
	PickupPoint     *PickupPointRef `json:"pickupPoint,omitempty"`
	Schedule        *Schedule       `json:"schedule,omitempty"`
	Items           []LineItem      `json:"items"`
	PaymentMethod   string          `json:"paymentMethod,omitempty"`
	TermsAccepted   bool            `json:"termsAccepted"`
	Notes           string          `json:"notes,omitempty"`
}

func (d Draft) DeliveryFee() Money {
	if d.FulfillmentType != FulfillmentDelivery || d.Zone == nil {
		return Money{}
	}
	return d.Zone.Fee
}

// Totals prices the draft. Tax is levied on the subtotal only.
func (d Draft) Totals(taxRateBPS int64) Totals {
	var subtotal Money
	for _, item := range d.Items {
		subtotal = subtotal.Add(item.Total())
	}
	fee := d.DeliveryFee()
	tax := subtotal.Rate(taxRateBPS)
	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Tax:         tax,
		Total:       subtotal.Add(fee).Add(tax),
	}
}

// Checkout pairs the draft with the step the customer is on.
type Checkout struct {
	Draft   Draft    `json:"draft"`
	Step    Step     `json:"step"`
	Failure *Failure `json:"failure,omitempty"`
}
