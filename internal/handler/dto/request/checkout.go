package request

import (
	"strings"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/checkout"

	"github.com/google/uuid"
)

type ContactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (r ContactRequest) ToDomain() checkout.Contact {
	return checkout.Contact{
		Name:  strings.TrimSpace(r.Name),
		Email: strings.TrimSpace(r.Email),
		Phone: strings.TrimSpace(r.Phone),
	}
}

type AddressRequest struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	Landmark string `json:"landmark,omitempty"`
}

type FulfillmentRequest struct {
	Type          string          `json:"type" binding:"required"`
	Address       *AddressRequest `json:"address,omitempty"`
	ZoneID        *uuid.UUID      `json:"zoneId,omitempty"`
	PickupPointID *uuid.UUID      `json:"pickupPointId,omitempty"`
}

func (r FulfillmentRequest) FulfillmentType() checkout.FulfillmentType {
	return checkout.FulfillmentType(strings.ToLower(strings.TrimSpace(r.Type)))
}

func (r FulfillmentRequest) DomainAddress() *checkout.Address {
	if r.Address == nil {
		return nil
	}
	return &checkout.Address{
		Street:   strings.TrimSpace(r.Address.Street),
		City:     strings.TrimSpace(r.Address.City),
		State:    strings.TrimSpace(r.Address.State),
		Landmark: strings.TrimSpace(r.Address.Landmark),
	}
}

type ScheduleRequest struct {
	Date        string `json:"date" binding:"required"`
	WindowStart string `json:"windowStart" binding:"required"`
}

type PaymentMethodRequest struct {
	Method string `json:"method" binding:"required"`
}

type TermsRequest struct {
	Accepted bool `json:"accepted"`
}

type CartItemRequest struct {
	ProductID      string            `json:"productId" binding:"required"`
	Name           string            `json:"name" binding:"required"`
	Quantity       int               `json:"quantity" binding:"required,max=999"`
	UnitPriceKobo  int64             `json:"unitPriceKobo" binding:"max=1000000000000"`
	Customizations map[string]string `json:"customizations,omitempty"`
}

type CartRequest struct {
	Items []CartItemRequest `json:"items" binding:"max=100,dive"`
}

func (r CartRequest) ToDomain() ([]checkout.LineItem, error) {
	items := make([]checkout.LineItem, 0, len(r.Items))
	for _, it := range r.Items {
		price, err := checkout.NewMoney(it.UnitPriceKobo)
		if err != nil {
			return nil, err
		}
		items = append(items, checkout.LineItem{
			ProductID:      strings.TrimSpace(it.ProductID),
			Name:           strings.TrimSpace(it.Name),
			Quantity:       it.Quantity,
			UnitPrice:      price,
			Customizations: it.Customizations,
		})
	}
	if err := checkout.CheckItems(items); err != nil {
		return nil, err
	}
	return items, nil
}

// PaymentCallbackRequest is posted by the storefront when the gateway popup reports back.
type PaymentCallbackRequest struct {
	Reference string `json:"reference" binding:"required"`
}
