package domain

import (
	"context"
	"regexp"
	"strings"
	"time"
)

type RequestStatus string

const (
	RequestActive   RequestStatus = "active"
	RequestInactive RequestStatus = "inactive"
)

func (s RequestStatus) Valid() bool {
	return s == RequestActive || s == RequestInactive
}

type FulfillmentKind string

const (
	FulfillmentPickup   FulfillmentKind = "pickup"
	FulfillmentDelivery FulfillmentKind = "delivery"
)

// Fulfillment is either pickup or delivery to Address. Build it with Pickup or DeliveryTo.
type Fulfillment struct {
	Kind    FulfillmentKind
	Address string
}

func Pickup() Fulfillment {
	return Fulfillment{Kind: FulfillmentPickup}
}

func DeliveryTo(address string) Fulfillment {
	return Fulfillment{Kind: FulfillmentDelivery, Address: strings.TrimSpace(address)}
}

func (f Fulfillment) IsDelivery() bool {
	return f.Kind == FulfillmentDelivery
}

func (f Fulfillment) Validate() error {
	switch f.Kind {
	case FulfillmentPickup:
		if f.Address != "" {
			return Validationf("pickup fulfillment must not carry an address")
		}
		return nil
	case FulfillmentDelivery:
		if strings.TrimSpace(f.Address) == "" {
			return Validationf("delivery address is required for delivery")
		}
		return nil
	default:
		return Validationf("unknown fulfillment kind %q", f.Kind)
	}
}

const (
	RequestedTimeLayout = "15:04"
	RequestedDateLayout = "2006-01-02"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{6,15}$`)

type DishRequest struct {
	ID             string
	Code           string
	CustomerID     string
	DishName       string
	Description    string
	SuggestedPrice float64
	Servings       int
	RequestedTime  string
	RequestedDate  string
	ContactPhone   string
	Fulfillment    Fulfillment
	Status         RequestStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (r *DishRequest) IsActive() bool {
	return r.Status == RequestActive
}

func (r *DishRequest) OwnedBy(actorID string) bool {
	return actorID != "" && r.CustomerID == actorID
}

// Validate checks the customer-authored fields. today is the caller's current date and
// guards against requests for a day that has already passed.
func (r *DishRequest) Validate(today time.Time) error {
	if strings.TrimSpace(r.CustomerID) == "" {
		return Validationf("customer id is required")
	}
	if strings.TrimSpace(r.DishName) == "" {
		return Validationf("dish name is required")
	}
	if !(r.SuggestedPrice > 0) {
		return Validationf("price must be greater than zero")
	}
	if r.Servings <= 0 {
		return Validationf("servings must be greater than zero")
	}
	if strings.TrimSpace(r.RequestedTime) == "" {
		return Validationf("time is required")
	}
	if _, err := time.Parse(RequestedTimeLayout, r.RequestedTime); err != nil {
		return Validationf("time must be in 24h HH:MM format")
	}
	if strings.TrimSpace(r.RequestedDate) == "" {
		return Validationf("date is required")
	}
	date, err := time.Parse(RequestedDateLayout, r.RequestedDate)
	if err != nil {
		return Validationf("date must be in YYYY-MM-DD format")
	}
	if !today.IsZero() {
		y, m, d := today.Date()
		if date.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)) {
			return Validationf("date %s is in the past", r.RequestedDate)
		}
	}
	if r.ContactPhone != "" && !phonePattern.MatchString(r.ContactPhone) {
		return Validationf("contact phone %q is not a valid phone number", r.ContactPhone)
	}
	return r.Fulfillment.Validate()
}

type DishRequestRepository interface {
	CreateRequest(ctx context.Context, request *DishRequest) error
	GetRequestByID(ctx context.Context, requestID string) (*DishRequest, error)
	UpdateRequestStatus(ctx context.Context, requestID string, status RequestStatus, at time.Time) (*DishRequest, error)
	DeleteRequest(ctx context.Context, requestID string) error
	ListRequestsByStatus(ctx context.Context, status RequestStatus) ([]*DishRequest, error)
	ListRequestsByCustomer(ctx context.Context, customerID string) ([]*DishRequest, error)
}
