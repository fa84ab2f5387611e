package dynamostore

import (
	"strconv"
	"time"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
)

// Fixed-width UTC timestamps so string order equals time order in sort keys.
const sortableTime = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(sortableTime)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(sortableTime, s)
	return t
}

func floatToString(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type dishRequestItem struct {
	ID              string `dynamodbav:"id"`
	Code            string `dynamodbav:"code"`
	CustomerID      string `dynamodbav:"customer_id"`
	DishName        string `dynamodbav:"dish_name"`
	Description     string `dynamodbav:"description"`
	SuggestedPrice  string `dynamodbav:"suggested_price"`
	Servings        int    `dynamodbav:"servings"`
	RequestedTime   string `dynamodbav:"requested_time"`
	RequestedDate   string `dynamodbav:"requested_date"`
	ContactPhone    string `dynamodbav:"contact_phone"`
	FulfillmentKind string `dynamodbav:"fulfillment_kind"`
	DeliveryAddress string `dynamodbav:"delivery_address"`
	Status          string `dynamodbav:"status"`
	CreatedAt       string `dynamodbav:"created_at"`
	UpdatedAt       string `dynamodbav:"updated_at"`
}

func toDishRequestItem(r *domain.DishRequest) dishRequestItem {
	return dishRequestItem{
		ID:              r.ID,
		Code:            r.Code,
		CustomerID:      r.CustomerID,
		DishName:        r.DishName,
		Description:     r.Description,
		SuggestedPrice:  floatToString(r.SuggestedPrice),
		Servings:        r.Servings,
		RequestedTime:   r.RequestedTime,
		RequestedDate:   r.RequestedDate,
		ContactPhone:    r.ContactPhone,
		FulfillmentKind: string(r.Fulfillment.Kind),
		DeliveryAddress: r.Fulfillment.Address,
		Status:          string(r.Status),
		CreatedAt:       formatTime(r.CreatedAt),
		UpdatedAt:       formatTime(r.UpdatedAt),
	}
}

func fromDishRequestItem(it dishRequestItem) *domain.DishRequest {
	price, _ := strconv.ParseFloat(it.SuggestedPrice, 64)
	return &domain.DishRequest{
		ID:             it.ID,
		Code:           it.Code,
		CustomerID:     it.CustomerID,
		DishName:       it.DishName,
		Description:    it.Description,
		SuggestedPrice: price,
		Servings:       it.Servings,
		RequestedTime:  it.RequestedTime,
		RequestedDate:  it.RequestedDate,
		ContactPhone:   it.ContactPhone,
		Fulfillment:    fulfillment(it.FulfillmentKind, it.DeliveryAddress),
		Status:         domain.RequestStatus(it.Status),
		CreatedAt:      parseTime(it.CreatedAt),
		UpdatedAt:      parseTime(it.UpdatedAt),
	}
}

// offerItem lives in the offers table next to two marker kinds: pending locks and
// approval markers. Only offer items carry the GSI attributes.
type offerItem struct {
	PK              string `dynamodbav:"pk"`
	ID              string `dynamodbav:"id"`
	RequestID       string `dynamodbav:"request_id"`
	SellerID        string `dynamodbav:"seller_id"`
	CustomerID      string `dynamodbav:"customer_id"`
	Price           string `dynamodbav:"price"`
	FulfillmentKind string `dynamodbav:"fulfillment_kind"`
	DeliveryAddress string `dynamodbav:"delivery_address"`
	PickupLocation  string `dynamodbav:"pickup_location"`
	DishName        string `dynamodbav:"dish_name"`
	RequestedDate   string `dynamodbav:"requested_date"`
	RequestedTime   string `dynamodbav:"requested_time"`
	Servings        int    `dynamodbav:"servings"`
	Status          string `dynamodbav:"status"`
	SubmittedAt     string `dynamodbav:"submitted_at"`
	ExpiresAt       string `dynamodbav:"expires_at"`
	DecidedAt       string `dynamodbav:"decided_at,omitempty"`
	UpdatedAt       string `dynamodbav:"updated_at"`
}

type markerItem struct {
	PK      string `dynamodbav:"pk"`
	OfferID string `dynamodbav:"offer_id"`
}

func offerKey(offerID string) string {
	return "offer#" + offerID
}

func pendingLockKey(requestID, sellerID string) string {
	return "pending#" + requestID + "#" + sellerID
}

func approvalKey(requestID string) string {
	return "approved#" + requestID
}

func toOfferItem(o *domain.Offer) offerItem {
	it := offerItem{
		PK:              offerKey(o.ID),
		ID:              o.ID,
		RequestID:       o.RequestID,
		SellerID:        o.SellerID,
		CustomerID:      o.CustomerID,
		Price:           floatToString(o.Price),
		FulfillmentKind: string(o.Fulfillment.Kind),
		DeliveryAddress: o.Fulfillment.Address,
		PickupLocation:  o.PickupLocation,
		DishName:        o.DishName,
		RequestedDate:   o.RequestedDate,
		RequestedTime:   o.RequestedTime,
		Servings:        o.Servings,
		Status:          string(o.Status),
		SubmittedAt:     formatTime(o.SubmittedAt),
		ExpiresAt:       formatTime(o.ExpiresAt),
		UpdatedAt:       formatTime(o.UpdatedAt),
	}
	if o.DecidedAt != nil {
		it.DecidedAt = formatTime(*o.DecidedAt)
	}
	return it
}

func fromOfferItem(it offerItem) *domain.Offer {
	price, _ := strconv.ParseFloat(it.Price, 64)
	o := &domain.Offer{
		ID:             it.ID,
		RequestID:      it.RequestID,
		SellerID:       it.SellerID,
		CustomerID:     it.CustomerID,
		Price:          price,
		Fulfillment:    fulfillment(it.FulfillmentKind, it.DeliveryAddress),
		PickupLocation: it.PickupLocation,
		DishName:       it.DishName,
		RequestedDate:  it.RequestedDate,
		RequestedTime:  it.RequestedTime,
		Servings:       it.Servings,
		Status:         domain.OfferStatus(it.Status),
		SubmittedAt:    parseTime(it.SubmittedAt),
		ExpiresAt:      parseTime(it.ExpiresAt),
		UpdatedAt:      parseTime(it.UpdatedAt),
	}
	if it.DecidedAt != "" {
		decidedAt := parseTime(it.DecidedAt)
		o.DecidedAt = &decidedAt
	}
	return o
}

type offerEventItem struct {
	OfferID    string `dynamodbav:"offer_id"`
	EventKey   string `dynamodbav:"event_key"`
	RequestID  string `dynamodbav:"request_id"`
	FromStatus string `dynamodbav:"from_status"`
	ToStatus   string `dynamodbav:"to_status"`
	ActorID    string `dynamodbav:"actor_id"`
	Reason     string `dynamodbav:"reason"`
	OccurredAt string `dynamodbav:"occurred_at"`
}

func toOfferEventItem(e *domain.OfferStatusEvent) offerEventItem {
	occurredAt := formatTime(e.OccurredAt)
	return offerEventItem{
		OfferID:    e.OfferID,
		EventKey:   occurredAt + "#" + string(e.ToStatus),
		RequestID:  e.RequestID,
		FromStatus: string(e.FromStatus),
		ToStatus:   string(e.ToStatus),
		ActorID:    e.ActorID,
		Reason:     string(e.Reason),
		OccurredAt: occurredAt,
	}
}

func fromOfferEventItem(it offerEventItem) *domain.OfferStatusEvent {
	return &domain.OfferStatusEvent{
		OfferID:    it.OfferID,
		RequestID:  it.RequestID,
		FromStatus: domain.OfferStatus(it.FromStatus),
		ToStatus:   domain.OfferStatus(it.ToStatus),
		ActorID:    it.ActorID,
		Reason:     domain.StatusReason(it.Reason),
		OccurredAt: parseTime(it.OccurredAt),
	}
}

func fulfillment(kind, address string) domain.Fulfillment {
	if domain.FulfillmentKind(kind) == domain.FulfillmentDelivery {
		return domain.DeliveryTo(address)
	}
	return domain.Pickup()
}
