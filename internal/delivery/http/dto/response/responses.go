package response

import (
	"time"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	"github.com/LavaJover/shvark-dish-request-service/internal/usecase/wizard"
)

type ErrorResponse struct {
	Code  string         `json:"code"`
	Error string         `json:"error"`
	Offer *OfferResponse `json:"offer,omitempty"`
}

type DishRequestResponse struct {
	ID              string    `json:"id"`
	Code            string    `json:"code"`
	CustomerID      string    `json:"customer_id"`
	DishName        string    `json:"dish_name"`
	Description     string    `json:"description,omitempty"`
	SuggestedPrice  float64   `json:"suggested_price"`
	Servings        int       `json:"servings"`
	RequestedTime   string    `json:"time"`
	RequestedDate   string    `json:"date"`
	ContactPhone    string    `json:"contact_phone,omitempty"`
	Fulfillment     string    `json:"fulfillment"`
	DeliveryAddress string    `json:"delivery_address,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func FromDishRequest(r *domain.DishRequest) DishRequestResponse {
	return DishRequestResponse{
		ID:              r.ID,
		Code:            r.Code,
		CustomerID:      r.CustomerID,
		DishName:        r.DishName,
		Description:     r.Description,
		SuggestedPrice:  r.SuggestedPrice,
		Servings:        r.Servings,
		RequestedTime:   r.RequestedTime,
		RequestedDate:   r.RequestedDate,
		ContactPhone:    r.ContactPhone,
		Fulfillment:     string(r.Fulfillment.Kind),
		DeliveryAddress: r.Fulfillment.Address,
		Status:          string(r.Status),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func FromDishRequests(requests []*domain.DishRequest) []DishRequestResponse {
	out := make([]DishRequestResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, FromDishRequest(r))
	}
	return out
}

type OfferResponse struct {
	ID              string     `json:"id"`
	RequestID       string     `json:"request_id"`
	SellerID        string     `json:"seller_id"`
	CustomerID      string     `json:"customer_id"`
	Price           float64    `json:"price"`
	Fulfillment     string     `json:"fulfillment"`
	DeliveryAddress string     `json:"delivery_address,omitempty"`
	PickupLocation  string     `json:"pickup_location,omitempty"`
	DishName        string     `json:"dish_name"`
	RequestedDate   string     `json:"date"`
	RequestedTime   string     `json:"time"`
	Servings        int        `json:"servings"`
	Status          string     `json:"status"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	ExpiresAt       time.Time  `json:"expires_at"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
}

func FromOffer(o *domain.Offer) *OfferResponse {
	if o == nil {
		return nil
	}
	return &OfferResponse{
		ID:              o.ID,
		RequestID:       o.RequestID,
		SellerID:        o.SellerID,
		CustomerID:      o.CustomerID,
		Price:           o.Price,
		Fulfillment:     string(o.Fulfillment.Kind),
		DeliveryAddress: o.Fulfillment.Address,
		PickupLocation:  o.PickupLocation,
		DishName:        o.DishName,
		RequestedDate:   o.RequestedDate,
		RequestedTime:   o.RequestedTime,
		Servings:        o.Servings,
		Status:          string(o.Status),
		SubmittedAt:     o.SubmittedAt,
		ExpiresAt:       o.ExpiresAt,
		DecidedAt:       o.DecidedAt,
	}
}

func FromOffers(offers []*domain.Offer) []*OfferResponse {
	out := make([]*OfferResponse, 0, len(offers))
	for _, o := range offers {
		out = append(out, FromOffer(o))
	}
	return out
}

type OfferEventResponse struct {
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status"`
	ActorID    string    `json:"actor_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

func FromOfferEvents(events []*domain.OfferStatusEvent) []OfferEventResponse {
	out := make([]OfferEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, OfferEventResponse{
			FromStatus: string(e.FromStatus),
			ToStatus:   string(e.ToStatus),
			ActorID:    e.ActorID,
			Reason:     string(e.Reason),
			OccurredAt: e.OccurredAt,
		})
	}
	return out
}

type NegotiationResponse struct {
	RequestID string         `json:"request_id"`
	Step      string         `json:"step,omitempty"`
	Question  string         `json:"question,omitempty"`
	Outcome   string         `json:"outcome"`
	Offer     *OfferResponse `json:"offer,omitempty"`
}

func FromView(v wizard.View) NegotiationResponse {
	resp := NegotiationResponse{
		RequestID: v.RequestID,
		Question:  v.Question,
		Outcome:   string(v.Outcome),
		Offer:     FromOffer(v.Offer),
	}
	if v.Outcome == wizard.OutcomeInProgress {
		resp.Step = string(v.Step)
	}
	return resp
}
