package publisher

import "time"

// OfferEvent is the JSON payload written to the offer-events topic.
type OfferEvent struct {
	EventType   string    `json:"event_type"`
	OfferID     string    `json:"offer_id"`
	RequestID   string    `json:"request_id"`
	SellerID    string    `json:"seller_id"`
	CustomerID  string    `json:"customer_id"`
	FromStatus  string    `json:"from_status,omitempty"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason"`
	ActorID     string    `json:"actor_id"`
	Price       float64   `json:"price"`
	Fulfillment string    `json:"fulfillment"`
	ExpiresAt   time.Time `json:"expires_at"`
	OccurredAt  time.Time `json:"occurred_at"`
}
