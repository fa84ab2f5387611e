package notifier

import "time"

type CallbackPayload struct {
	EventType  string    `json:"event_type"`
	OfferID    string    `json:"offer_id"`
	RequestID  string    `json:"request_id"`
	SellerID   string    `json:"seller_id"`
	CustomerID string    `json:"customer_id"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason"`
	Price      float64   `json:"price"`
	ExpiresAt  time.Time `json:"expires_at"`
	OccurredAt time.Time `json:"occurred_at"`
}
