package models

import "time"

// OfferModel rows are never deleted. Two partial unique indexes created next to the
// table (see OfferIndexes) keep one pending offer per (request, seller) and one approved
// offer per request.
type OfferModel struct {
	ID              string `gorm:"primaryKey"`
	RequestID       string `gorm:"index:idx_offer_request"`
	SellerID        string `gorm:"index:idx_offer_seller"`
	CustomerID      string `gorm:"index:idx_offer_customer"`
	Price           float64
	FulfillmentKind string
	DeliveryAddress string
	PickupLocation  string
	DishName        string
	RequestedDate   string
	RequestedTime   string
	Servings        int
	Status          string    `gorm:"index:idx_offer_status_expires"`
	SubmittedAt     time.Time
	ExpiresAt       time.Time `gorm:"index:idx_offer_status_expires"`
	DecidedAt       *time.Time
	UpdatedAt       time.Time
}

var OfferIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_offer_pending_per_seller ON offer_models (request_id, seller_id) WHERE status = 'pending'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_offer_approved_per_request ON offer_models (request_id) WHERE status = 'approved'`,
}

type OfferStatusEventModel struct {
	ID         uint   `gorm:"primaryKey"`
	OfferID    string `gorm:"index:idx_offer_event_offer"`
	RequestID  string
	FromStatus string
	ToStatus   string
	ActorID    string
	Reason     string
	OccurredAt time.Time
}
