//go:generate mockgen -source=offer_event.go -destination=mocks/mock_offer_event.go -package=mocks

package domain

import (
	"context"
	"time"
)

const SystemExpiryActor = "system:expiry"

type StatusReason string

const (
	ReasonSubmitted       StatusReason = "submitted"
	ReasonDecided         StatusReason = "decided"
	ReasonSiblingApproved StatusReason = "sibling_approved"
	ReasonRequestDeleted  StatusReason = "request_deleted"
	ReasonRequestClosed   StatusReason = "request_closed"
	ReasonDeadlinePassed  StatusReason = "deadline_passed"
)

// OfferStatusEvent is one row of an offer's append-only status history.
// FromStatus is empty for the submission event.
type OfferStatusEvent struct {
	OfferID    string
	RequestID  string
	FromStatus OfferStatus
	ToStatus   OfferStatus
	ActorID    string
	Reason     StatusReason
	OccurredAt time.Time
}

type OfferHistoryRepository interface {
	AppendOfferEvent(ctx context.Context, event *OfferStatusEvent) error
	ListOfferEvents(ctx context.Context, offerID string) ([]*OfferStatusEvent, error)
}

// OfferEventPublisher hands status changes to the notification layer.
type OfferEventPublisher interface {
	PublishOfferEvent(ctx context.Context, event OfferStatusEvent, offer *Offer) error
}
