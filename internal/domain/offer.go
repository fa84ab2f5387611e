package domain

import (
	"context"
	"time"
)

type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferApproved OfferStatus = "approved"
	OfferRejected OfferStatus = "rejected"
	OfferExpired  OfferStatus = "expired"
)

const DefaultOfferTTL = 30 * time.Minute

func (s OfferStatus) Valid() bool {
	switch s {
	case OfferPending, OfferApproved, OfferRejected, OfferExpired:
		return true
	}
	return false
}

func (s OfferStatus) Terminal() bool {
	return s == OfferApproved || s == OfferRejected || s == OfferExpired
}

// CanTransition reports whether from -> to is an edge of the offer lifecycle.
// Only pending offers move, and only into a terminal status.
func CanTransition(from, to OfferStatus) bool {
	return from == OfferPending && to.Terminal()
}

type Offer struct {
	ID             string
	RequestID      string
	SellerID       string
	CustomerID     string
	Price          float64
	Fulfillment    Fulfillment
	PickupLocation string

	// Snapshot of the request at submission time.
	DishName      string
	RequestedDate string
	RequestedTime string
	Servings      int

	Status      OfferStatus
	SubmittedAt time.Time
	ExpiresAt   time.Time
	DecidedAt   *time.Time
	UpdatedAt   time.Time
}

func (o *Offer) IsPending() bool {
	return o.Status == OfferPending
}

// Overdue reports whether a pending offer has reached its deadline at now.
func (o *Offer) Overdue(now time.Time) bool {
	return o.IsPending() && !o.ExpiresAt.After(now)
}

// StatusChange describes one compare-and-swap on an offer.
type StatusChange struct {
	OfferID string
	From    OfferStatus
	To      OfferStatus
	At      time.Time
}

type OfferRepository interface {
	// CreateOffer inserts a pending offer. It fails with *ConflictError when the seller
	// already holds a pending offer for the request; the check and insert are atomic.
	CreateOffer(ctx context.Context, offer *Offer) error
	GetOfferByID(ctx context.Context, offerID string) (*Offer, error)
	ListOffersByRequest(ctx context.Context, requestID string) ([]*Offer, error)
	ListOffersByCustomer(ctx context.Context, customerID string) ([]*Offer, error)
	ListOffersBySeller(ctx context.Context, sellerID string) ([]*Offer, error)
	// FindLatestOffer returns the pending offer of sellerID on requestID if there is one,
	// otherwise the newest, or nil.
	FindLatestOffer(ctx context.Context, sellerID, requestID string) (*Offer, error)
	// TransitionOfferStatus applies change only if the stored status still equals
	// change.From, otherwise ErrStaleState. Approving a second offer of the same request
	// fails with ErrInvalidState.
	TransitionOfferStatus(ctx context.Context, change StatusChange) (*Offer, error)
	FindExpiredOffers(ctx context.Context, now time.Time, limit int) ([]*Offer, error)
}
