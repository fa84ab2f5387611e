package offerdto

import "github.com/LavaJover/shvark-dish-request-service/internal/domain"

// SubmitOfferInput carries the priced terms a seller commits to. Fulfillment is the
// request's fulfillment as the seller saw it when finishing the wizard.
type SubmitOfferInput struct {
	RequestID      string
	SellerID       string
	CustomerID     string
	Price          float64
	Fulfillment    domain.Fulfillment
	PickupLocation string
	CounterPriced  bool
}

type TransitionInput struct {
	OfferID string
	From    domain.OfferStatus
	To      domain.OfferStatus
	ActorID string
	Reason  domain.StatusReason
}
