package offer

import (
	"context"
	"strings"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
)

func (l *DefaultLedger) Get(ctx context.Context, offerID string) (*domain.Offer, error) {
	if strings.TrimSpace(offerID) == "" {
		return nil, domain.Validationf("offer id is required")
	}
	return l.offerRepo.GetOfferByID(ctx, offerID)
}

func (l *DefaultLedger) ListByRequest(ctx context.Context, requestID string) ([]*domain.Offer, error) {
	if strings.TrimSpace(requestID) == "" {
		return nil, domain.Validationf("request id is required")
	}
	return l.offerRepo.ListOffersByRequest(ctx, requestID)
}

// ListBySellerAndRequest returns the seller's most recent offer on the request, or nil
// when the seller never made one.
func (l *DefaultLedger) ListBySellerAndRequest(ctx context.Context, sellerID, requestID string) (*domain.Offer, error) {
	if strings.TrimSpace(sellerID) == "" || strings.TrimSpace(requestID) == "" {
		return nil, domain.Validationf("seller id and request id are required")
	}
	return l.offerRepo.FindLatestOffer(ctx, sellerID, requestID)
}

func (l *DefaultLedger) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Offer, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, domain.Validationf("customer id is required")
	}
	return l.offerRepo.ListOffersByCustomer(ctx, customerID)
}

func (l *DefaultLedger) ListBySeller(ctx context.Context, sellerID string) ([]*domain.Offer, error) {
	if strings.TrimSpace(sellerID) == "" {
		return nil, domain.Validationf("seller id is required")
	}
	return l.offerRepo.ListOffersBySeller(ctx, sellerID)
}

func (l *DefaultLedger) History(ctx context.Context, offerID string) ([]*domain.OfferStatusEvent, error) {
	if l.historyRepo == nil {
		return nil, nil
	}
	return l.historyRepo.ListOfferEvents(ctx, offerID)
}
